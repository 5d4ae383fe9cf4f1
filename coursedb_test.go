package learnpath

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { db.CloseDB() })

	if err := db.CreateTables(); err != nil {
		t.Fatalf("CreateTables failed: %v", err)
	}
	return db
}

func TestUserLifecycle(t *testing.T) {
	db := openTestDB(t)

	user, err := db.RegisterUser("ada", "ada@example.com", "secret")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if user.ID == 0 || user.PasswordHash == "secret" {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := db.RegisterUser("ada", "other@example.com", "x"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate username: expected ErrDuplicateUser, got %v", err)
	}
	if _, err := db.RegisterUser("other", "ada@example.com", "x"); !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate email: expected ErrDuplicateUser, got %v", err)
	}

	got, err := db.Authenticate("ada@example.com", "secret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID || got.Username != "ada" || got.JoinedAt.IsZero() {
		t.Errorf("authenticated user = %+v", got)
	}

	if _, err := db.Authenticate("ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := db.Authenticate("nobody@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}

	if _, err := db.GetUserByID(user.ID + 100); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCoursesAreScopedToOwner(t *testing.T) {
	db := openTestDB(t)

	alice, _ := db.RegisterUser("alice", "alice@example.com", "pw")
	bob, _ := db.RegisterUser("bob", "bob@example.com", "pw")

	for _, c := range []*Course{
		{UserID: alice.ID, CourseName: "Go", Content: "<p>go</p>"},
		{UserID: alice.ID, CourseName: "Rust", Content: "<p>rust</p>"},
		{UserID: alice.ID, CourseName: "Go", Content: "<p>go again</p>"},
		{UserID: bob.ID, CourseName: "Python", Content: "<p>py</p>"},
	} {
		if err := db.CreateCourse(c); err != nil {
			t.Fatalf("CreateCourse failed: %v", err)
		}
		if c.ID == 0 {
			t.Fatal("course id not set")
		}
	}

	courses, err := db.GetCourses(alice.ID)
	if err != nil {
		t.Fatal(err)
	}
	names := CourseNames(courses)
	if len(names) != 3 || names[0] != "Go" || names[1] != "Rust" || names[2] != "Go" {
		t.Errorf("alice courses = %v", names)
	}

	course, err := db.GetCourseByName(alice.ID, "Go")
	if err != nil {
		t.Fatal(err)
	}
	if course.Content != "<p>go</p>" {
		t.Errorf("expected the first saved Go course, got %q", course.Content)
	}

	if _, err := db.GetCourseByName(bob.ID, "Go"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bob must not see alice's course, got %v", err)
	}
}

func TestDeleteUserCascadesCourses(t *testing.T) {
	db := openTestDB(t)

	owner, _ := db.RegisterUser("owner", "owner@example.com", "pw")
	other, _ := db.RegisterUser("other", "other@example.com", "pw")

	for i := 0; i < 3; i++ {
		if err := db.CreateCourse(&Course{UserID: owner.ID, CourseName: "Course", Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	if err := db.CreateCourse(&Course{UserID: other.ID, CourseName: "Kept", Content: "x"}); err != nil {
		t.Fatal(err)
	}

	if n, _ := db.CountCourses(owner.ID); n != 3 {
		t.Fatalf("expected 3 courses before delete, got %d", n)
	}

	if err := db.DeleteUser(owner.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if n, _ := db.CountCourses(owner.ID); n != 0 {
		t.Errorf("expected 0 courses after delete, got %d", n)
	}
	if n, _ := db.CountCourses(other.ID); n != 1 {
		t.Errorf("other user's courses changed: %d", n)
	}

	if err := db.DeleteUser(owner.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}

	users, err := db.GetUsers()
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Username != "other" {
		t.Errorf("users = %+v", users)
	}
}

func TestCreateCourseRequiresOwner(t *testing.T) {
	db := openTestDB(t)

	err := db.CreateCourse(&Course{UserID: 42, CourseName: "Orphan", Content: "x"})
	if err == nil {
		t.Fatal("expected foreign key violation for unknown user")
	}
}
