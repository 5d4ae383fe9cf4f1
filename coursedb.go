package learnpath

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
)

// DB represents a learnpath database connection
type DB struct {
	db *sql.DB
}

// User represents an account in the database
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	JoinedAt     time.Time `json:"joined_at"`
}

// Course represents a generated course saved by a user
type Course struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	CourseName string    `json:"course_name"`
	Content    string    `json:"content"` // rendered HTML
	CreatedAt  time.Time `json:"created_at"`
}

// OpenDB opens a new database connection with foreign key enforcement enabled
func OpenDB(dbPath string) (*DB, error) {
	dsn := dbPath
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			joined_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS courses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			course_name TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_courses_user_name ON courses (user_id, course_name)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// CreateUser inserts a user and sets its ID
func (db *DB) CreateUser(user *User) error {
	if user.JoinedAt.IsZero() {
		user.JoinedAt = time.Now()
	}

	res, err := db.db.Exec(
		"INSERT INTO users (username, email, password_hash, joined_at) VALUES (?, ?, ?, ?)",
		user.Username, user.Email, user.PasswordHash, user.JoinedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

const userColumns = "id, username, email, password_hash, joined_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.JoinedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (db *DB) GetUserByID(id int64) (*User, error) {
	user, err := scanUser(db.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (db *DB) GetUserByEmail(email string) (*User, error) {
	user, err := scanUser(db.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUsers retrieves all users ordered by ID
func (db *DB) GetUsers() ([]User, error) {
	rows, err := db.db.Query("SELECT " + userColumns + " FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// DeleteUser deletes a user; the user's courses are removed by cascade
func (db *DB) DeleteUser(id int64) error {
	res, err := db.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}

// CreateCourse inserts a course and sets its ID
func (db *DB) CreateCourse(course *Course) error {
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now()
	}

	res, err := db.db.Exec(
		"INSERT INTO courses (user_id, course_name, content, created_at) VALUES (?, ?, ?, ?)",
		course.UserID, course.CourseName, course.Content, course.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read course id: %w", err)
	}
	course.ID = id
	return nil
}

const courseColumns = "id, user_id, course_name, content, created_at"

// GetCourses retrieves all courses owned by a user, oldest first
func (db *DB) GetCourses(userID int64) ([]Course, error) {
	rows, err := db.db.Query(
		"SELECT "+courseColumns+" FROM courses WHERE user_id = ? ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var course Course
		err := rows.Scan(&course.ID, &course.UserID, &course.CourseName, &course.Content, &course.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// GetCourseByName retrieves the first course with the given name owned by a user
func (db *DB) GetCourseByName(userID int64, name string) (*Course, error) {
	var course Course
	err := db.db.QueryRow(
		"SELECT "+courseColumns+" FROM courses WHERE user_id = ? AND course_name = ? ORDER BY id LIMIT 1",
		userID, name,
	).Scan(&course.ID, &course.UserID, &course.CourseName, &course.Content, &course.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("course %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &course, nil
}

// CountCourses returns the number of courses owned by a user
func (db *DB) CountCourses(userID int64) (int, error) {
	var n int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM courses WHERE user_id = ?", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return n, nil
}

// CourseNames returns the names of the given courses in order
func CourseNames(courses []Course) []string {
	names := make([]string, len(courses))
	for i, course := range courses {
		names[i] = course.CourseName
	}
	return names
}
