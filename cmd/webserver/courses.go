package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"learnpath"

	"github.com/gorilla/mux"
)

// handleApp lists the user's saved courses with a follow-up recommendation for each
func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	saved, err := s.db.GetCourses(user.ID)
	if err != nil {
		s.fail(w, "Failed to get courses", err)
		return
	}

	recs, err := s.gen.GenerateRecommendations(r.Context(), learnpath.CourseNames(saved))
	if err != nil {
		s.fail(w, "Failed to generate recommendations", err)
		return
	}

	s.render(w, r, "app", map[string]interface{}{
		"SavedCourses":       saved,
		"RecommendedCourses": recs,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	count, err := s.db.CountCourses(user.ID)
	if err != nil {
		s.fail(w, "Failed to count courses", err)
		return
	}

	s.render(w, r, "dashboard", map[string]interface{}{
		"CourseCount": count,
	})
}

// handleCourse serves /course and /r_course/{name}. A POST generates the
// outline and saves it for the user; a GET on /r_course/{name} only previews it.
func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	courseName, err := pathVar(r, "name")
	if err != nil {
		http.Error(w, "Invalid course name", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodPost && courseName == "" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}
		courseName = strings.TrimSpace(r.FormValue("course_name"))
	}

	if courseName == "" {
		s.render(w, r, "course", nil)
		return
	}

	outline, err := s.gen.GenerateCourse(r.Context(), courseName)
	if err != nil {
		s.fail(w, "Failed to generate course", err)
		return
	}

	data := map[string]interface{}{
		"Outline": outline,
	}

	if r.Method == http.MethodPost {
		var content bytes.Buffer
		if err := s.templates["course"].ExecuteTemplate(&content, "course_content", data); err != nil {
			s.fail(w, "Failed to render course", err)
			return
		}

		course := &learnpath.Course{
			UserID:     currentUser(r).ID,
			CourseName: courseName,
			Content:    content.String(),
		}
		if err := s.db.CreateCourse(course); err != nil {
			s.fail(w, "Failed to save course", err)
			return
		}
		s.log.Infof("Saved course %q for user %d", courseName, course.UserID)
	}

	s.render(w, r, "course", data)
}

func (s *Server) handleSavedCourse(w http.ResponseWriter, r *http.Request) {
	name, err := pathVar(r, "name")
	if err != nil {
		http.Error(w, "Invalid course name", http.StatusBadRequest)
		return
	}

	course, err := s.db.GetCourseByName(currentUser(r).ID, name)
	if err != nil {
		if errors.Is(err, learnpath.ErrNotFound) {
			w.Write([]byte("<p>Course not found</p>"))
			return
		}
		s.fail(w, "Failed to get course", err)
		return
	}

	s.render(w, r, "saved_course", map[string]interface{}{
		"Course": course,
	})
}

// handleModule renders a module deep-dive, or a PDF of it when ?download is present
func (s *Server) handleModule(w http.ResponseWriter, r *http.Request) {
	courseName, err := pathVar(r, "course")
	if err != nil {
		http.Error(w, "Invalid course name", http.StatusBadRequest)
		return
	}
	moduleName, err := pathVar(r, "module")
	if err != nil {
		http.Error(w, "Invalid module name", http.StatusBadRequest)
		return
	}

	content, err := s.gen.GenerateModule(r.Context(), courseName, moduleName)
	if err != nil {
		s.fail(w, "Failed to generate module", err)
		return
	}
	if strings.TrimSpace(content) == "" {
		w.Write([]byte("<p>Module not found</p>"))
		return
	}

	if _, ok := r.URL.Query()["download"]; ok {
		var pdf bytes.Buffer
		if err := learnpath.RenderPDF(&pdf, content, learnpath.DefaultPageOptions); err != nil {
			s.fail(w, "Failed to render PDF", err)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="module.pdf"`)
		w.Write(pdf.Bytes())
		return
	}

	s.render(w, r, "module", map[string]interface{}{
		"CourseName": courseName,
		"ModuleName": moduleName,
		"Content":    content,
	})
}

// pathVar returns a decoded route variable. The router matches the encoded
// path so names containing "/" stay in one segment.
func pathVar(r *http.Request, key string) (string, error) {
	return url.PathUnescape(mux.Vars(r)[key])
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "about", nil)
}
