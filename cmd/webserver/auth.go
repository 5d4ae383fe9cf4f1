package main

import (
	"errors"
	"net/http"

	"learnpath"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, "signup", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	user, err := s.db.RegisterUser(r.FormValue("username"), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		msg := "Could not create account"
		if errors.Is(err, learnpath.ErrDuplicateUser) {
			msg = "That username or email is already registered"
		} else {
			s.log.Warnf("Signup failed: %v", err)
		}
		w.WriteHeader(http.StatusBadRequest)
		s.render(w, r, "signup", map[string]interface{}{"Error": msg})
		return
	}

	s.log.Infof("Registered user %d (%s)", user.ID, user.Username)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.render(w, r, "login", nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	user, err := s.db.Authenticate(r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, learnpath.ErrInvalidCredentials) {
			s.log.Errorf("Login failed: %v", err)
		}
		w.WriteHeader(http.StatusUnauthorized)
		s.render(w, r, "login", map[string]interface{}{"Error": "Invalid email or password"})
		return
	}

	session, _ := s.store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		s.fail(w, "Failed to save session", err)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "user_id")
	if err := session.Save(r, w); err != nil {
		s.log.Errorf("Session save error: %v", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
