package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnpath"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionName = "learnpath-session"

type Server struct {
	db        *learnpath.DB
	gen       *learnpath.Generator
	store     *sessions.CookieStore
	templates map[string]*template.Template
	log       *zap.SugaredLogger
}

type ctxKey int

const userKey ctxKey = 0

func main() {
	configDir := flag.String("config", ".", "Directory containing config.yaml")
	flag.Parse()

	cfg, err := learnpath.LoadConfig(*configDir)
	if err != nil {
		learnpath.Logger().Fatalf("Failed to load config: %v", err)
	}
	learnpath.SetVerbose(cfg.Verbose)
	log := learnpath.Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Initialize database
	db, err := learnpath.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	completer, err := learnpath.NewCompleter(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create completer: %v", err)
	}

	quizzes, err := learnpath.OpenQuizStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open quiz store: %v", err)
	}

	gen := learnpath.NewGenerator(completer, quizzes)
	gen.SetTimeout(cfg.CompletionTimeout)

	llmLogger, err := learnpath.NewLLMLogger(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to create LLM logger: %v", err)
	}
	defer llmLogger.Close()
	gen.SetLogger(llmLogger)

	server, err := newServer(db, gen, cfg.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}
}

func newServer(db *learnpath.DB, gen *learnpath.Generator, secret string) (*Server, error) {
	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Server{
		db:        db,
		gen:       gen,
		store:     store,
		templates: templates,
		log:       learnpath.Logger(),
	}, nil
}

func loadTemplates() (map[string]*template.Template, error) {
	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"safe": func(s string) template.HTML {
			return template.HTML(s)
		},
		"moduleName":        learnpath.ModuleName,
		"moduleDescription": learnpath.ModuleDescription,
		"pathEscape":        url.PathEscape,
	}

	// Create template map
	templates := make(map[string]*template.Template)

	// Load each template with base.html
	templateFiles := []struct {
		name string
		file string
	}{
		{"quiz_form", "templates/quiz_form.html"},
		{"quiz", "templates/quiz.html"},
		{"score", "templates/score.html"},
		{"signup", "templates/signup.html"},
		{"login", "templates/login.html"},
		{"dashboard", "templates/dashboard.html"},
		{"app", "templates/app.html"},
		{"course", "templates/course.html"},
		{"saved_course", "templates/saved_course.html"},
		{"module", "templates/module.html"},
		{"about", "templates/about.html"},
	}

	for _, tmpl := range templateFiles {
		t, err := template.New(tmpl.name).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", tmpl.file)
		if err != nil {
			return nil, err
		}
		templates[tmpl.name] = t
	}
	return templates, nil
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.UseEncodedPath()

	r.HandleFunc("/quiz_interface", s.handleQuizInterface).Methods(http.MethodGet)
	r.HandleFunc("/quiz", s.handleQuizGenerate).Methods(http.MethodPost)
	r.HandleFunc("/quiz", s.handleQuizScore).Methods(http.MethodGet)

	r.HandleFunc("/signup", s.handleSignup).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)
	r.HandleFunc("/about", s.handleAbout).Methods(http.MethodGet)
	r.HandleFunc("/module/{course}/{module}", s.handleModule).Methods(http.MethodGet)

	r.Handle("/", s.requireLogin(s.handleApp)).Methods(http.MethodGet)
	r.Handle("/app1", s.requireLogin(s.handleApp)).Methods(http.MethodGet)
	r.Handle("/dashboard", s.requireLogin(s.handleDashboard)).Methods(http.MethodGet)
	r.Handle("/course", s.requireLogin(s.handleCourse)).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/r_course/{name}", s.requireLogin(s.handleCourse)).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/saved_course/{name}", s.requireLogin(s.handleSavedCourse)).Methods(http.MethodGet)

	return r
}

// requireLogin redirects to /login unless the session belongs to a known user
func (s *Server) requireLogin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, _ := s.store.Get(r, sessionName)
		id, ok := session.Values["user_id"].(int64)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		user, err := s.db.GetUserByID(id)
		if err != nil {
			if !errors.Is(err, learnpath.ErrNotFound) {
				s.log.Errorf("Failed to load user %d: %v", id, err)
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func currentUser(r *http.Request) *learnpath.User {
	user, _ := r.Context().Value(userKey).(*learnpath.User)
	return user
}

// quizKey returns the key of the session's active quiz, creating one on first use
func (s *Server) quizKey(w http.ResponseWriter, r *http.Request) string {
	session, _ := s.store.Get(r, sessionName)
	if key, ok := session.Values["quiz_key"].(string); ok && key != "" {
		return key
	}

	key := uuid.NewString()
	session.Values["quiz_key"] = key
	if err := session.Save(r, w); err != nil {
		s.log.Errorf("Session save error: %v", err)
	}
	return key
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = currentUser(r)
	}

	if err := s.templates[name].ExecuteTemplate(w, "base.html", data); err != nil {
		s.log.Errorf("Template error in %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// fail maps generation errors to a status code and logs the rest
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, learnpath.ErrInvalidRequest) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Errorf("%s: %v", msg, err)
	http.Error(w, msg, http.StatusInternalServerError)
}
