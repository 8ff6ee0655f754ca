// Package web serves the read-only ops dashboard: job table with live run
// status, plus recent attempt history when a database is configured. Jobs
// are managed in the YAML file, so there are no mutation endpoints.
package web

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/campsched/internal/auth"
	"github.com/example/campsched/internal/history"
	"github.com/example/campsched/internal/jobs"
	"github.com/example/campsched/internal/runner"
)

//go:embed templates/*.html
var fs embed.FS

// StatusSource exposes the runner's per-job snapshot.
type StatusSource interface {
	Snapshot() []runner.Status
}

// HistorySource reads recent attempts; nil when no DB is configured.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]history.Attempt, error)
}

type Server struct {
	Auth    *auth.Store
	Jobs    []jobs.Job
	Status  StatusSource
	History HistorySource
	DryRun  bool
}

type jobRow struct {
	Job    jobs.Job
	Status runner.Status
}

type tmplData struct {
	Title    string
	Flash    string
	DryRun   bool
	Rows     []jobRow
	Attempts []history.Attempt
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.Auth.RequireAuth)
		r.Get("/", s.handleDashboard)
	})

	return r
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	statuses := map[string]runner.Status{}
	if s.Status != nil {
		for _, st := range s.Status.Snapshot() {
			statuses[st.JobName] = st
		}
	}

	rows := make([]jobRow, 0, len(s.Jobs))
	for _, j := range s.Jobs {
		rows = append(rows, jobRow{Job: j, Status: statuses[j.Name]})
	}

	var attempts []history.Attempt
	if s.History != nil {
		var err error
		attempts, err = s.History.Recent(r.Context(), 50)
		if err != nil {
			log.Printf("web: loading attempt history: %v", err)
		}
	}

	s.render(w, "templates/dashboard.html", tmplData{
		Title:    "Jobs",
		DryRun:   s.DryRun,
		Rows:     rows,
		Attempts: attempts,
	})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, _ *http.Request) {
	s.render(w, "templates/login.html", tmplData{Title: "Login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	password := strings.TrimSpace(r.FormValue("password"))
	if !s.Auth.Authenticate(password) {
		s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Wrong password"})
		return
	}
	if err := s.Auth.SetSession(w, r); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.New("").Funcs(template.FuncMap{
		"fmtTime": func(ts time.Time) string {
			if ts.IsZero() {
				return "-"
			}
			return ts.Format("2006-01-02 15:04:05")
		},
	}).ParseFS(fs, name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, strings.TrimPrefix(name, "templates/"), data); err != nil {
		log.Printf("web: rendering %s: %v", name, err)
	}
}

// Start runs the ops server until the context is canceled.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
