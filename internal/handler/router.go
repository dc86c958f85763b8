package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tasktrack/tasktrack-go/internal/middleware"
)

// RouterConfig wires handlers and middleware into the HTTP API.
type RouterConfig struct {
	Auth   *AuthHandler
	Tasks  *TaskHandler
	Gate   *middleware.Gate
	Logger *slog.Logger

	// Optional.
	AuthRateLimit  func(http.Handler) http.Handler
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
}

// NewRouter builds the chi router for the API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.Logger != nil {
		r.Use(middleware.Logger(cfg.Logger))
	}
	r.Use(chimw.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Instrument)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.AuthRateLimit != nil {
			r.Use(cfg.AuthRateLimit)
		}
		r.Post("/api/auth/signup", cfg.Auth.HandleSignup)
		r.Post("/api/auth/login", cfg.Auth.HandleLogin)
	})
	r.Post("/api/auth/logout", cfg.Auth.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Gate))
		r.Get("/api/auth/me", cfg.Auth.HandleMe)

		r.Get("/api/tasks", cfg.Tasks.HandleList)
		r.Post("/api/tasks", cfg.Tasks.HandleCreate)
		r.Get("/api/tasks/{id}", cfg.Tasks.HandleGet)
		r.Patch("/api/tasks/{id}", cfg.Tasks.HandleUpdate)
		r.Delete("/api/tasks/{id}", cfg.Tasks.HandleDelete)
	})

	return r
}
