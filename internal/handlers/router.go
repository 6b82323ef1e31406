// Package handlers provides the HTTP API the browser extension talks to.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Priyank911/mapping/internal/capture"
	"github.com/Priyank911/mapping/internal/config"
	"github.com/Priyank911/mapping/internal/middleware"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/session"
)

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Secrets  *secrets.Service
	Sessions *session.Service
	Pipeline *capture.Pipeline
}

// NewRouter creates and configures the HTTP router.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics())
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(chimiddleware.Timeout(deps.Config.Server.RequestTimeout))

	api := NewAPIHandler(deps.Secrets, deps.Sessions, deps.Pipeline)

	// Health and metrics, unauthenticated.
	r.Get("/health", api.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TokenAuth(deps.Config.Server.AuthToken))

		r.Get("/status", api.Status)
		r.Post("/setup", api.Setup)
		r.Post("/unlock", api.Unlock)
		r.Post("/lock", api.Lock)
		r.Post("/reset", api.Reset)

		r.Route("/secrets/{name}", func(r chi.Router) {
			r.Get("/", api.GetSecret)
			r.Put("/", api.SetSecret)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", api.ListSessions)
			r.Post("/", api.CreateSession)
			r.Get("/active", api.GetActiveSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetSession)
				r.Delete("/", api.DeleteSession)
				r.Post("/activate", api.ActivateSession)
				r.Get("/context", api.GetSessionContext)
			})
		})

		r.Post("/capture", api.Capture)
	})

	return r
}
