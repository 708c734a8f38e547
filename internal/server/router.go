package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cloo-solutions/aula/internal/api/handlers"
	"github.com/cloo-solutions/aula/internal/api/middleware"
)

type RouterConfig struct {
	Readiness      middleware.ReadinessChecker
	TutorHandler   *handlers.TutorHandler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler
	// VideoDir is served under /videos/ when non-empty.
	VideoDir string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.StudentContext)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", cfg.HealthHandler.Health)
	r.Get("/ready", cfg.HealthHandler.Ready)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireReady(cfg.Readiness))
		r.Use(middleware.RequireJSON)

		r.Post("/ask", cfg.TutorHandler.Ask)
		r.Post("/exercises", cfg.TutorHandler.Exercises)
		r.Get("/topics", cfg.CatalogHandler.Topics)
	})

	r.Get("/interactions", cfg.CatalogHandler.Interactions)

	if cfg.VideoDir != "" {
		videos := http.StripPrefix("/videos/", http.FileServer(http.Dir(cfg.VideoDir)))
		r.Handle("/videos/*", videos)
	}

	return r
}
