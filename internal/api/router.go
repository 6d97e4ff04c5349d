package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hoanghai1803/cyberdigest/internal/api/handlers"
)

// Deps are the collaborators the HTTP API serves.
type Deps struct {
	Runner    handlers.Runner
	ReportDir string
	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Get("/healthz", handlers.Health())
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/reports", handlers.ListReports(d.ReportDir))
		api.Get("/reports/{name}", handlers.GetReport(d.ReportDir))
		api.Post("/runs", handlers.TriggerRun(d.Runner))
	})

	return r
}
