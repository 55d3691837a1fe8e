package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter monta todas las rutas de la API.
func NewRouter(stats *StatsHandler, runs *RunHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", Health)

	r.Get("/dimensions", stats.ListDimensions)
	r.Route("/stats/{dimension}", func(r chi.Router) {
		r.Get("/", stats.GetReport)
		r.Get("/raw", stats.GetRaw)
	})
	r.Get("/charts/{dimension}", stats.GetCharts)

	r.Get("/runs", runs.ListRuns)
	r.Get("/runs/{id}", runs.GetRun)
	r.Get("/ws/pipeline", runs.RunPipelineWS)

	return r
}
