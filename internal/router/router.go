// Package router sets up all HTTP routes and middleware chains for the
// category service. Authentication happens upstream (gateway); every
// request that reaches this router is already authorized.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"shopcms/internal/handlers"
	"shopcms/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(categories *handlers.Categories) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check.
	r.Get("/health", healthHandler)

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categories.List)
		r.Post("/", categories.Create)

		// Tree-shaped read projections.
		r.Get("/hierarchy", categories.Hierarchy)
		r.Get("/menu", categories.Menu)
		r.Get("/tree", categories.Tree)

		r.Get("/featured", categories.Featured)
		r.Get("/statistics", categories.Statistics)
		r.Get("/slug/{slug}", categories.GetBySlug)

		// Batch operations.
		r.Post("/reorder", categories.Reorder)
		r.Post("/bulk-delete", categories.BulkDelete)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", categories.Get)
			r.Put("/", categories.Update)
			r.Delete("/", categories.Delete)
			r.Get("/breadcrumb", categories.Breadcrumb)
			r.Post("/toggle-active", categories.ToggleActive)
			r.Post("/toggle-featured", categories.ToggleFeatured)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
