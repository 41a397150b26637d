/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions for
  the dashboard read API. This is the wiring layer that connects URLs to
  handlers; the engine itself never imports this package.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the dashboard frontend

SECURITY NOTE:
  No authentication middleware. The API is read-only and meant to sit
  behind the same network boundary as the dashboard.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/dashboard/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.GetSnapshot)
		r.Get("/transactions", h.GetTransactions)
		r.Get("/stream", h.StreamSnapshots)
		r.Get("/health", h.Health)
	})

	return r
}
