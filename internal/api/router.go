package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Operational probes (no auth, no /api prefix: these are for
	// orchestrators and scrapers, not API clients)
	r.Get("/healthz", s.handleLiveness)
	r.Get("/readyz", s.handleReadiness)
	if s.reg != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health report (no auth required)
		r.Get("/health", s.handleHealth)

		// Auth endpoints (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Note endpoints
			r.Route("/notes", func(r chi.Router) {
				r.Get("/", s.handleListNotes)
				r.Post("/", s.handleCreateNote)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetNote)
					r.Put("/", s.handleUpdateNote)
					r.Delete("/", s.handleDeleteNote)
				})
			})

			// Raw cache endpoints
			r.Route("/cache/{key}", func(r chi.Router) {
				r.Put("/", s.handleCachePut)
				r.Get("/", s.handleCacheGet)
				r.Delete("/", s.handleCacheDelete)
				r.Get("/exists", s.handleCacheExists)
			})

			// Job submission
			r.Post("/jobs", s.handleEnqueueJob)

			// Event publication
			r.Post("/events", s.handlePublishEvent)
		})
	})

	// WebSocket feed (auth via token, validated in handler)
	r.Get("/ws", s.handleWebSocket)

	return r
}
