// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/storyline/internal/config"
	"github.com/tomtom215/storyline/internal/middleware"
)

// RouterConfigFrom converts the server section of the application config.
func RouterConfigFrom(cfg *config.ServerConfig) RouterConfig {
	rc := DefaultRouterConfig()
	rc.CORSAllowedOrigins = append([]string(nil), cfg.CORSOrigins...)
	rc.RateLimitRequests = cfg.RateLimitRequests
	rc.RateLimitWindow = cfg.RateLimitWindow
	rc.RateLimitDisabled = cfg.RateLimitDisabled
	return rc
}

// NewRouter wires all routes and middleware.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(corsMiddleware(cfg)) // global so OPTIONS preflight is answered
	r.Use(middleware.AccessLog)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(securityHeaders)
		r.Use(chimiddleware.Compress(5, "application/json"))

		// Health probes are not rate limited.
		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)

		r.Group(func(r chi.Router) {
			r.Use(rateLimit(cfg))
			r.Post("/recommendations", h.Recommendations)
			r.Post("/taxonomy/feedback", h.TaxonomyFeedback)
		})
	})

	return r
}
