// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package api provides the HTTP layer for Storyline.

Routes:

  - POST /api/v1/recommendations: run the pipeline over inline signals,
    feed URLs, or the configured default feeds
  - POST /api/v1/taxonomy/feedback: confirm or correct a topic assignment
  - GET /api/v1/health: dependency checks (503 when degraded)
  - GET /api/v1/health/live: liveness only
  - GET /metrics: Prometheus exposition

Every JSON response uses the models.APIResponse envelope. Failures are mapped
from their failure.Kind:

	validation             -> 400 VALIDATION_ERROR
	dependency_unavailable -> 503 DEPENDENCY_UNAVAILABLE
	timeout                -> 504 TIMEOUT
	anything else          -> 500 INTERNAL_ERROR

Middleware Stack:

Global: request id, real IP, panic recovery, CORS, access log. The /api/v1
group adds rate limiting (go-chi/httprate), Prometheus instrumentation,
security headers and gzip compression.

Usage:

	handler, err := api.NewHandler(api.HandlerDeps{
	    Engine:  engine,
	    Feeds:   fetcher,
	    Learner: learner,
	})
	srv := &http.Server{Handler: api.NewRouter(handler, api.RouterConfigFrom(cfg.Server))}
*/
package api
