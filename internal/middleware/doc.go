// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: reuses an upstream X-Request-ID or generates one, echoes it
    in the response and stores it in the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labeled
    by the chi route pattern so path parameters do not explode cardinality
  - AccessLog: one structured zerolog line per request

All three are func(http.Handler) http.Handler and plug into chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)

See Also:

  - internal/api: the router that installs this stack
  - internal/metrics: Prometheus metric definitions
  - internal/logging: request id context helpers
*/
package middleware
