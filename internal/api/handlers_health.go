// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
)

const healthCheckTimeout = 2 * time.Second

// Health handles GET /api/v1/health. Any failing check marks the service
// degraded and answers 503 so load balancers stop routing to it.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := models.HealthStatus{
		Status:    "healthy",
		Checks:    make(map[string]string, len(names)),
		AIEnabled: h.aiEnabled,
		Uptime:    time.Since(h.startTime).Seconds(),
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			status.Checks[name] = err.Error()
			status.Status = "degraded"
			continue
		}
		status.Checks[name] = "ok"
	}
	metrics.AppUptime.Set(status.Uptime)
	if h.lexiconVersion != nil {
		status.LexiconVersion = h.lexiconVersion()
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respondSuccess(w, r, code, status, start)
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, time.Time{})
}
