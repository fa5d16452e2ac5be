// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success" or "error". On error, Data is null and Error carries
// a machine-readable code:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-10T12:00:00Z", "request_id": "..."},
//	  "error": {"code": "VALIDATION_ERROR", "message": "signals must not be empty"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata is attached to every response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
	// DurationMS is the handler processing time.
	DurationMS int64 `json:"duration_ms,omitempty"`
}

// APIError describes a failed request.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is the health endpoint payload.
type HealthStatus struct {
	Status string `json:"status"` // "healthy" or "degraded"
	// Checks maps a dependency name to "ok" or the failure message.
	Checks         map[string]string `json:"checks"`
	LexiconVersion int64             `json:"lexicon_version"`
	AIEnabled      bool              `json:"ai_enabled"`
	Uptime         float64           `json:"uptime_seconds"`
}
