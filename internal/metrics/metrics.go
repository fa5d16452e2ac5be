// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_pipeline_runs_total",
			Help: "Total number of recommendation pipeline runs",
		},
		[]string{"status"}, // "success" or a failure kind
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyline_pipeline_duration_seconds",
			Help:    "End-to-end duration of a recommendation run",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	PipelineBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyline_pipeline_batch_size",
			Help:    "Number of input signals per run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	SignalOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_signal_outcomes_total",
			Help: "Per-signal outcomes reported in run diagnostics",
		},
		[]string{"outcome", "error_kind"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyline_stage_duration_seconds",
			Help:    "Duration of individual pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // "score", "cluster", "rank", "pitch"
	)

	// Clustering Metrics
	Adjudications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_adjudications_total",
			Help: "Borderline pair adjudications by result",
		},
		[]string{"result"}, // "same", "distinct", "low_confidence", "timeout", "unavailable", "budget_exhausted", "cached"
	)

	ClusterSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyline_cluster_size",
			Help:    "Number of member signals per cluster",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Pitch and Learning Metrics
	PitchGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_pitch_generations_total",
			Help: "Pitch text generations by result",
		},
		[]string{"result"}, // "generated", "failed"
	)

	LearningWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_learning_writes_total",
			Help: "Taxonomy learning writes by result",
		},
		[]string{"result"}, // "applied", "duplicate", "rejected", "error"
	)

	TaxonomyRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_taxonomy_refreshes_total",
			Help: "Anchor lexicon reloads from the taxonomy store",
		},
		[]string{"result"},
	)

	// Store Metrics
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyline_store_call_duration_seconds",
			Help:    "Duration of taxonomy and evidence store calls",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"store", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_store_errors_total",
			Help: "Store call failures",
		},
		[]string{"store", "operation"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "evidence", "verdict"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// AI Client Metrics
	AIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_ai_requests_total",
			Help: "Requests sent to the AI provider",
		},
		[]string{"operation", "status"},
	)

	AIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyline_ai_request_duration_seconds",
			Help:    "AI provider request latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"operation"},
	)

	AITokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_ai_tokens_total",
			Help: "Tokens consumed by AI requests",
		},
		[]string{"direction"}, // "input", "output"
	)

	// Ingest Metrics
	IngestItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyline_ingest_items_total",
			Help: "Feed items converted to signals",
		},
		[]string{"result"}, // "accepted", "duplicate", "empty"
	)

	IngestFetchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storyline_ingest_fetch_errors_total",
			Help: "Feed fetch or parse failures",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordPipelineRun records the outcome of one recommendation run.
func RecordPipelineRun(status string, batchSize int, duration time.Duration) {
	PipelineRuns.WithLabelValues(status).Inc()
	PipelineDuration.Observe(duration.Seconds())
	PipelineBatchSize.Observe(float64(batchSize))
}

// RecordSignalOutcome counts one per-signal diagnostic outcome.
func RecordSignalOutcome(outcome, errorKind string) {
	if errorKind == "" {
		errorKind = "none"
	}
	SignalOutcomes.WithLabelValues(outcome, errorKind).Inc()
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, duration time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordStoreCall records a taxonomy or evidence store call.
func RecordStoreCall(store, operation string, duration time.Duration, err error) {
	StoreCallDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(store, operation).Inc()
	}
}

// RecordCacheLookup counts a hit or miss for the named cache.
func RecordCacheLookup(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// RecordAIRequest records one request to the AI provider.
func RecordAIRequest(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	AIRequestsTotal.WithLabelValues(operation, status).Inc()
	AIRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
