// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and are
exposed at /metrics by the HTTP adapter:

	curl http://localhost:8080/metrics

# Available Metrics

Pipeline:
  - storyline_pipeline_runs_total{status}
  - storyline_pipeline_duration_seconds
  - storyline_pipeline_batch_size
  - storyline_signal_outcomes_total{outcome, error_kind}
  - storyline_stage_duration_seconds{stage}

Clustering and enrichment:
  - storyline_adjudications_total{result}
  - storyline_cluster_size
  - storyline_pitch_generations_total{result}
  - storyline_learning_writes_total{result}
  - storyline_taxonomy_refreshes_total{result}

Dependencies:
  - storyline_store_call_duration_seconds{store, operation}
  - storyline_store_errors_total{store, operation}
  - storyline_cache_hits_total{cache_type}, storyline_cache_misses_total{cache_type}
  - storyline_ai_requests_total{operation, status}
  - storyline_ai_request_duration_seconds{operation}
  - storyline_ai_tokens_total{direction}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name, result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

HTTP:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

# Usage

	start := time.Now()
	entries, err := store.FindCandidates(ctx, terms)
	metrics.RecordStoreCall("taxonomy", "find_candidates", time.Since(start), err)
*/
package metrics
