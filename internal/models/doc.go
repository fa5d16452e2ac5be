// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package models defines the entities that flow through the signal pipeline.

A pipeline run owns every object it creates:

	SignalInput -> Signal -> ScoredSignal -> Cluster -> Recommendation

Key Components:

  - SignalInput: untrusted record accepted at the pipeline boundary
  - Signal: validated signal with derived anchors and resolved topic
  - TaxonomyEntry / Keyword: controlled topics and their weighted keywords
  - EvidenceRecord: historical outcome data keyed by topic (read-only)
  - ScoredSignal: a Signal with fit, urgency and demand axis scores
  - Cluster: signals judged to describe the same story
  - Recommendation / Diagnostics: final output of a run

All types serialize to snake_case JSON so they can be returned to callers
without an intermediate DTO layer.
*/
package models
