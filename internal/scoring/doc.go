// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package scoring computes the three independent axis scores of a signal.
//
//   - EvidenceScorer: identity fit from the channel's own history on a topic
//   - UrgencyScorer: time sensitivity within a caller-supplied window
//   - DemandScorer: expected audience pull from external and audience data
//
// Every score is in [0,100] and carries the evidence that produced it. None of
// the scorers fails a run: missing or unreachable data degrades to a
// documented fallback score, and the underlying error is returned alongside
// so the caller can account for it.
package scoring
