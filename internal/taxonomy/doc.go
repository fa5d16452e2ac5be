// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package taxonomy maps free-text signals onto a controlled topic taxonomy and
// applies human feedback to the taxonomy's keyword weights.
//
// # Resolution
//
// The Resolver extracts anchors from the signal text, asks the Store for the
// entries that share any of those terms, and scores each entry by the sum of
// its matched keyword weights:
//
//	score      = sum(classWeight(kw.Class) * kw.Weight)
//	confidence = score / (score + 1)
//
// The best-scoring entry wins when its confidence clears the entry threshold.
// Ties go to the lower topic id. Anything else is a no-match that is flagged
// for manual review; an unresolved signal is valid output, not an error.
//
// # Learning
//
// The Learner is the only writer of taxonomy state. Writes for one topic are
// serialized in-process and applied by the Store under optimistic versioning.
// Each feedback id is applied at most once per topic.
package taxonomy
