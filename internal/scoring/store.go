// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package scoring

import (
	"context"
	"math"
	"time"

	"github.com/tomtom215/storyline/internal/models"
)

// EvidenceStore is the read-only source of historical evidence.
type EvidenceStore interface {
	GetEvidence(ctx context.Context, topicID string) ([]models.EvidenceRecord, error)
}

// Clock returns the current time. Scorers take one so tests can pin it.
type Clock func() time.Time

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round2 keeps scores stable across platforms for display and comparison.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
