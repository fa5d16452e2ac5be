// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package cluster

import (
	"context"

	"github.com/tomtom215/storyline/internal/models"
)

// Verdict is an adjudicator's answer for one pair.
type Verdict struct {
	SameStory  bool    `json:"same_story"`
	Confidence float64 `json:"confidence"` // 0..1
	Reason     string  `json:"reason,omitempty"`
}

// Adjudicator decides whether two signals describe the same story. It must
// honor ctx and return a typed failure (see package failure) on timeout or
// unavailability.
type Adjudicator interface {
	SameStory(ctx context.Context, a, b models.ScoredSignal, shared []string) (Verdict, error)
}

// AdjudicatorFunc adapts a function to the Adjudicator interface.
type AdjudicatorFunc func(ctx context.Context, a, b models.ScoredSignal, shared []string) (Verdict, error)

// SameStory calls f.
func (f AdjudicatorFunc) SameStory(ctx context.Context, a, b models.ScoredSignal, shared []string) (Verdict, error) {
	return f(ctx, a, b, shared)
}
