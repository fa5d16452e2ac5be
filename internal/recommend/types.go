// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/storyline/internal/cluster"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/scoring"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// Skip and rejection reasons reported in diagnostics.
const (
	ReasonBatchTimeout     = "batch-timeout"
	ReasonDuplicateID      = "duplicate-id"
	ReasonRankedBelowLimit = "ranked-below-limit"
)

// Request is one recommendation run.
type Request struct {
	Signals []models.SignalInput `json:"signals"`

	// Limit caps the number of recommendations. Zero uses the default.
	Limit int `json:"limit,omitempty"`

	// Weights overrides the configured axis weights.
	Weights *AxisWeights `json:"weights,omitempty"`

	// Window is the clustering time window. Zero uses the default.
	Window time.Duration `json:"window,omitempty"`

	GeneratePitches bool   `json:"generate_pitches,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
}

// Response is the result of a run.
type Response struct {
	Recommendations []models.Recommendation `json:"recommendations"`
	Diagnostics     models.Diagnostics      `json:"diagnostics"`
	Metadata        Metadata                `json:"metadata"`
}

// Metadata describes how a run was executed.
type Metadata struct {
	RequestID         string      `json:"request_id"`
	LatencyMS         int64       `json:"latency_ms"`
	Window            string      `json:"window"`
	Weights           AxisWeights `json:"weights"`
	Limit             int         `json:"limit"`
	AdjudicationsUsed int         `json:"adjudications_used"`
	GeneratedAt       time.Time   `json:"generated_at"`
}

// Resolver attaches anchors and topics to signals.
type Resolver interface {
	Anchors(text string) []models.Anchor
	Resolve(ctx context.Context, sig *models.Signal) (taxonomy.Resolution, error)
}

// FitScorer scores the identity-fit axis.
type FitScorer interface {
	ScoreFit(ctx context.Context, topicID string, ec scoring.EvidenceContext) (models.FitScore, error)
}

// UrgencyScorer scores the urgency axis.
type UrgencyScorer interface {
	ScoreUrgencyAt(sig *models.Signal, window time.Duration, now time.Time) models.UrgencyScore
}

// DemandScorer scores the proven-demand axis.
type DemandScorer interface {
	ScoreDemand(ctx context.Context, topicID string, dc scoring.DemandContext) (models.DemandScore, error)
}

// Clusterer groups scored signals into stories.
type Clusterer interface {
	Cluster(ctx context.Context, signals []models.ScoredSignal, window time.Duration) cluster.Result
}

// PitchGenerator writes a pitch for a recommendation.
type PitchGenerator interface {
	Generate(ctx context.Context, rec models.Recommendation) (string, error)
}

// Deps are the collaborators of an Engine. Pitcher is optional.
type Deps struct {
	Resolver  Resolver
	Fit       FitScorer
	Urgency   UrgencyScorer
	Demand    DemandScorer
	Clusterer Clusterer
	Pitcher   PitchGenerator
}
