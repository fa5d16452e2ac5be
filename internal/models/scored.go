// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

// FitStatus explains how the identity-fit score was produced.
type FitStatus string

const (
	// FitScored means evidence for the topic existed and was aggregated.
	FitScored FitStatus = "scored"
	// FitNoEvidence means the topic is plausible but has no history; the
	// score is the configured neutral value.
	FitNoEvidence FitStatus = "no-evidence"
	// FitUnscored means no topic was resolved or the evidence lookup failed.
	// The score is 0.
	FitUnscored FitStatus = "unscored"
)

// FitScore is the identity-fit (content DNA) axis.
type FitScore struct {
	Score     float64        `json:"score"`
	Status    FitStatus      `json:"status"`
	Rationale []EvidenceItem `json:"rationale"`
	Error     string         `json:"error,omitempty"`
}

// UrgencyTier buckets urgency for editorial planning.
type UrgencyTier string

const (
	TierPostToday UrgencyTier = "post_today"
	TierThisWeek  UrgencyTier = "this_week"
	TierBacklog   UrgencyTier = "backlog"
)

// UrgencyScore is the time-sensitivity axis.
type UrgencyScore struct {
	Score  float64     `json:"score"`
	Tier   UrgencyTier `json:"tier"`
	Reason string      `json:"reason"`
}

// DemandLevel summarizes the demand score.
type DemandLevel string

const (
	DemandHigh   DemandLevel = "high"
	DemandMedium DemandLevel = "medium"
	DemandLow    DemandLevel = "low"
)

// DemandScore is the proven-demand axis.
type DemandScore struct {
	Score     float64            `json:"score"`
	Level     DemandLevel        `json:"level"`
	Sparse    bool               `json:"sparse"`
	Breakdown map[string]float64 `json:"breakdown,omitempty"`
	Rationale []EvidenceItem     `json:"rationale"`
	Error     string             `json:"error,omitempty"`
}

// ScoredSignal is a signal with all three axis scores attached.
type ScoredSignal struct {
	Signal
	TopicConfidence float64      `json:"topic_confidence"`
	NeedsReview     bool         `json:"needs_review,omitempty"`
	Fit             FitScore     `json:"fit"`
	Urgency         UrgencyScore `json:"urgency"`
	Demand          DemandScore  `json:"demand"`
	Composite       float64      `json:"composite"`
}
