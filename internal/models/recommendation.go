// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

// Verdict is the editorial recommendation tier derived from the composite score.
type Verdict string

const (
	VerdictHighlyRecommended Verdict = "highly_recommended"
	VerdictRecommended       Verdict = "recommended"
	VerdictConsider          Verdict = "consider"
	VerdictSkip              Verdict = "skip"
)

// VerdictFor maps a composite score to its verdict tier.
func VerdictFor(composite float64) Verdict {
	switch {
	case composite >= 70:
		return VerdictHighlyRecommended
	case composite >= 50:
		return VerdictRecommended
	case composite >= 30:
		return VerdictConsider
	default:
		return VerdictSkip
	}
}

// PitchStatus records what happened to optional pitch generation.
type PitchStatus string

const (
	PitchGenerated    PitchStatus = "generated"
	PitchFailed       PitchStatus = "failed"
	PitchDisabled     PitchStatus = "disabled"
	PitchNotRequested PitchStatus = "not_requested"
)

// AxisBreakdown exposes the per-axis scores behind a composite.
type AxisBreakdown struct {
	Fit       float64   `json:"fit"`
	FitStatus FitStatus `json:"fit_status"`
	Urgency   float64   `json:"urgency"`
	Demand    float64   `json:"demand"`
}

// Recommendation is the final output unit: one per retained cluster.
type Recommendation struct {
	Rank             int            `json:"rank"`
	ClusterID        string         `json:"cluster_id"`
	ClusterKey       string         `json:"cluster_key"`
	RepresentativeID string         `json:"representative_id"`
	Title            string         `json:"title"`
	TopicID          string         `json:"topic_id,omitempty"`
	SourceURL        string         `json:"source_url,omitempty"`
	Composite        float64        `json:"composite"`
	Axes             AxisBreakdown  `json:"axes"`
	UrgencyTier      UrgencyTier    `json:"urgency_tier"`
	Verdict          Verdict        `json:"verdict"`
	MemberIDs        []string       `json:"member_ids"`
	Evidence         []EvidenceItem `json:"evidence,omitempty"`
	Pitch            string         `json:"pitch,omitempty"`
	PitchStatus      PitchStatus    `json:"pitch_status"`
}

// Outcome is what happened to one input signal in a run.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeMerged   Outcome = "merged"
	OutcomeRejected Outcome = "rejected"
	OutcomeSkipped  Outcome = "skipped"
)

// SignalOutcome is the audit record for one input signal.
type SignalOutcome struct {
	Index      int      `json:"index"`
	SignalID   string   `json:"signal_id,omitempty"`
	Outcome    Outcome  `json:"outcome"`
	ClusterID  string   `json:"cluster_id,omitempty"`
	MergedInto string   `json:"merged_into,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	ErrorKind  string   `json:"error_kind,omitempty"`
	Notes      []string `json:"notes,omitempty"`
}

// OutcomeCounts tallies signal outcomes.
type OutcomeCounts struct {
	Accepted int `json:"accepted"`
	Merged   int `json:"merged"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
}

// Diagnostics makes a run auditable.
type Diagnostics struct {
	Counts              OutcomeCounts   `json:"counts"`
	Signals             []SignalOutcome `json:"signals"`
	MultiMemberClusters int             `json:"multi_member_clusters"`
	Unresolved          int             `json:"unresolved"`
}
