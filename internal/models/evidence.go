// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

import "time"

// EvidenceKind distinguishes the historical data sources behind a record.
type EvidenceKind string

const (
	EvidenceOwnPerformance   EvidenceKind = "own_performance"
	EvidenceIdentity         EvidenceKind = "identity"
	EvidenceCompetitor       EvidenceKind = "competitor"
	EvidenceAudienceRequest  EvidenceKind = "audience_request"
	EvidenceAudienceQuestion EvidenceKind = "audience_question"
	EvidenceSearchInterest   EvidenceKind = "search_interest"
)

// EvidenceRecord is historical outcome data keyed by topic.
type EvidenceRecord struct {
	ID            string       `json:"id" yaml:"id" validate:"notblank,max=128"`
	TopicID       string       `json:"topic_id" yaml:"topic_id" validate:"notblank,max=128"`
	Kind          EvidenceKind `json:"kind" yaml:"kind" validate:"oneof=own_performance identity competitor audience_request audience_question search_interest"`
	Title         string       `json:"title,omitempty" yaml:"title" validate:"max=512"`
	Format        string       `json:"format,omitempty" yaml:"format" validate:"max=64"`
	Views         int64        `json:"views,omitempty" yaml:"views" validate:"gte=0"`
	BaselineViews int64        `json:"baseline_views,omitempty" yaml:"baseline_views" validate:"gte=0"`
	Likes         int64        `json:"likes,omitempty" yaml:"likes" validate:"gte=0"`
	Breakout      bool         `json:"breakout,omitempty" yaml:"breakout"`
	ObservedAt    time.Time    `json:"observed_at" yaml:"observed_at"`
}

// PerformanceRatio returns views relative to the baseline. A record without a
// baseline is treated as exactly on baseline.
func (r *EvidenceRecord) PerformanceRatio() float64 {
	if r.BaselineViews <= 0 {
		return 1
	}
	return float64(r.Views) / float64(r.BaselineViews)
}

// EvidenceItem is one justification line attached to an axis score.
type EvidenceItem struct {
	RecordID string       `json:"record_id,omitempty"`
	Kind     EvidenceKind `json:"kind"`
	Detail   string       `json:"detail"`
	Points   float64      `json:"points"`
}
