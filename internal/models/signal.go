// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

import "time"

// SourceType identifies where a signal came from.
type SourceType string

const (
	SourceManual   SourceType = "manual"
	SourceRSS      SourceType = "rss"
	SourceBehavior SourceType = "behavior"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceManual, SourceRSS, SourceBehavior:
		return true
	default:
		return false
	}
}

// AnchorClass ranks how specific an extracted anchor is.
type AnchorClass string

const (
	// AnchorMechanism words appear in unrelated stories and never count.
	AnchorMechanism AnchorClass = "mechanism"
	// AnchorGeneric taxonomy keywords carry little story identity.
	AnchorGeneric AnchorClass = "generic"
	// AnchorCountry is valid context but too broad on its own.
	AnchorCountry AnchorClass = "country"
	// AnchorPerson names a specific person.
	AnchorPerson AnchorClass = "person"
	// AnchorTopicSpecific names a specific place, organization or product.
	AnchorTopicSpecific AnchorClass = "topic-specific"
	// AnchorEvent names a specific kind of news event.
	AnchorEvent AnchorClass = "event"
)

// HighValue reports whether the class is above the generic tier and
// therefore counts toward story matching.
func (c AnchorClass) HighValue() bool {
	switch c {
	case AnchorPerson, AnchorTopicSpecific, AnchorEvent:
		return true
	default:
		return false
	}
}

// Anchor is a normalized term extracted from signal text.
type Anchor struct {
	Term  string      `json:"term"`
	Class AnchorClass `json:"class"`
}

// SignalInput is a signal as supplied by a caller. Anchors and topic are
// never accepted from input; they are derived by the pipeline.
type SignalInput struct {
	ID          string     `json:"id,omitempty" validate:"omitempty,max=256"`
	Text        string     `json:"text" validate:"notblank,max=4000"`
	SourceType  SourceType `json:"source_type" validate:"sourcetype"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	SourceURL   string     `json:"source_url,omitempty" validate:"omitempty,url"`
	SourceName  string     `json:"source_name,omitempty" validate:"max=256"`
	Format      string     `json:"format,omitempty" validate:"max=64"`
}

// Signal is a validated unit of candidate content information.
type Signal struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	SourceType  SourceType `json:"source_type"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	SourceName  string     `json:"source_name,omitempty"`
	Format      string     `json:"format,omitempty"`
	Anchors     []Anchor   `json:"anchors"`
	TopicID     string     `json:"topic_id,omitempty"`
}

// HasTimestamp reports whether the signal carries a published time.
func (s *Signal) HasTimestamp() bool {
	return s.PublishedAt != nil && !s.PublishedAt.IsZero()
}

// Terms returns every anchor term except mechanism words.
func (s *Signal) Terms() []string {
	terms := make([]string, 0, len(s.Anchors))
	for _, a := range s.Anchors {
		if a.Class == AnchorMechanism {
			continue
		}
		terms = append(terms, a.Term)
	}
	return terms
}

// HighValueTerms returns the set of high-value anchor terms.
func (s *Signal) HighValueTerms() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Anchors))
	for _, a := range s.Anchors {
		if a.Class.HighValue() {
			set[a.Term] = struct{}{}
		}
	}
	return set
}

// TermsOfClass returns the set of anchor terms with the given class.
func (s *Signal) TermsOfClass(class AnchorClass) map[string]struct{} {
	set := make(map[string]struct{})
	for _, a := range s.Anchors {
		if a.Class == class {
			set[a.Term] = struct{}{}
		}
	}
	return set
}
