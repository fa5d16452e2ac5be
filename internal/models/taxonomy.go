// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

// KeywordClass governs how strongly a keyword match counts as evidence for a topic.
type KeywordClass string

const (
	KeywordGeneric       KeywordClass = "generic"
	KeywordPerson        KeywordClass = "person"
	KeywordTopicSpecific KeywordClass = "topic-specific"
)

// Valid reports whether c is a known keyword class.
func (c KeywordClass) Valid() bool {
	switch c {
	case KeywordGeneric, KeywordPerson, KeywordTopicSpecific:
		return true
	default:
		return false
	}
}

// AnchorClass maps the keyword class onto the anchor tier used for story matching.
func (c KeywordClass) AnchorClass() AnchorClass {
	switch c {
	case KeywordPerson:
		return AnchorPerson
	case KeywordTopicSpecific:
		return AnchorTopicSpecific
	default:
		return AnchorGeneric
	}
}

// Keyword is a term registered against a taxonomy entry. Weight is a learned
// multiplier on the class weight; 1.0 is the seeded value.
type Keyword struct {
	Term   string       `json:"term" yaml:"term" validate:"notblank,max=128"`
	Class  KeywordClass `json:"class" yaml:"class" validate:"keywordclass"`
	Weight float64      `json:"weight" yaml:"weight" validate:"gte=0"`
}

// TaxonomyEntry is a controlled topic.
type TaxonomyEntry struct {
	ID        string    `json:"id" yaml:"id" validate:"notblank,max=128"`
	Name      string    `json:"name" yaml:"name" validate:"max=256"`
	Keywords  []Keyword `json:"keywords" yaml:"keywords" validate:"dive"`
	Threshold float64   `json:"threshold" yaml:"threshold" validate:"gte=0,lte=1"`
	// Version increases by one on every applied learning write.
	Version uint64 `json:"version" yaml:"-"`
}

// KeywordAdjustment changes the learned weight of one term on a topic.
type KeywordAdjustment struct {
	Term  string       `json:"term"`
	Class KeywordClass `json:"class"`
	Delta float64      `json:"delta"`
}

// LearningDelta is one idempotent learning write against a single topic.
type LearningDelta struct {
	FeedbackID  string              `json:"feedback_id"`
	Adjustments []KeywordAdjustment `json:"adjustments"`
	MinWeight   float64             `json:"min_weight"`
	MaxWeight   float64             `json:"max_weight"`
}
