// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

import (
	"testing"
	"time"
)

func TestVerdictFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		composite float64
		want      Verdict
	}{
		{100, VerdictHighlyRecommended},
		{70, VerdictHighlyRecommended},
		{69.99, VerdictRecommended},
		{50, VerdictRecommended},
		{49.5, VerdictConsider},
		{30, VerdictConsider},
		{29.9, VerdictSkip},
		{0, VerdictSkip},
	}

	for _, tt := range tests {
		if got := VerdictFor(tt.composite); got != tt.want {
			t.Errorf("VerdictFor(%v) = %q, want %q", tt.composite, got, tt.want)
		}
	}
}

func TestAnchorClassHighValue(t *testing.T) {
	t.Parallel()

	high := []AnchorClass{AnchorPerson, AnchorTopicSpecific, AnchorEvent}
	low := []AnchorClass{AnchorMechanism, AnchorGeneric, AnchorCountry, AnchorClass("unknown")}

	for _, c := range high {
		if !c.HighValue() {
			t.Errorf("%q should be high-value", c)
		}
	}
	for _, c := range low {
		if c.HighValue() {
			t.Errorf("%q should not be high-value", c)
		}
	}
}

func TestSignalTermSets(t *testing.T) {
	t.Parallel()

	s := Signal{
		Anchors: []Anchor{
			{Term: "china", Class: AnchorCountry},
			{Term: "markets", Class: AnchorMechanism},
			{Term: "tariffs", Class: AnchorEvent},
			{Term: "trump", Class: AnchorPerson},
		},
	}

	terms := s.Terms()
	if len(terms) != 3 {
		t.Fatalf("Terms() = %v, want 3 non-mechanism terms", terms)
	}
	for _, term := range terms {
		if term == "markets" {
			t.Error("Terms() must exclude mechanism anchors")
		}
	}

	hv := s.HighValueTerms()
	if len(hv) != 2 {
		t.Errorf("HighValueTerms() = %v, want trump and tariffs", hv)
	}
	if _, ok := hv["china"]; ok {
		t.Error("country anchors are not high-value")
	}

	countries := s.TermsOfClass(AnchorCountry)
	if _, ok := countries["china"]; !ok || len(countries) != 1 {
		t.Errorf("TermsOfClass(country) = %v", countries)
	}
}

func TestSignalHasTimestamp(t *testing.T) {
	t.Parallel()

	now := time.Now()
	var zero time.Time

	if (&Signal{}).HasTimestamp() {
		t.Error("nil PublishedAt should not count as a timestamp")
	}
	if (&Signal{PublishedAt: &zero}).HasTimestamp() {
		t.Error("zero PublishedAt should not count as a timestamp")
	}
	if !(&Signal{PublishedAt: &now}).HasTimestamp() {
		t.Error("set PublishedAt should count as a timestamp")
	}
}

func TestKeywordClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		class KeywordClass
		valid bool
		tier  AnchorClass
	}{
		{KeywordGeneric, true, AnchorGeneric},
		{KeywordPerson, true, AnchorPerson},
		{KeywordTopicSpecific, true, AnchorTopicSpecific},
		{KeywordClass("brand"), false, AnchorGeneric},
	}

	for _, tt := range tests {
		if got := tt.class.Valid(); got != tt.valid {
			t.Errorf("%q.Valid() = %v, want %v", tt.class, got, tt.valid)
		}
		if got := tt.class.AnchorClass(); got != tt.tier {
			t.Errorf("%q.AnchorClass() = %q, want %q", tt.class, got, tt.tier)
		}
	}
}

func TestPerformanceRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rec  EvidenceRecord
		want float64
	}{
		{"double baseline", EvidenceRecord{Views: 2000, BaselineViews: 1000}, 2},
		{"half baseline", EvidenceRecord{Views: 500, BaselineViews: 1000}, 0.5},
		{"no baseline", EvidenceRecord{Views: 500}, 1},
		{"negative baseline", EvidenceRecord{Views: 500, BaselineViews: -1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.rec.PerformanceRatio(); got != tt.want {
				t.Errorf("PerformanceRatio() = %v, want %v", got, tt.want)
			}
		})
	}
}
