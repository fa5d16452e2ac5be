// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package scoring

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
)

func newFitScorer(t *testing.T, store EvidenceStore, cfg EvidenceConfig) *EvidenceScorer {
	t.Helper()
	s, err := NewEvidenceScorer(store, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEvidenceScorer() error = %v", err)
	}
	return s.WithClock(fixedClock)
}

func TestScoreFit(t *testing.T) {
	t.Parallel()

	store := &mockEvidenceStore{records: map[string][]models.EvidenceRecord{
		"hit": {
			{ID: "v1", TopicID: "hit", Kind: models.EvidenceOwnPerformance, Title: "Greenland deal", Views: 30000, BaselineViews: 10000, ObservedAt: testNow},
		},
		"flop": {
			{ID: "v2", TopicID: "flop", Kind: models.EvidenceOwnPerformance, Title: "Crypto basics", Views: 0, BaselineViews: 10000, ObservedAt: testNow},
		},
		"identity-old": {
			{ID: "i1", TopicID: "identity-old", Kind: models.EvidenceIdentity, Title: "core pillar", ObservedAt: daysAgo(90)},
		},
		"demand-only": {
			{ID: "c1", TopicID: "demand-only", Kind: models.EvidenceCompetitor, Title: "rival video"},
		},
	}}

	tests := []struct {
		name       string
		topic      string
		wantScore  float64
		wantStatus models.FitStatus
		wantItems  int
	}{
		{"no topic", "", 0, models.FitUnscored, 0},
		{"no evidence", "unknown", 35, models.FitNoEvidence, 0},
		{"only demand records", "demand-only", 35, models.FitNoEvidence, 0},
		{"strong performer", "hit", 60, models.FitScored, 1},
		{"historical failure", "flop", 22.5, models.FitScored, 1},
		{"identity at one half-life", "identity-old", 40, models.FitScored, 1},
	}

	s := newFitScorer(t, store, DefaultEvidenceConfig())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fit, err := s.ScoreFit(context.Background(), tt.topic, EvidenceContext{})
			if err != nil {
				t.Fatalf("ScoreFit() error = %v", err)
			}
			if fit.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", fit.Score, tt.wantScore)
			}
			if fit.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", fit.Status, tt.wantStatus)
			}
			if len(fit.Rationale) != tt.wantItems {
				t.Errorf("len(Rationale) = %d, want %d", len(fit.Rationale), tt.wantItems)
			}
		})
	}
}

func TestScoreFitCapsSingleItem(t *testing.T) {
	t.Parallel()

	store := &mockEvidenceStore{records: map[string][]models.EvidenceRecord{
		"viral": {
			{ID: "v", Kind: models.EvidenceOwnPerformance, Views: 5_000_000, BaselineViews: 10_000, ObservedAt: testNow},
		},
	}}
	cfg := DefaultEvidenceConfig()
	cfg.ItemWeight = 400

	fit, err := newFitScorer(t, store, cfg).ScoreFit(context.Background(), "viral", EvidenceContext{})
	if err != nil {
		t.Fatalf("ScoreFit() error = %v", err)
	}
	if fit.Rationale[0].Points != 25 {
		t.Errorf("item points = %v, want capped at 25", fit.Rationale[0].Points)
	}
	if fit.Score != 60 {
		t.Errorf("Score = %v, want 60", fit.Score)
	}
}

func TestScoreFitStoreFailure(t *testing.T) {
	t.Parallel()

	s := newFitScorer(t, &mockEvidenceStore{err: errStoreDown}, DefaultEvidenceConfig())

	fit, err := s.ScoreFit(context.Background(), "any", EvidenceContext{})
	if !failure.Is(err, failure.KindDependencyUnavailable) {
		t.Fatalf("err = %v, want dependency_unavailable", err)
	}
	if fit.Score != 0 || fit.Status != models.FitUnscored {
		t.Errorf("fit = %+v, want unscored 0", fit)
	}
	if len(fit.Rationale) != 1 || fit.Error == "" {
		t.Errorf("failure should be carried in rationale and error: %+v", fit)
	}
}

func TestScoreFitDeterministic(t *testing.T) {
	t.Parallel()

	store := &mockEvidenceStore{records: map[string][]models.EvidenceRecord{
		"t": {
			{ID: "b", Kind: models.EvidenceOwnPerformance, Views: 15000, BaselineViews: 10000, ObservedAt: daysAgo(10)},
			{ID: "a", Kind: models.EvidenceIdentity, Title: "pillar", ObservedAt: daysAgo(400)},
			{ID: "c", Kind: models.EvidenceOwnPerformance, Views: 5000, BaselineViews: 10000, ObservedAt: daysAgo(30)},
		},
	}}
	s := newFitScorer(t, store, DefaultEvidenceConfig())

	first, _ := s.ScoreFit(context.Background(), "t", EvidenceContext{})
	for i := 0; i < 10; i++ {
		next, _ := s.ScoreFit(context.Background(), "t", EvidenceContext{})
		if next.Score != first.Score || len(next.Rationale) != len(first.Rationale) {
			t.Fatalf("run %d differs: %+v vs %+v", i, next, first)
		}
		for j := range next.Rationale {
			if next.Rationale[j] != first.Rationale[j] {
				t.Fatalf("run %d rationale[%d] = %+v, want %+v", i, j, next.Rationale[j], first.Rationale[j])
			}
		}
	}
}

func TestEvidenceConfigValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultEvidenceConfig()
	cfg.MaxItemShare = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero item share should be rejected")
	}

	cfg = DefaultEvidenceConfig()
	cfg.HalfLife = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero half life should be rejected")
	}
}
