// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
)

// EvidenceConfig tunes the identity-fit aggregate.
type EvidenceConfig struct {
	// Neutral is the score of a plausible topic with no history.
	Neutral float64

	// ItemWeight scales one own_performance record at 3x baseline.
	ItemWeight float64

	// IdentityWeight is the contribution of one fresh identity record.
	IdentityWeight float64

	// HalfLife is the age at which a record counts half.
	HalfLife time.Duration

	// MaxItemShare caps any single record at this fraction of 100 points.
	MaxItemShare float64
}

// DefaultEvidenceConfig returns the standard fit parameters.
func DefaultEvidenceConfig() EvidenceConfig {
	return EvidenceConfig{
		Neutral:        35,
		ItemWeight:     25,
		IdentityWeight: 10,
		HalfLife:       90 * 24 * time.Hour,
		MaxItemShare:   0.25,
	}
}

// Validate checks parameter ranges.
func (c EvidenceConfig) Validate() error {
	if c.Neutral < 0 || c.Neutral > 100 {
		return fmt.Errorf("neutral must be in [0,100], got %.1f", c.Neutral)
	}
	if c.ItemWeight < 0 || c.IdentityWeight < 0 {
		return errors.New("item weights must be non-negative")
	}
	if c.HalfLife <= 0 {
		return errors.New("half life must be positive")
	}
	if c.MaxItemShare <= 0 || c.MaxItemShare > 1 {
		return fmt.Errorf("max item share must be in (0,1], got %.2f", c.MaxItemShare)
	}
	return nil
}

// EvidenceContext carries per-call inputs to ScoreFit.
type EvidenceContext struct {
	// Now pins the reference time for recency. Zero uses the scorer clock.
	Now time.Time
}

// EvidenceScorer computes the identity-fit axis. It is safe for concurrent use.
type EvidenceScorer struct {
	store  EvidenceStore
	cfg    EvidenceConfig
	clock  Clock
	logger zerolog.Logger
}

// NewEvidenceScorer creates a fit scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvidenceScorer(store EvidenceStore, cfg EvidenceConfig, logger zerolog.Logger) (*EvidenceScorer, error) {
	if store == nil {
		return nil, errors.New("evidence store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evidence config: %w", err)
	}
	return &EvidenceScorer{
		store:  store,
		cfg:    cfg,
		clock:  time.Now,
		logger: logger.With().Str("component", "scoring_fit").Logger(),
	}, nil
}

// WithClock replaces the scorer clock.
func (s *EvidenceScorer) WithClock(c Clock) *EvidenceScorer {
	s.clock = c
	return s
}

// ScoreFit scores topicID. The returned FitScore is always usable; a non-nil
// error reports a store failure that was absorbed into an unscored result.
func (s *EvidenceScorer) ScoreFit(ctx context.Context, topicID string, ec EvidenceContext) (models.FitScore, error) {
	if topicID == "" {
		return models.FitScore{Status: models.FitUnscored, Rationale: []models.EvidenceItem{}}, nil
	}

	records, err := s.store.GetEvidence(ctx, topicID)
	if err != nil {
		err = failure.FromContext("scoring.fit", err)
		s.logger.Debug().Err(err).Str("topic_id", topicID).Msg("evidence lookup failed")
		return models.FitScore{
			Status: models.FitUnscored,
			Rationale: []models.EvidenceItem{{
				Detail: "evidence lookup failed: " + string(failure.KindOf(err)),
			}},
			Error: err.Error(),
		}, err
	}

	now := ec.Now
	if now.IsZero() {
		now = s.clock()
	}

	limit := s.cfg.MaxItemShare * 100
	var (
		total float64
		items []models.EvidenceItem
	)
	for i := range records {
		rec := &records[i]
		var pts float64
		var detail string

		switch rec.Kind {
		case models.EvidenceOwnPerformance:
			ratio := rec.PerformanceRatio()
			pts = s.cfg.ItemWeight * clamp(ratio-1, -1, 2) / 2 * s.recency(rec.ObservedAt, now)
			detail = fmt.Sprintf("%q at %.2fx baseline", rec.Title, ratio)
		case models.EvidenceIdentity:
			pts = s.cfg.IdentityWeight * s.recency(rec.ObservedAt, now)
			detail = "channel identity: " + rec.Title
		default:
			continue
		}

		pts = round2(clamp(pts, -limit, limit))
		total += pts
		items = append(items, models.EvidenceItem{
			RecordID: rec.ID,
			Kind:     rec.Kind,
			Detail:   detail,
			Points:   pts,
		})
	}

	if len(items) == 0 {
		return models.FitScore{
			Score:     s.cfg.Neutral,
			Status:    models.FitNoEvidence,
			Rationale: []models.EvidenceItem{},
		}, nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		ai, aj := math.Abs(items[i].Points), math.Abs(items[j].Points)
		if ai != aj {
			return ai > aj
		}
		return items[i].RecordID < items[j].RecordID
	})

	return models.FitScore{
		Score:     round2(clamp(s.cfg.Neutral+total, 0, 100)),
		Status:    models.FitScored,
		Rationale: items,
	}, nil
}

// recency halves a record's weight every HalfLife. Undated records count as
// one half-life old.
func (s *EvidenceScorer) recency(observed, now time.Time) float64 {
	if observed.IsZero() {
		return 0.5
	}
	age := now.Sub(observed)
	if age < 0 {
		age = 0
	}
	return math.Pow(0.5, float64(age)/float64(s.cfg.HalfLife))
}
