// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package scoring

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/storyline/internal/anchor"
	"github.com/tomtom215/storyline/internal/models"
)

// Urgency reasons.
const (
	ReasonNoTimestamp = "no-timestamp"
	ReasonBreaking    = "breaking"
	ReasonDecaying    = "decaying"
	ReasonStale       = "stale"
)

// UrgencyConfig tunes the urgency curve.
type UrgencyConfig struct {
	// BreakingWindow is the age up to which urgency stays at 100.
	BreakingWindow time.Duration
	// CueBoost is added when the text carries a time-sensitivity cue.
	CueBoost float64
	// DefaultLow is the fixed score of an untimestamped signal.
	DefaultLow float64
	// Cues are time-sensitivity phrases, matched on word boundaries.
	Cues []string

	PostTodayThreshold float64
	ThisWeekThreshold  float64
}

// DefaultUrgencyConfig returns the standard urgency curve.
func DefaultUrgencyConfig() UrgencyConfig {
	return UrgencyConfig{
		BreakingWindow:     6 * time.Hour,
		CueBoost:           10,
		DefaultLow:         20,
		Cues:               []string{"breaking", "live", "today", "deadline", "just in", "عاجل", "الآن", "اليوم"},
		PostTodayThreshold: 70,
		ThisWeekThreshold:  30,
	}
}

// Validate checks parameter ranges.
func (c UrgencyConfig) Validate() error {
	if c.BreakingWindow < 0 {
		return errors.New("breaking window must be non-negative")
	}
	if c.DefaultLow < 0 || c.DefaultLow > 100 {
		return fmt.Errorf("default low must be in [0,100], got %.1f", c.DefaultLow)
	}
	if c.CueBoost < 0 {
		return errors.New("cue boost must be non-negative")
	}
	if c.ThisWeekThreshold > c.PostTodayThreshold {
		return errors.New("this_week threshold must not exceed post_today threshold")
	}
	return nil
}

// UrgencyScorer computes the time-sensitivity axis. It holds no mutable
// state and is safe for concurrent use.
type UrgencyScorer struct {
	cfg   UrgencyConfig
	cues  *anchor.Extractor
	clock Clock
}

// NewUrgencyScorer creates an urgency scorer.
func NewUrgencyScorer(cfg UrgencyConfig) (*UrgencyScorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid urgency config: %w", err)
	}
	terms := make([]anchor.Term, 0, len(cfg.Cues))
	for _, c := range cfg.Cues {
		terms = append(terms, anchor.Term{Text: c, Class: models.AnchorMechanism})
	}
	return &UrgencyScorer{
		cfg:   cfg,
		cues:  anchor.NewWithTerms(terms),
		clock: time.Now,
	}, nil
}

// WithClock replaces the scorer clock.
func (s *UrgencyScorer) WithClock(c Clock) *UrgencyScorer {
	s.clock = c
	return s
}

// ScoreUrgency scores sig against window using the scorer clock.
func (s *UrgencyScorer) ScoreUrgency(sig *models.Signal, window time.Duration) models.UrgencyScore {
	return s.ScoreUrgencyAt(sig, window, s.clock())
}

// ScoreUrgencyAt scores sig against window as of now.
func (s *UrgencyScorer) ScoreUrgencyAt(sig *models.Signal, window time.Duration, now time.Time) models.UrgencyScore {
	if !sig.HasTimestamp() {
		return models.UrgencyScore{
			Score:  s.cfg.DefaultLow,
			Tier:   s.tier(s.cfg.DefaultLow),
			Reason: ReasonNoTimestamp,
		}
	}

	age := now.Sub(*sig.PublishedAt)
	if age < 0 {
		age = 0
	}

	var (
		score  float64
		reason string
	)
	switch {
	case age <= s.cfg.BreakingWindow:
		score, reason = 100, ReasonBreaking
	case age >= window:
		score, reason = 0, ReasonStale
	default:
		span := window - s.cfg.BreakingWindow
		score = 100 * float64(window-age) / float64(span)
		reason = ReasonDecaying
	}

	// Cues never revive a stale story.
	if score > 0 {
		if cues := s.cues.Extract(sig.Text); len(cues) > 0 {
			score = clamp(score+s.cfg.CueBoost, 0, 100)
			names := make([]string, len(cues))
			for i, c := range cues {
				names[i] = c.Term
			}
			reason += "+cue:" + strings.Join(names, ",")
		}
	}

	score = round2(score)
	return models.UrgencyScore{Score: score, Tier: s.tier(score), Reason: reason}
}

func (s *UrgencyScorer) tier(score float64) models.UrgencyTier {
	switch {
	case score >= s.cfg.PostTodayThreshold:
		return models.TierPostToday
	case score >= s.cfg.ThisWeekThreshold:
		return models.TierThisWeek
	default:
		return models.TierBacklog
	}
}
