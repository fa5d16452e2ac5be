// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/anchor"
	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
)

// Breakdown keys of a DemandScore.
const (
	DemandAudience   = "audience"
	DemandCompetitor = "competitor"
	DemandSearch     = "search"
	DemandOwnFormat  = "own_format"
)

// DemandConfig holds demand weights and caps.
type DemandConfig struct {
	AudienceRequestWeight  float64
	AudienceQuestionWeight float64
	AudienceCap            float64
	// LikesBoostMin is the like count above which an audience record is
	// boosted by min(LikesBoostMax, likes).
	LikesBoostMin int64
	LikesBoostMax float64

	CompetitorWeight         float64
	CompetitorBreakoutWeight float64
	// CompetitorVolumeBonus applies once at CompetitorVolumeCount records.
	CompetitorVolumeBonus float64
	CompetitorVolumeCount int

	SearchWeight    float64
	OwnFormatWeight float64

	Neutral        float64
	MinRecords     int
	MinTermOverlap int

	HighThreshold   float64
	MediumThreshold float64
}

// DefaultDemandConfig returns the standard demand weights.
func DefaultDemandConfig() DemandConfig {
	return DemandConfig{
		AudienceRequestWeight:    35,
		AudienceQuestionWeight:   30,
		AudienceCap:              50,
		LikesBoostMin:            5,
		LikesBoostMax:            10,
		CompetitorWeight:         15,
		CompetitorBreakoutWeight: 25,
		CompetitorVolumeBonus:    15,
		CompetitorVolumeCount:    3,
		SearchWeight:             20,
		OwnFormatWeight:          15,
		Neutral:                  40,
		MinRecords:               2,
		MinTermOverlap:           2,
		HighThreshold:            60,
		MediumThreshold:          30,
	}
}

// Validate checks parameter ranges.
func (c DemandConfig) Validate() error {
	if c.Neutral < 0 || c.Neutral > 100 {
		return fmt.Errorf("neutral must be in [0,100], got %.1f", c.Neutral)
	}
	if c.MinRecords < 0 || c.MinTermOverlap < 0 {
		return errors.New("min records and min term overlap must be non-negative")
	}
	if c.MediumThreshold > c.HighThreshold {
		return errors.New("medium threshold must not exceed high threshold")
	}
	return nil
}

// DemandContext carries the signal attributes demand is matched on.
type DemandContext struct {
	// Terms are normalized anchor terms of the signal.
	Terms []string
	// Format restricts own_performance records to the same content format.
	Format string
}

// DemandScorer computes the proven-demand axis. It is safe for concurrent use.
type DemandScorer struct {
	store  EvidenceStore
	cfg    DemandConfig
	logger zerolog.Logger
}

// NewDemandScorer creates a demand scorer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDemandScorer(store EvidenceStore, cfg DemandConfig, logger zerolog.Logger) (*DemandScorer, error) {
	if store == nil {
		return nil, errors.New("evidence store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid demand config: %w", err)
	}
	return &DemandScorer{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "scoring_demand").Logger(),
	}, nil
}

// ScoreDemand scores topicID for a signal. Sparse data, no topic, and store
// failures all return the neutral score with Sparse set; a store failure is
// also returned as a typed error.
func (s *DemandScorer) ScoreDemand(ctx context.Context, topicID string, dc DemandContext) (models.DemandScore, error) {
	if topicID == "" {
		return s.sparse(""), nil
	}

	records, err := s.store.GetEvidence(ctx, topicID)
	if err != nil {
		err = failure.FromContext("scoring.demand", err)
		s.logger.Debug().Err(err).Str("topic_id", topicID).Msg("evidence lookup failed")
		return s.sparse(err.Error()), err
	}

	relevant := s.relevant(records, dc)
	if len(relevant) < s.cfg.MinRecords || len(relevant) == 0 {
		return s.sparse(""), nil
	}

	var (
		audience, competitor, search, own float64
		competitors                       int
		searchCounted                     bool
		items                             []models.EvidenceItem
	)
	for _, rec := range relevant {
		var pts float64
		var detail string

		switch rec.Kind {
		case models.EvidenceAudienceRequest, models.EvidenceAudienceQuestion:
			pts = s.cfg.AudienceQuestionWeight
			if rec.Kind == models.EvidenceAudienceRequest {
				pts = s.cfg.AudienceRequestWeight
			}
			if rec.Likes > s.cfg.LikesBoostMin {
				pts += clamp(float64(rec.Likes), 0, s.cfg.LikesBoostMax)
			}
			audience += pts
			detail = fmt.Sprintf("audience %s (%d likes)", strings.TrimPrefix(string(rec.Kind), "audience_"), rec.Likes)
		case models.EvidenceCompetitor:
			pts = s.cfg.CompetitorWeight
			detail = "competitor coverage: " + rec.Title
			if rec.Breakout {
				pts = s.cfg.CompetitorBreakoutWeight
				detail = "competitor breakout: " + rec.Title
			}
			competitor += pts
			competitors++
		case models.EvidenceSearchInterest:
			if searchCounted {
				continue
			}
			searchCounted = true
			pts = s.cfg.SearchWeight
			search = pts
			detail = "search interest: " + rec.Title
		case models.EvidenceOwnPerformance:
			ratio := rec.PerformanceRatio()
			pts = s.cfg.OwnFormatWeight * clamp(ratio, 0, 2) / 2
			own += pts
			detail = fmt.Sprintf("own %s at %.2fx baseline", rec.Format, ratio)
		}

		items = append(items, models.EvidenceItem{
			RecordID: rec.ID,
			Kind:     rec.Kind,
			Detail:   detail,
			Points:   round2(pts),
		})
	}

	audience = clamp(audience, 0, s.cfg.AudienceCap)
	if s.cfg.CompetitorVolumeCount > 0 && competitors >= s.cfg.CompetitorVolumeCount {
		competitor += s.cfg.CompetitorVolumeBonus
		items = append(items, models.EvidenceItem{
			Kind:   models.EvidenceCompetitor,
			Detail: fmt.Sprintf("%d competitors covering the topic", competitors),
			Points: s.cfg.CompetitorVolumeBonus,
		})
	}

	score := round2(clamp(audience+competitor+search+own, 0, 100))
	return models.DemandScore{
		Score: score,
		Level: s.level(score),
		Breakdown: map[string]float64{
			DemandAudience:   round2(audience),
			DemandCompetitor: round2(competitor),
			DemandSearch:     round2(search),
			DemandOwnFormat:  round2(own),
		},
		Rationale: items,
	}, nil
}

// relevant keeps demand-relevant records that match the signal terms.
func (s *DemandScorer) relevant(records []models.EvidenceRecord, dc DemandContext) []*models.EvidenceRecord {
	format := strings.ToLower(strings.TrimSpace(dc.Format))

	need := s.cfg.MinTermOverlap
	if len(dc.Terms) == 0 {
		need = 0
	}

	out := make([]*models.EvidenceRecord, 0, len(records))
	for i := range records {
		rec := &records[i]
		switch rec.Kind {
		case models.EvidenceCompetitor, models.EvidenceAudienceRequest,
			models.EvidenceAudienceQuestion, models.EvidenceSearchInterest:
		case models.EvidenceOwnPerformance:
			if format == "" || strings.ToLower(rec.Format) != format {
				continue
			}
		default:
			continue
		}

		if rec.Title != "" && need > 0 && termOverlap(rec.Title, dc.Terms) < need {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func (s *DemandScorer) sparse(errMsg string) models.DemandScore {
	return models.DemandScore{
		Score:     s.cfg.Neutral,
		Level:     s.level(s.cfg.Neutral),
		Sparse:    true,
		Rationale: []models.EvidenceItem{},
		Error:     errMsg,
	}
}

func (s *DemandScorer) level(score float64) models.DemandLevel {
	switch {
	case score >= s.cfg.HighThreshold:
		return models.DemandHigh
	case score >= s.cfg.MediumThreshold:
		return models.DemandMedium
	default:
		return models.DemandLow
	}
}

// termOverlap counts how many terms occur in title as whole words.
func termOverlap(title string, terms []string) int {
	padded := " " + strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, anchor.Normalize(title)) + " "

	n := 0
	for _, t := range terms {
		if strings.Contains(padded, " "+t+" ") {
			n++
		}
	}
	return n
}
