// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/ai"
	"github.com/tomtom215/storyline/internal/cluster"
	"github.com/tomtom215/storyline/internal/config"
	"github.com/tomtom215/storyline/internal/recommend"
	"github.com/tomtom215/storyline/internal/scoring"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// pipeline holds the wired recommendation components.
type pipeline struct {
	resolver *taxonomy.Resolver
	learner  *taxonomy.Learner
	engine   *recommend.Engine
}

// initPipeline builds the resolver, scorers, clusterer and engine on top of
// the opened stores. The AI client is only created when AI is active; without
// it borderline pairs fall back to rules and pitches are skipped.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initPipeline(ctx context.Context, cfg *config.Config, st *stores, logger zerolog.Logger) (*pipeline, error) {
	var (
		adjudicator cluster.Adjudicator
		pitcher     recommend.PitchGenerator
	)
	if cfg.AI.Active() {
		client, err := ai.NewClient(cfg.AIClient(), logger)
		if err != nil {
			return nil, fmt.Errorf("create AI client: %w", err)
		}
		adjudicator = ai.NewAdjudicator(client, logger)
		if cfg.Recommend.PitchesEnabled {
			pitcher = ai.NewPitcher(client, logger)
		}
		logger.Info().
			Str("provider", cfg.AI.Provider).
			Str("model", cfg.AI.Model).
			Msg("AI adjudication enabled")
	} else {
		logger.Info().Msg("AI disabled; borderline pairs use rule fallback")
	}

	resolver, err := taxonomy.NewResolver(st.taxonomy, cfg.Resolver(), logger)
	if err != nil {
		return nil, fmt.Errorf("create resolver: %w", err)
	}
	if err := resolver.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load anchor lexicon: %w", err)
	}

	learner, err := taxonomy.NewLearner(st.taxonomy, resolver, cfg.Learner(), logger)
	if err != nil {
		return nil, fmt.Errorf("create learner: %w", err)
	}

	fit, err := scoring.NewEvidenceScorer(st.reader, cfg.FitScoring(), logger)
	if err != nil {
		return nil, fmt.Errorf("create evidence scorer: %w", err)
	}
	urgency, err := scoring.NewUrgencyScorer(cfg.UrgencyScoring())
	if err != nil {
		return nil, fmt.Errorf("create urgency scorer: %w", err)
	}
	demand, err := scoring.NewDemandScorer(st.reader, cfg.DemandScoring(), logger)
	if err != nil {
		return nil, fmt.Errorf("create demand scorer: %w", err)
	}

	clusterer, err := cluster.New(cfg.Clustering(), adjudicator, logger)
	if err != nil {
		return nil, fmt.Errorf("create clusterer: %w", err)
	}

	engine, err := recommend.NewEngine(recommend.Deps{
		Resolver:  resolver,
		Fit:       fit,
		Urgency:   urgency,
		Demand:    demand,
		Clusterer: clusterer,
		Pitcher:   pitcher,
	}, cfg.Engine(), logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	return &pipeline{resolver: resolver, learner: learner, engine: engine}, nil
}
