// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package config

import (
	"github.com/tomtom215/storyline/internal/ai"
	"github.com/tomtom215/storyline/internal/cluster"
	"github.com/tomtom215/storyline/internal/ingest"
	"github.com/tomtom215/storyline/internal/recommend"
	"github.com/tomtom215/storyline/internal/scoring"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// Resolver returns the taxonomy resolver settings.
func (c *Config) Resolver() taxonomy.ResolverConfig {
	t := c.Taxonomy
	return taxonomy.ResolverConfig{
		TopicSpecificWeight: t.TopicSpecificWeight,
		PersonWeight:        t.PersonWeight,
		GenericWeight:       t.GenericWeight,
		DefaultThreshold:    t.DefaultThreshold,
	}
}

// Learner returns the feedback learning settings.
func (c *Config) Learner() taxonomy.LearnerConfig {
	t := c.Taxonomy
	return taxonomy.LearnerConfig{
		Enabled:          t.LearningEnabled,
		LearningRate:     t.LearningRate,
		MinKeywordWeight: t.MinKeywordWeight,
		MaxKeywordWeight: t.MaxKeywordWeight,
	}
}

// FitScoring returns the evidence scorer settings.
func (c *Config) FitScoring() scoring.EvidenceConfig {
	e := c.Scoring.Evidence
	return scoring.EvidenceConfig{
		Neutral:        e.Neutral,
		ItemWeight:     e.ItemWeight,
		IdentityWeight: e.IdentityWeight,
		HalfLife:       e.HalfLife,
		MaxItemShare:   e.MaxItemShare,
	}
}

// UrgencyScoring returns the urgency scorer settings.
func (c *Config) UrgencyScoring() scoring.UrgencyConfig {
	u := c.Scoring.Urgency
	return scoring.UrgencyConfig{
		BreakingWindow:     u.BreakingWindow,
		CueBoost:           u.CueBoost,
		DefaultLow:         u.DefaultLow,
		Cues:               append([]string(nil), u.Cues...),
		PostTodayThreshold: u.PostTodayThreshold,
		ThisWeekThreshold:  u.ThisWeekThreshold,
	}
}

// DemandScoring returns the demand scorer settings.
func (c *Config) DemandScoring() scoring.DemandConfig {
	d := c.Scoring.Demand
	return scoring.DemandConfig{
		AudienceRequestWeight:    d.AudienceRequestWeight,
		AudienceQuestionWeight:   d.AudienceQuestionWeight,
		AudienceCap:              d.AudienceCap,
		LikesBoostMin:            d.LikesBoostMin,
		LikesBoostMax:            d.LikesBoostMax,
		CompetitorWeight:         d.CompetitorWeight,
		CompetitorBreakoutWeight: d.CompetitorBreakoutWeight,
		CompetitorVolumeBonus:    d.CompetitorVolumeBonus,
		CompetitorVolumeCount:    d.CompetitorVolumeCount,
		SearchWeight:             d.SearchWeight,
		OwnFormatWeight:          d.OwnFormatWeight,
		Neutral:                  d.Neutral,
		MinRecords:               d.MinRecords,
		MinTermOverlap:           d.MinTermOverlap,
		HighThreshold:            d.HighThreshold,
		MediumThreshold:          d.MediumThreshold,
	}
}

// Clustering returns the story clusterer settings.
func (c *Config) Clustering() cluster.Config {
	cl := c.Cluster
	return cluster.Config{
		MinHighValueAnchors:       cl.MinHighValueAnchors,
		BorderlineBelow:           cl.BorderlineBelow,
		BorderlineAbove:           cl.BorderlineAbove,
		MaxAdjudications:          cl.MaxAdjudications,
		Workers:                   cl.AdjudicationWorkers,
		Timeout:                   cl.AdjudicationTimeout,
		MinAdjudicationConfidence: cl.MinAdjudicationConfidence,
		CacheSize:                 cl.CacheSize,
		CacheTTL:                  cl.CacheTTL,
	}
}

// Engine returns the recommendation engine settings.
func (c *Config) Engine() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		Weights: recommend.AxisWeights{
			Fit:     r.FitWeight,
			Urgency: r.UrgencyWeight,
			Demand:  r.DemandWeight,
		},
		DefaultLimit:   r.DefaultLimit,
		MaxLimit:       r.MaxLimit,
		DefaultWindow:  r.DefaultWindow,
		Workers:        r.Workers,
		PitchWorkers:   r.PitchWorkers,
		PitchesEnabled: r.PitchesEnabled && c.AI.Active(),
		ManualFitBonus: r.ManualFitBonus,
		Timeouts: recommend.TimeoutConfig{
			Taxonomy: r.TaxonomyTimeout,
			Evidence: r.EvidenceTimeout,
			Pitch:    r.PitchTimeout,
			Batch:    r.BatchTimeout,
		},
	}
}

// AIClient returns the provider client settings.
func (c *Config) AIClient() ai.Config {
	return ai.Config{
		APIKey:            c.AI.APIKey,
		Model:             c.AI.Model,
		MaxTokens:         c.AI.MaxTokens,
		RequestsPerSecond: c.AI.RequestsPerSecond,
		Burst:             c.AI.Burst,
		BreakerName:       c.AI.BreakerName,
	}
}

// Feeds returns the feed fetcher settings.
func (c *Config) Feeds() ingest.Config {
	return ingest.Config{
		FetchTimeout: c.Ingest.FetchTimeout,
		MaxItems:     c.Ingest.MaxItems,
		UserAgent:    c.Ingest.UserAgent,
	}
}
