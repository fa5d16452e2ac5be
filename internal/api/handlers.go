// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/storyline/internal/ingest"
	"github.com/tomtom215/storyline/internal/recommend"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// defaultMaxBodyBytes is used when HandlerDeps.MaxBodyBytes is zero.
const defaultMaxBodyBytes int64 = 2 << 20

// Recommender runs the recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// FeedFetcher turns feed URLs into signal inputs.
type FeedFetcher interface {
	FetchAll(ctx context.Context, feedURLs []string) ingest.Batch
}

// FeedbackLearner applies taxonomy feedback.
type FeedbackLearner interface {
	Apply(ctx context.Context, fb taxonomy.Feedback) (taxonomy.LearnResult, error)
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HandlerDeps are the collaborators of a Handler. Feeds, Learner, Checks and
// LexiconVersion are optional.
type HandlerDeps struct {
	Engine         Recommender
	Feeds          FeedFetcher
	Learner        FeedbackLearner
	DefaultFeeds   []string
	Checks         map[string]HealthCheck
	LexiconVersion func() int64
	AIEnabled      bool
	MaxBodyBytes   int64
}

// Handler serves the API endpoints.
type Handler struct {
	engine         Recommender
	feeds          FeedFetcher
	learner        FeedbackLearner
	defaultFeeds   []string
	checks         map[string]HealthCheck
	lexiconVersion func() int64
	aiEnabled      bool
	maxBodyBytes   int64
	startTime      time.Time
}

// NewHandler creates a handler.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Engine == nil {
		return nil, errors.New("recommendation engine is required")
	}
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &Handler{
		engine:         deps.Engine,
		feeds:          deps.Feeds,
		learner:        deps.Learner,
		defaultFeeds:   append([]string(nil), deps.DefaultFeeds...),
		checks:         deps.Checks,
		lexiconVersion: deps.LexiconVersion,
		aiEnabled:      deps.AIEnabled,
		maxBodyBytes:   maxBody,
		startTime:      time.Now(),
	}, nil
}
