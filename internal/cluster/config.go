// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package cluster

import (
	"errors"
	"fmt"
	"time"
)

// Config controls pair matching and adjudication.
type Config struct {
	// MinHighValueAnchors is the rule threshold for a merge.
	MinHighValueAnchors int `json:"min_high_value_anchors"`

	// BorderlineBelow and BorderlineAbove define the band
	// [min-below, min+above) of shared counts that are adjudicated.
	BorderlineBelow int `json:"borderline_below"`
	BorderlineAbove int `json:"borderline_above"`

	// MaxAdjudications bounds the borderline pairs resolved per run, in
	// (A, B) order. Cache hits use a slot like fresh calls.
	MaxAdjudications int `json:"max_adjudications_per_run"`

	// Workers bounds concurrent adjudicator calls.
	Workers int `json:"adjudication_workers"`

	// Timeout is the per-call adjudication deadline.
	Timeout time.Duration `json:"adjudication_timeout"`

	// MinAdjudicationConfidence is the minimum verdict confidence in [0,1].
	MinAdjudicationConfidence float64 `json:"min_adjudication_confidence"`

	// CacheSize and CacheTTL size the pair verdict cache. Size 0 disables it.
	CacheSize int           `json:"cache_size"`
	CacheTTL  time.Duration `json:"cache_ttl"`
}

// DefaultConfig returns the standard matching parameters.
func DefaultConfig() Config {
	return Config{
		MinHighValueAnchors:       2,
		BorderlineBelow:           1,
		BorderlineAbove:           0,
		MaxAdjudications:          10,
		Workers:                   4,
		Timeout:                   10 * time.Second,
		MinAdjudicationConfidence: 0.7,
		CacheSize:                 1024,
		CacheTTL:                  6 * time.Hour,
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.MinHighValueAnchors < 1 {
		return fmt.Errorf("min_high_value_anchors must be at least 1, got %d", c.MinHighValueAnchors)
	}
	if c.BorderlineBelow < 0 || c.BorderlineAbove < 0 {
		return errors.New("borderline margins must be non-negative")
	}
	if c.MaxAdjudications < 0 {
		return errors.New("max_adjudications_per_run must be non-negative")
	}
	if c.Workers < 1 {
		return fmt.Errorf("adjudication_workers must be at least 1, got %d", c.Workers)
	}
	if c.Timeout <= 0 {
		return errors.New("adjudication_timeout must be positive")
	}
	if c.MinAdjudicationConfidence < 0 || c.MinAdjudicationConfidence > 1 {
		return fmt.Errorf("min_adjudication_confidence must be in [0,1], got %.2f", c.MinAdjudicationConfidence)
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size must be non-negative")
	}
	return nil
}

// borderline reports whether a shared high-value count is adjudicated. A
// pair with no shared high-value anchor is never borderline.
func (c Config) borderline(shared int) bool {
	if shared < 1 {
		return false
	}
	return shared >= c.MinHighValueAnchors-c.BorderlineBelow &&
		shared < c.MinHighValueAnchors+c.BorderlineAbove
}
