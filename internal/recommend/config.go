// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package recommend

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
)

// AxisWeights defines the relative contribution of each scoring axis.
// Weights are normalized at runtime, so they don't need to sum to 1.0.
type AxisWeights struct {
	Fit     float64 `json:"fit"`
	Urgency float64 `json:"urgency"`
	Demand  float64 `json:"demand"`
}

// Validate rejects negative or non-finite weights.
func (w AxisWeights) Validate() error {
	axes := []struct {
		name  string
		value float64
	}{
		{"fit", w.Fit},
		{"urgency", w.Urgency},
		{"demand", w.Demand},
	}
	for _, a := range axes {
		if a.value < 0 || math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return fmt.Errorf("weight %s must be a non-negative number, got %v", a.name, a.value)
		}
	}
	return nil
}

// Normalized returns the weights scaled to sum to 1. All-zero weights become
// equal weights.
func (w AxisWeights) Normalized() AxisWeights {
	sum := w.Fit + w.Urgency + w.Demand
	if sum <= 0 {
		return AxisWeights{Fit: 1.0 / 3, Urgency: 1.0 / 3, Demand: 1.0 / 3}
	}
	return AxisWeights{Fit: w.Fit / sum, Urgency: w.Urgency / sum, Demand: w.Demand / sum}
}

// TimeoutConfig holds per-call and batch deadlines.
type TimeoutConfig struct {
	Taxonomy time.Duration `json:"taxonomy"`
	Evidence time.Duration `json:"evidence"`
	Pitch    time.Duration `json:"pitch"`
	Batch    time.Duration `json:"batch"`
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights are the default axis weights; a request may override them.
	Weights AxisWeights `json:"weights"`

	// DefaultLimit applies when a request has no limit. Larger limits are
	// capped at MaxLimit.
	DefaultLimit int `json:"default_limit"`
	MaxLimit     int `json:"max_limit"`

	// DefaultWindow is the clustering time window when a request has none.
	DefaultWindow time.Duration `json:"default_window"`

	// Workers bounds concurrent signal scoring.
	Workers int `json:"workers"`

	// PitchWorkers bounds concurrent pitch generation.
	PitchWorkers int `json:"pitch_workers"`

	// PitchesEnabled gates pitch generation regardless of the request.
	PitchesEnabled bool `json:"pitches_enabled"`

	// ManualFitBonus is added to a scored fit for manual trend entries.
	ManualFitBonus float64 `json:"manual_fit_bonus"`

	Timeouts TimeoutConfig `json:"timeouts"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:        AxisWeights{Fit: 0.45, Urgency: 0.30, Demand: 0.25},
		DefaultLimit:   20,
		MaxLimit:       100,
		DefaultWindow:  72 * time.Hour,
		Workers:        8,
		PitchWorkers:   2,
		PitchesEnabled: true,
		ManualFitBonus: 15,
		Timeouts: TimeoutConfig{
			Taxonomy: 2 * time.Second,
			Evidence: 3 * time.Second,
			Pitch:    15 * time.Second,
			Batch:    60 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be at least 1, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit (%d) must be >= default_limit (%d)", c.MaxLimit, c.DefaultLimit)
	}
	if c.DefaultWindow <= 0 {
		return errors.New("default_window must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.PitchWorkers < 1 {
		return fmt.Errorf("pitch_workers must be at least 1, got %d", c.PitchWorkers)
	}
	if c.ManualFitBonus < 0 || c.ManualFitBonus > 100 {
		return fmt.Errorf("manual_fit_bonus must be in [0,100], got %.1f", c.ManualFitBonus)
	}
	t := c.Timeouts
	if t.Taxonomy <= 0 || t.Evidence <= 0 || t.Pitch <= 0 || t.Batch <= 0 {
		return errors.New("all timeouts must be positive")
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// MarshalJSON renders durations as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		DefaultWindow string `json:"default_window"`
		Timeouts      struct {
			Taxonomy string `json:"taxonomy"`
			Evidence string `json:"evidence"`
			Pitch    string `json:"pitch"`
			Batch    string `json:"batch"`
		} `json:"timeouts"`
	}{
		Alias:         (*Alias)(c),
		DefaultWindow: c.DefaultWindow.String(),
		Timeouts: struct {
			Taxonomy string `json:"taxonomy"`
			Evidence string `json:"evidence"`
			Pitch    string `json:"pitch"`
			Batch    string `json:"batch"`
		}{
			Taxonomy: c.Timeouts.Taxonomy.String(),
			Evidence: c.Timeouts.Evidence.String(),
			Pitch:    c.Timeouts.Pitch.String(),
			Batch:    c.Timeouts.Batch.String(),
		},
	})
}
