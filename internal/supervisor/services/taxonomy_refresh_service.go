// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/metrics"
)

// refreshTimeout bounds a single reload.
const refreshTimeout = 30 * time.Second

// Refresher reloads derived taxonomy state from the store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// TaxonomyRefreshService reloads the anchor lexicon on a fixed interval and
// whenever Trigger is called. Triggers that arrive while a reload is pending
// are coalesced into it.
type TaxonomyRefreshService struct {
	refresher Refresher
	interval  time.Duration
	trigger   chan struct{}
	logger    zerolog.Logger
}

// NewTaxonomyRefreshService creates the service. A non-positive interval
// disables the periodic reload; triggers still work.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTaxonomyRefreshService(refresher Refresher, interval time.Duration, logger zerolog.Logger) *TaxonomyRefreshService {
	return &TaxonomyRefreshService{
		refresher: refresher,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
		logger:    logger.With().Str("service", "taxonomy-refresh").Logger(),
	}
}

// Trigger requests a reload without blocking. Safe to call from any
// goroutine, including before Serve starts.
func (s *TaxonomyRefreshService) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Serve implements suture.Service. Reload failures are logged and counted;
// they never stop the service since the previous lexicon stays installed.
func (s *TaxonomyRefreshService) Serve(ctx context.Context) error {
	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	s.logger.Info().Dur("interval", s.interval).Msg("taxonomy refresh service started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			s.refresh(ctx, "interval")
		case <-s.trigger:
			s.refresh(ctx, "trigger")
		}
	}
}

func (s *TaxonomyRefreshService) refresh(ctx context.Context, reason string) {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	start := time.Now()
	if err := s.refresher.Refresh(ctx); err != nil {
		metrics.TaxonomyRefreshes.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Str("reason", reason).Msg("taxonomy refresh failed, keeping previous lexicon")
		return
	}
	metrics.TaxonomyRefreshes.WithLabelValues("success").Inc()
	s.logger.Debug().
		Str("reason", reason).
		Dur("duration", time.Since(start)).
		Msg("taxonomy refreshed")
}

// String identifies the service in supervisor events.
func (s *TaxonomyRefreshService) String() string {
	return "taxonomy-refresh"
}
