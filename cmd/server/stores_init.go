// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/api"
	"github.com/tomtom215/storyline/internal/config"
	"github.com/tomtom215/storyline/internal/scoring"
	"github.com/tomtom215/storyline/internal/store"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// taxonomyBackend is what the resolver, the learner and the seeder need.
type taxonomyBackend interface {
	taxonomy.Store
	taxonomy.Catalog
	store.TaxonomyWriter
}

// evidenceBackend is what the pipeline and the seeder need from evidence.
type evidenceBackend interface {
	scoring.EvidenceStore
	store.EvidenceWriter
}

// stores bundles the opened backends and their shutdown hooks.
type stores struct {
	taxonomy taxonomyBackend
	evidence evidenceBackend

	// reader is what the scorers read through; it may wrap evidence in a cache.
	reader scoring.EvidenceStore
	cache  *store.CachedEvidenceStore

	checks  map[string]api.HealthCheck
	closers []func() error
}

// openStores opens the configured backends. On error every backend opened so
// far is closed.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func openStores(ctx context.Context, cfg *config.StoreConfig, logger zerolog.Logger) (*stores, error) {
	s := &stores{checks: make(map[string]api.HealthCheck)}

	if cfg.InMemory {
		s.taxonomy = store.NewMemoryTaxonomyStore()
		s.evidence = store.NewMemoryEvidenceStore()
		logger.Warn().Msg("Using in-memory stores; taxonomy learning and evidence are lost on restart")
	} else {
		tax, err := store.OpenBadgerTaxonomyStore(cfg.TaxonomyPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open taxonomy store: %w", err)
		}
		s.taxonomy = tax
		s.checks["taxonomy_store"] = tax.Ping
		s.closers = append(s.closers, tax.Close)

		ev, err := store.OpenDuckDBEvidenceStore(ctx, cfg.EvidencePath, logger)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("open evidence store: %w", err)
		}
		s.evidence = ev
		s.checks["evidence_store"] = ev.Ping
		s.closers = append(s.closers, ev.Close)
	}

	s.reader = s.evidence
	if cfg.EvidenceCacheSize > 0 {
		cache, err := store.NewCachedEvidenceStore(s.evidence, cfg.EvidenceCacheSize, cfg.EvidenceCacheTTL)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("create evidence cache: %w", err)
		}
		s.cache = cache
		s.reader = cache
	}

	return s, nil
}

// seed applies every configured seed file in order. Existing topics are kept
// so learned weights survive a restart.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *stores) seed(ctx context.Context, files []string, logger zerolog.Logger) error {
	for _, path := range files {
		sd, err := store.LoadSeedFile(path)
		if err != nil {
			return fmt.Errorf("load seed %s: %w", path, err)
		}
		res, err := sd.Apply(ctx, s.taxonomy, s.evidence, logger)
		if err != nil {
			return fmt.Errorf("apply seed %s: %w", path, err)
		}
		logger.Info().
			Str("path", path).
			Int("topics_added", res.TopicsAdded).
			Int("topics_kept", res.TopicsKept).
			Int("evidence_added", res.EvidenceAdded).
			Msg("Seed applied")
	}

	// Seeded evidence may shadow cached empty lookups.
	if s.cache != nil {
		s.cache.Purge()
	}
	return nil
}

// Close closes the backends in reverse open order.
func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
