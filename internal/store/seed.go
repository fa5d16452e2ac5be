// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/validation"
)

// Seed is the content of a seed file.
//
//	topics:
//	  - id: us-politics
//	    name: US Politics
//	    threshold: 0.35
//	    keywords:
//	      - {term: election, class: topic-specific, weight: 1}
//	evidence:
//	  - id: v-001
//	    topic_id: us-politics
//	    kind: own_performance
//	    views: 120000
//	    baseline_views: 50000
//	    observed_at: 2026-01-12T00:00:00Z
type Seed struct {
	Topics   []models.TaxonomyEntry  `yaml:"topics"`
	Evidence []models.EvidenceRecord `yaml:"evidence"`
}

// TaxonomyWriter accepts seeded taxonomy entries.
type TaxonomyWriter interface {
	Lookup(ctx context.Context, topicID string) (models.TaxonomyEntry, error)
	Put(ctx context.Context, entry models.TaxonomyEntry) error
}

// EvidenceWriter accepts seeded evidence records.
type EvidenceWriter interface {
	Insert(ctx context.Context, records ...models.EvidenceRecord) error
}

// LoadSeedFile reads and validates a seed file.
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks every entry and record and rejects duplicate ids.
func (s *Seed) Validate() error {
	topics := make(map[string]struct{}, len(s.Topics))
	for i := range s.Topics {
		t := &s.Topics[i]
		if verr := validation.ValidateStruct(t); verr != nil {
			return fmt.Errorf("topic %d (%s): %w", i, t.ID, verr)
		}
		if _, dup := topics[t.ID]; dup {
			return fmt.Errorf("duplicate topic id %q", t.ID)
		}
		topics[t.ID] = struct{}{}
	}

	records := make(map[string]struct{}, len(s.Evidence))
	for i := range s.Evidence {
		r := &s.Evidence[i]
		if verr := validation.ValidateStruct(r); verr != nil {
			return fmt.Errorf("evidence %d (%s): %w", i, r.ID, verr)
		}
		if _, dup := records[r.ID]; dup {
			return fmt.Errorf("duplicate evidence id %q", r.ID)
		}
		records[r.ID] = struct{}{}
	}
	return nil
}

// SeedResult counts what Apply wrote.
type SeedResult struct {
	TopicsAdded   int
	TopicsKept    int
	EvidenceAdded int
}

// Apply writes the seed. Topics that already exist are kept so learned
// weights survive restarts. Either writer may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *Seed) Apply(ctx context.Context, tw TaxonomyWriter, ew EvidenceWriter, logger zerolog.Logger) (SeedResult, error) {
	var res SeedResult

	if tw != nil {
		for i := range s.Topics {
			_, err := tw.Lookup(ctx, s.Topics[i].ID)
			if err == nil {
				res.TopicsKept++
				continue
			}
			if !errors.Is(err, ErrTopicNotFound) {
				return res, fmt.Errorf("lookup topic %s: %w", s.Topics[i].ID, err)
			}
			if err := tw.Put(ctx, s.Topics[i]); err != nil {
				return res, fmt.Errorf("seed topic %s: %w", s.Topics[i].ID, err)
			}
			res.TopicsAdded++
		}
	}

	if ew != nil && len(s.Evidence) > 0 {
		if err := ew.Insert(ctx, s.Evidence...); err != nil {
			return res, fmt.Errorf("seed evidence: %w", err)
		}
		res.EvidenceAdded = len(s.Evidence)
	}

	logger.Info().
		Int("topics_added", res.TopicsAdded).
		Int("topics_kept", res.TopicsKept).
		Int("evidence", res.EvidenceAdded).
		Msg("seed applied")
	return res, nil
}
