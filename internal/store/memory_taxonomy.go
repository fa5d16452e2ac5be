// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// MemoryTaxonomyStore keeps the taxonomy in process memory.
type MemoryTaxonomyStore struct {
	mu      sync.RWMutex
	entries map[string]models.TaxonomyEntry
	applied map[string]map[string]struct{}
}

var (
	_ taxonomy.Store   = (*MemoryTaxonomyStore)(nil)
	_ taxonomy.Catalog = (*MemoryTaxonomyStore)(nil)
)

// NewMemoryTaxonomyStore creates a store holding entries.
func NewMemoryTaxonomyStore(entries ...models.TaxonomyEntry) *MemoryTaxonomyStore {
	s := &MemoryTaxonomyStore{
		entries: make(map[string]models.TaxonomyEntry, len(entries)),
		applied: make(map[string]map[string]struct{}),
	}
	for _, e := range entries {
		s.entries[e.ID] = copyEntry(e)
	}
	return s
}

// Put inserts or replaces an entry.
func (s *MemoryTaxonomyStore) Put(_ context.Context, entry models.TaxonomyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = copyEntry(entry)
	return nil
}

// Lookup returns the entry for topicID.
func (s *MemoryTaxonomyStore) Lookup(ctx context.Context, topicID string) (models.TaxonomyEntry, error) {
	start := time.Now()
	entry, err := s.lookup(ctx, topicID)
	metrics.RecordStoreCall("taxonomy_memory", "lookup", time.Since(start), ignoreNotFound(err))
	return entry, err
}

func (s *MemoryTaxonomyStore) lookup(ctx context.Context, topicID string) (models.TaxonomyEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.TaxonomyEntry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[topicID]
	if !ok {
		return models.TaxonomyEntry{}, ErrTopicNotFound
	}
	return copyEntry(e), nil
}

// FindCandidates returns entries with at least one keyword among terms.
func (s *MemoryTaxonomyStore) FindCandidates(ctx context.Context, terms []string) ([]models.TaxonomyEntry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreCall("taxonomy_memory", "find_candidates", time.Since(start), ctx.Err()) }()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.TaxonomyEntry
	for _, e := range s.entries {
		for _, t := range keywordTerms(&e) {
			if _, ok := want[t]; ok {
				out = append(out, copyEntry(e))
				break
			}
		}
	}
	sortEntries(out)
	return out, nil
}

// All returns every entry ordered by id.
func (s *MemoryTaxonomyStore) All(ctx context.Context) ([]models.TaxonomyEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TaxonomyEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, copyEntry(e))
	}
	sortEntries(out)
	return out, nil
}

// RecordLearningSignal applies delta under the store lock.
func (s *MemoryTaxonomyStore) RecordLearningSignal(ctx context.Context, topicID string, delta models.LearningDelta) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, done := s.applied[topicID][delta.FeedbackID]; done {
		return false, nil
	}
	entry, ok := s.entries[topicID]
	if !ok {
		return false, ErrTopicNotFound
	}

	entry = copyEntry(entry)
	applyDelta(&entry, &delta)
	s.entries[topicID] = entry

	if s.applied[topicID] == nil {
		s.applied[topicID] = make(map[string]struct{})
	}
	s.applied[topicID][delta.FeedbackID] = struct{}{}
	return true, nil
}
