// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package taxonomy

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/tomtom215/storyline/internal/anchor"
	"github.com/tomtom215/storyline/internal/models"
)

// mockStore is an in-memory Store whose learning write is a deliberately
// unsynchronized read-modify-write, so lost updates show up unless callers
// serialize per topic.
type mockStore struct {
	mu       sync.Mutex
	entries  map[string]models.TaxonomyEntry
	applied  map[string]map[string]bool
	findErr  error
	allCalls int
}

func newMockStore(entries ...models.TaxonomyEntry) *mockStore {
	m := &mockStore{
		entries: make(map[string]models.TaxonomyEntry),
		applied: make(map[string]map[string]bool),
	}
	for _, e := range entries {
		m.entries[e.ID] = e
	}
	return m
}

func (m *mockStore) Lookup(_ context.Context, topicID string) (models.TaxonomyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[topicID]
	if !ok {
		return models.TaxonomyEntry{}, ErrTopicNotFound
	}
	return copyEntry(e), nil
}

func (m *mockStore) FindCandidates(ctx context.Context, terms []string) ([]models.TaxonomyEntry, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	want := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		want[t] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.TaxonomyEntry
	for _, e := range m.entries {
		for _, kw := range e.Keywords {
			if _, ok := want[anchor.Normalize(kw.Term)]; ok {
				out = append(out, copyEntry(e))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) All(_ context.Context) ([]models.TaxonomyEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allCalls++
	out := make([]models.TaxonomyEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, copyEntry(e))
	}
	return out, nil
}

func (m *mockStore) RecordLearningSignal(_ context.Context, topicID string, delta models.LearningDelta) (bool, error) {
	m.mu.Lock()
	if m.applied[topicID][delta.FeedbackID] {
		m.mu.Unlock()
		return false, nil
	}
	entry, ok := m.entries[topicID]
	m.mu.Unlock()
	if !ok {
		return false, ErrTopicNotFound
	}
	entry = copyEntry(entry)

	runtime.Gosched()

	for _, adj := range delta.Adjustments {
		found := false
		for i := range entry.Keywords {
			if anchor.Normalize(entry.Keywords[i].Term) == adj.Term {
				entry.Keywords[i].Weight = clampWeight(entry.Keywords[i].Weight+adj.Delta, delta)
				found = true
				break
			}
		}
		if !found && adj.Delta > 0 {
			entry.Keywords = append(entry.Keywords, models.Keyword{
				Term: adj.Term, Class: adj.Class, Weight: clampWeight(1+adj.Delta, delta),
			})
		}
	}
	entry.Version++

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[topicID] = entry
	if m.applied[topicID] == nil {
		m.applied[topicID] = make(map[string]bool)
	}
	m.applied[topicID][delta.FeedbackID] = true
	return true, nil
}

func (m *mockStore) weight(topicID, term string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kw := range m.entries[topicID].Keywords {
		if kw.Term == term {
			return kw.Weight
		}
	}
	return 0
}

func (m *mockStore) keyword(topicID, term string) (models.Keyword, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kw := range m.entries[topicID].Keywords {
		if kw.Term == term {
			return kw, true
		}
	}
	return models.Keyword{}, false
}

func clampWeight(w float64, d models.LearningDelta) float64 {
	if w < d.MinWeight {
		return d.MinWeight
	}
	if w > d.MaxWeight {
		return d.MaxWeight
	}
	return w
}

func copyEntry(e models.TaxonomyEntry) models.TaxonomyEntry {
	e.Keywords = append([]models.Keyword(nil), e.Keywords...)
	return e
}

func testEntries() []models.TaxonomyEntry {
	return []models.TaxonomyEntry{
		{
			ID:   "us-politics",
			Name: "US Politics",
			Keywords: []models.Keyword{
				{Term: "election", Class: models.KeywordTopicSpecific, Weight: 1},
				{Term: "incumbent", Class: models.KeywordTopicSpecific, Weight: 1},
				{Term: "trump", Class: models.KeywordPerson, Weight: 1},
			},
		},
		{
			ID:   "trade-wars",
			Name: "Trade Wars",
			Keywords: []models.Keyword{
				{Term: "tariffs", Class: models.KeywordTopicSpecific, Weight: 1},
				{Term: "china", Class: models.KeywordGeneric, Weight: 1},
			},
		},
		{
			ID:   "asia-economy",
			Name: "Asia Economy",
			Keywords: []models.Keyword{
				{Term: "china", Class: models.KeywordGeneric, Weight: 1},
				{Term: "japan", Class: models.KeywordGeneric, Weight: 1},
			},
		},
	}
}
