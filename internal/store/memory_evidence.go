// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/scoring"
)

// MemoryEvidenceStore keeps evidence records in process memory.
type MemoryEvidenceStore struct {
	mu      sync.RWMutex
	byTopic map[string][]models.EvidenceRecord
}

var _ scoring.EvidenceStore = (*MemoryEvidenceStore)(nil)

// NewMemoryEvidenceStore creates a store holding records.
func NewMemoryEvidenceStore(records ...models.EvidenceRecord) *MemoryEvidenceStore {
	s := &MemoryEvidenceStore{byTopic: make(map[string][]models.EvidenceRecord)}
	_ = s.Insert(context.Background(), records...)
	return s
}

// Insert adds records, replacing any with the same id.
func (s *MemoryEvidenceStore) Insert(_ context.Context, records ...models.EvidenceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		list := s.byTopic[r.TopicID]
		replaced := false
		for i := range list {
			if list[i].ID == r.ID {
				list[i] = r
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, r)
		}
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].ObservedAt.Equal(list[j].ObservedAt) {
				return list[i].ObservedAt.After(list[j].ObservedAt)
			}
			return list[i].ID < list[j].ID
		})
		s.byTopic[r.TopicID] = list
	}
	return nil
}

// GetEvidence returns a copy of the records for topicID, newest first.
func (s *MemoryEvidenceStore) GetEvidence(ctx context.Context, topicID string) ([]models.EvidenceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.EvidenceRecord(nil), s.byTopic[topicID]...), nil
}
