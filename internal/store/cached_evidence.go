// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/scoring"
)

// CachedEvidenceStore caches evidence lookups per topic. Errors are not
// cached.
type CachedEvidenceStore struct {
	next  scoring.EvidenceStore
	cache *expirable.LRU[string, []models.EvidenceRecord]
}

var _ scoring.EvidenceStore = (*CachedEvidenceStore)(nil)

// NewCachedEvidenceStore wraps next with an LRU of size entries and the
// given ttl.
func NewCachedEvidenceStore(next scoring.EvidenceStore, size int, ttl time.Duration) (*CachedEvidenceStore, error) {
	if next == nil {
		return nil, errors.New("evidence store is required")
	}
	if size <= 0 {
		return nil, errors.New("cache size must be positive")
	}
	return &CachedEvidenceStore{
		next:  next,
		cache: expirable.NewLRU[string, []models.EvidenceRecord](size, nil, ttl),
	}, nil
}

// GetEvidence serves from cache or loads from the wrapped store.
func (c *CachedEvidenceStore) GetEvidence(ctx context.Context, topicID string) ([]models.EvidenceRecord, error) {
	if records, ok := c.cache.Get(topicID); ok {
		metrics.RecordCacheLookup("evidence", true)
		return append([]models.EvidenceRecord(nil), records...), nil
	}
	metrics.RecordCacheLookup("evidence", false)

	records, err := c.next.GetEvidence(ctx, topicID)
	if err != nil {
		return nil, err
	}
	c.cache.Add(topicID, append([]models.EvidenceRecord(nil), records...))
	return records, nil
}

// Invalidate drops the cached records for topicID.
func (c *CachedEvidenceStore) Invalidate(topicID string) {
	c.cache.Remove(topicID)
}

// Purge drops every cached topic.
func (c *CachedEvidenceStore) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached topics.
func (c *CachedEvidenceStore) Len() int {
	return c.cache.Len()
}
