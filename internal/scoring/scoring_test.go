// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/storyline/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// mockEvidenceStore serves canned records per topic.
type mockEvidenceStore struct {
	records map[string][]models.EvidenceRecord
	err     error
}

func (m *mockEvidenceStore) GetEvidence(ctx context.Context, topicID string) ([]models.EvidenceRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]models.EvidenceRecord(nil), m.records[topicID]...), nil
}

var errStoreDown = errors.New("evidence store down")

func daysAgo(d float64) time.Time {
	return testNow.Add(-time.Duration(d * 24 * float64(time.Hour)))
}

func hoursAgo(h float64) *time.Time {
	t := testNow.Add(-time.Duration(h * float64(time.Hour)))
	return &t
}
