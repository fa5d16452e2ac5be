// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package taxonomy

import (
	"context"
	"errors"

	"github.com/tomtom215/storyline/internal/models"
)

// ErrTopicNotFound is returned by Store.Lookup for an unknown topic id.
var ErrTopicNotFound = errors.New("topic not found")

// Store is the taxonomy persistence contract.
type Store interface {
	// Lookup returns one entry or ErrTopicNotFound.
	Lookup(ctx context.Context, topicID string) (models.TaxonomyEntry, error)

	// FindCandidates returns every entry with at least one keyword among
	// terms. Terms are normalized anchor terms.
	FindCandidates(ctx context.Context, terms []string) ([]models.TaxonomyEntry, error)

	// RecordLearningSignal applies delta to the topic atomically. It reports
	// false without changing anything when delta.FeedbackID was already
	// applied to this topic.
	RecordLearningSignal(ctx context.Context, topicID string, delta models.LearningDelta) (bool, error)
}

// Catalog is implemented by stores that can enumerate every entry. The
// resolver uses it to load taxonomy keywords into its anchor lexicon.
type Catalog interface {
	All(ctx context.Context) ([]models.TaxonomyEntry, error)
}
