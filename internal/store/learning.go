// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package store

import (
	"errors"
	"sort"

	"github.com/tomtom215/storyline/internal/anchor"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// ErrTopicNotFound is returned for unknown topic ids.
var ErrTopicNotFound = taxonomy.ErrTopicNotFound

// errAlreadyApplied aborts a transaction whose feedback id was seen before.
var errAlreadyApplied = errors.New("feedback already applied")

// applyDelta mutates entry in place and returns the normalized terms that
// were newly added. Existing weights move by the delta; new terms start from
// the seeded weight of 1. Negative deltas never add terms.
func applyDelta(entry *models.TaxonomyEntry, delta *models.LearningDelta) []string {
	var added []string
	for _, adj := range delta.Adjustments {
		found := false
		for i := range entry.Keywords {
			kw := &entry.Keywords[i]
			if anchor.Normalize(kw.Term) != adj.Term {
				continue
			}
			base := kw.Weight
			if base <= 0 {
				base = 1
			}
			kw.Weight = clampWeight(base+adj.Delta, delta)
			found = true
			break
		}
		if !found && adj.Delta > 0 {
			entry.Keywords = append(entry.Keywords, models.Keyword{
				Term:   adj.Term,
				Class:  adj.Class,
				Weight: clampWeight(1+adj.Delta, delta),
			})
			added = append(added, adj.Term)
		}
	}
	entry.Version++
	return added
}

func clampWeight(w float64, d *models.LearningDelta) float64 {
	if d.MinWeight > 0 && w < d.MinWeight {
		return d.MinWeight
	}
	if d.MaxWeight > 0 && w > d.MaxWeight {
		return d.MaxWeight
	}
	return w
}

// keywordTerms returns the distinct normalized keyword terms of an entry.
func keywordTerms(entry *models.TaxonomyEntry) []string {
	set := make(map[string]struct{}, len(entry.Keywords))
	for _, kw := range entry.Keywords {
		if t := anchor.Normalize(kw.Term); t != "" {
			set[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func copyEntry(e models.TaxonomyEntry) models.TaxonomyEntry {
	e.Keywords = append([]models.Keyword(nil), e.Keywords...)
	return e
}

func sortEntries(entries []models.TaxonomyEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
}

// ignoreNotFound keeps unknown topics out of the store error metric.
func ignoreNotFound(err error) error {
	if errors.Is(err, ErrTopicNotFound) {
		return nil
	}
	return err
}
