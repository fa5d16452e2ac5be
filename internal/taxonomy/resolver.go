// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/anchor"
	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
)

// ResolverConfig holds class weights and the fallback auto-match threshold.
type ResolverConfig struct {
	TopicSpecificWeight float64
	PersonWeight        float64
	GenericWeight       float64

	// DefaultThreshold applies to entries whose own threshold is zero.
	DefaultThreshold float64
}

// DefaultResolverConfig returns the standard class weights.
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		TopicSpecificWeight: 1.0,
		PersonWeight:        0.6,
		GenericWeight:       0.2,
		DefaultThreshold:    0.35,
	}
}

// Validate checks that class weights are ordered and non-negative.
func (c ResolverConfig) Validate() error {
	if c.GenericWeight < 0 || c.PersonWeight < 0 || c.TopicSpecificWeight < 0 {
		return errors.New("class weights must be non-negative")
	}
	if c.TopicSpecificWeight < c.PersonWeight || c.PersonWeight < c.GenericWeight {
		return fmt.Errorf("class weights must satisfy topic-specific >= person >= generic (got %.2f, %.2f, %.2f)",
			c.TopicSpecificWeight, c.PersonWeight, c.GenericWeight)
	}
	if c.DefaultThreshold < 0 || c.DefaultThreshold >= 1 {
		return fmt.Errorf("default threshold must be in [0,1), got %.2f", c.DefaultThreshold)
	}
	return nil
}

// Resolution is the outcome of resolving one signal.
type Resolution struct {
	TopicID         string   `json:"topic_id,omitempty"`
	Confidence      float64  `json:"confidence"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	NeedsReview     bool     `json:"needs_review"`
}

// Matched reports whether a topic was attached.
func (r Resolution) Matched() bool {
	return r.TopicID != ""
}

// Resolver attaches taxonomy topics to signals. It is safe for concurrent use.
type Resolver struct {
	store     Store
	cfg       ResolverConfig
	extractor atomic.Pointer[anchor.Extractor]
	version   atomic.Int64
	logger    zerolog.Logger
}

// NewResolver creates a resolver backed by store. The anchor lexicon starts as
// the built-in one; call Refresh to add the taxonomy keywords.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewResolver(store Store, cfg ResolverConfig, logger zerolog.Logger) (*Resolver, error) {
	if store == nil {
		return nil, errors.New("taxonomy store is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid resolver config: %w", err)
	}

	r := &Resolver{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "taxonomy").Logger(),
	}
	r.extractor.Store(anchor.New(nil))
	return r, nil
}

// Extractor returns the current anchor extractor.
func (r *Resolver) Extractor() *anchor.Extractor {
	return r.extractor.Load()
}

// LexiconVersion increments every time Refresh installs a new lexicon.
func (r *Resolver) LexiconVersion() int64 {
	return r.version.Load()
}

// Anchors extracts the anchors for text with the current lexicon.
func (r *Resolver) Anchors(text string) []models.Anchor {
	return r.extractor.Load().Extract(text)
}

// Refresh rebuilds the anchor lexicon from the built-in terms plus every
// taxonomy keyword. Stores that do not implement Catalog are left on the
// built-in lexicon.
func (r *Resolver) Refresh(ctx context.Context) error {
	catalog, ok := r.store.(Catalog)
	if !ok {
		return nil
	}

	entries, err := catalog.All(ctx)
	if err != nil {
		return failure.FromContext("taxonomy.refresh", err)
	}

	var extra []anchor.Term
	for i := range entries {
		for _, kw := range entries[i].Keywords {
			extra = append(extra, anchor.Term{Text: kw.Term, Class: kw.Class.AnchorClass()})
		}
	}

	ex := anchor.New(extra)
	r.extractor.Store(ex)
	v := r.version.Add(1)

	r.logger.Debug().
		Int("topics", len(entries)).
		Int("terms", ex.Len()).
		Int64("lexicon_version", v).
		Msg("anchor lexicon refreshed")
	return nil
}

// Resolve picks the best taxonomy topic for sig using sig.Anchors. Store
// failures are returned as typed errors; a no-match is not an error.
func (r *Resolver) Resolve(ctx context.Context, sig *models.Signal) (Resolution, error) {
	terms := sig.Terms()
	if len(terms) == 0 {
		return Resolution{NeedsReview: true}, nil
	}

	candidates, err := r.store.FindCandidates(ctx, terms)
	if err != nil {
		return Resolution{NeedsReview: true}, failure.FromContext("taxonomy.find_candidates", err)
	}

	present := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		present[t] = struct{}{}
	}

	var (
		best      *models.TaxonomyEntry
		bestScore float64
		bestTerms []string
	)
	for i := range candidates {
		entry := &candidates[i]
		score, matched := r.score(entry, present)
		if score <= 0 {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && entry.ID < best.ID) {
			best, bestScore, bestTerms = entry, score, matched
		}
	}

	if best == nil {
		return Resolution{NeedsReview: true}, nil
	}

	confidence := bestScore / (bestScore + 1)
	threshold := best.Threshold
	if threshold <= 0 {
		threshold = r.cfg.DefaultThreshold
	}

	res := Resolution{
		Confidence:      confidence,
		MatchedKeywords: bestTerms,
	}
	if confidence < threshold {
		res.NeedsReview = true
		return res, nil
	}
	res.TopicID = best.ID
	return res, nil
}

// score sums the weights of entry keywords present in the signal terms.
func (r *Resolver) score(entry *models.TaxonomyEntry, present map[string]struct{}) (float64, []string) {
	var (
		total   float64
		matched []string
	)
	seen := make(map[string]struct{}, len(entry.Keywords))
	for _, kw := range entry.Keywords {
		term := anchor.Normalize(kw.Term)
		if _, ok := present[term]; !ok {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		total += r.classWeight(kw.Class) * keywordWeight(kw)
		matched = append(matched, term)
	}
	sort.Strings(matched)
	return total, matched
}

func (r *Resolver) classWeight(c models.KeywordClass) float64 {
	switch c {
	case models.KeywordTopicSpecific:
		return r.cfg.TopicSpecificWeight
	case models.KeywordPerson:
		return r.cfg.PersonWeight
	default:
		return r.cfg.GenericWeight
	}
}

// keywordWeight treats an unset learned weight as the seeded value 1.
func keywordWeight(kw models.Keyword) float64 {
	if kw.Weight <= 0 {
		return 1
	}
	return kw.Weight
}
