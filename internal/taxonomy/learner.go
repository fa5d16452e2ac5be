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
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/anchor"
	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/validation"
)

// ErrLearningDisabled is wrapped in the validation failure returned by Apply
// when learning is switched off.
var ErrLearningDisabled = errors.New("learning disabled")

// LearnerConfig controls feedback-driven weight updates.
type LearnerConfig struct {
	Enabled          bool
	LearningRate     float64
	MinKeywordWeight float64
	MaxKeywordWeight float64
}

// DefaultLearnerConfig returns learning disabled with standard rates.
func DefaultLearnerConfig() LearnerConfig {
	return LearnerConfig{
		Enabled:          false,
		LearningRate:     0.1,
		MinKeywordWeight: 0.1,
		MaxKeywordWeight: 3.0,
	}
}

// Validate checks the weight bounds.
func (c LearnerConfig) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be positive, got %.3f", c.LearningRate)
	}
	if c.MinKeywordWeight <= 0 {
		return fmt.Errorf("min keyword weight must be positive, got %.3f", c.MinKeywordWeight)
	}
	if c.MaxKeywordWeight < c.MinKeywordWeight {
		return fmt.Errorf("max keyword weight %.3f below min %.3f", c.MaxKeywordWeight, c.MinKeywordWeight)
	}
	return nil
}

// Feedback is a human confirmation or correction of a topic assignment.
type Feedback struct {
	FeedbackID      string   `json:"feedback_id" validate:"notblank,max=128"`
	TopicID         string   `json:"topic_id" validate:"notblank,max=128"`
	PreviousTopicID string   `json:"previous_topic_id,omitempty" validate:"max=128"`
	Text            string   `json:"text,omitempty" validate:"max=4000"`
	Terms           []string `json:"terms,omitempty" validate:"max=50,dive,max=128"`
}

// IsCorrection reports whether the feedback moves a signal between topics.
func (f *Feedback) IsCorrection() bool {
	return f.PreviousTopicID != "" && f.PreviousTopicID != f.TopicID
}

// LearnResult reports what a feedback application changed.
type LearnResult struct {
	FeedbackID string   `json:"feedback_id"`
	TopicID    string   `json:"topic_id"`
	Applied    bool     `json:"applied"`
	Terms      []string `json:"terms"`
	// Corrected is true when the previous topic was lowered by this call.
	Corrected bool `json:"corrected"`
}

// Learner applies feedback to the taxonomy store. It is the single writer of
// taxonomy state.
type Learner struct {
	store    Store
	resolver *Resolver
	cfg      LearnerConfig
	locks    *topicLocks
	logger   zerolog.Logger

	hookMu    sync.RWMutex
	onApplied []func()
}

// NewLearner creates a learner. The resolver supplies the anchor lexicon
// used to extract terms from feedback text.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewLearner(store Store, resolver *Resolver, cfg LearnerConfig, logger zerolog.Logger) (*Learner, error) {
	if store == nil {
		return nil, errors.New("taxonomy store is required")
	}
	if resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid learner config: %w", err)
	}
	return &Learner{
		store:    store,
		resolver: resolver,
		cfg:      cfg,
		locks:    newTopicLocks(),
		logger:   logger.With().Str("component", "taxonomy_learner").Logger(),
	}, nil
}

// Enabled reports whether Apply will write.
func (l *Learner) Enabled() bool {
	return l.cfg.Enabled
}

// OnApplied registers fn to run after every write that changed the store.
func (l *Learner) OnApplied(fn func()) {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()
	l.onApplied = append(l.onApplied, fn)
}

// Apply raises the feedback terms on the confirmed topic and, for a
// correction, lowers them on the previous topic. Re-applying a feedback id
// returns Applied=false.
func (l *Learner) Apply(ctx context.Context, fb Feedback) (LearnResult, error) {
	const op = "taxonomy.learn"

	if !l.cfg.Enabled {
		return LearnResult{}, failure.New(failure.KindValidation, op, ErrLearningDisabled)
	}
	if verr := validation.ValidateStruct(&fb); verr != nil {
		metrics.LearningWrites.WithLabelValues("rejected").Inc()
		return LearnResult{}, verr.Failure(op)
	}

	terms := l.feedbackTerms(&fb)
	if len(terms) == 0 {
		metrics.LearningWrites.WithLabelValues("rejected").Inc()
		return LearnResult{}, failure.Validation(op, "feedback has no usable terms")
	}

	entry, err := l.store.Lookup(ctx, fb.TopicID)
	if errors.Is(err, ErrTopicNotFound) {
		metrics.LearningWrites.WithLabelValues("rejected").Inc()
		return LearnResult{}, failure.Validation(op, "unknown topic %q", fb.TopicID)
	}
	if err != nil {
		metrics.LearningWrites.WithLabelValues("error").Inc()
		return LearnResult{}, failure.FromContext(op, err)
	}

	result := LearnResult{FeedbackID: fb.FeedbackID, TopicID: fb.TopicID, Terms: terms}

	raise := l.delta(fb.FeedbackID, terms, &entry, l.cfg.LearningRate)
	applied, err := l.write(ctx, fb.TopicID, raise)
	if err != nil {
		return result, err
	}
	result.Applied = applied

	if fb.IsCorrection() {
		prev, err := l.store.Lookup(ctx, fb.PreviousTopicID)
		switch {
		case errors.Is(err, ErrTopicNotFound):
			l.logger.Warn().
				Str("feedback_id", fb.FeedbackID).
				Str("previous_topic_id", fb.PreviousTopicID).
				Msg("previous topic not found, skipping correction")
		case err != nil:
			return result, failure.FromContext(op, err)
		default:
			lower := l.delta(fb.FeedbackID, terms, &prev, -l.cfg.LearningRate)
			if len(lower.Adjustments) == 0 {
				break
			}
			corrected, err := l.write(ctx, fb.PreviousTopicID, lower)
			if err != nil {
				return result, err
			}
			result.Corrected = corrected
			result.Applied = result.Applied || corrected
		}
	}

	if result.Applied {
		l.notify()
	}

	l.logger.Info().
		Str("feedback_id", fb.FeedbackID).
		Str("topic_id", fb.TopicID).
		Str("previous_topic_id", fb.PreviousTopicID).
		Int("terms", len(terms)).
		Bool("applied", result.Applied).
		Msg("feedback processed")

	return result, nil
}

// write applies one delta while holding the topic lock.
func (l *Learner) write(ctx context.Context, topicID string, delta models.LearningDelta) (bool, error) {
	unlock := l.locks.lock(topicID)
	defer unlock()

	applied, err := l.store.RecordLearningSignal(ctx, topicID, delta)
	switch {
	case err != nil:
		metrics.LearningWrites.WithLabelValues("error").Inc()
		return false, failure.FromContext("taxonomy.record_learning_signal", err)
	case applied:
		metrics.LearningWrites.WithLabelValues("applied").Inc()
	default:
		metrics.LearningWrites.WithLabelValues("duplicate").Inc()
	}
	return applied, nil
}

// delta builds the adjustment set for one topic. Terms already registered on
// the topic keep their class; new terms are added as topic-specific. Negative
// deltas only touch existing keywords.
func (l *Learner) delta(feedbackID string, terms []string, entry *models.TaxonomyEntry, rate float64) models.LearningDelta {
	existing := make(map[string]models.KeywordClass, len(entry.Keywords))
	for _, kw := range entry.Keywords {
		existing[anchor.Normalize(kw.Term)] = kw.Class
	}

	adj := make([]models.KeywordAdjustment, 0, len(terms))
	for _, term := range terms {
		class, ok := existing[term]
		if !ok {
			if rate < 0 {
				continue
			}
			class = models.KeywordTopicSpecific
		}
		adj = append(adj, models.KeywordAdjustment{Term: term, Class: class, Delta: rate})
	}

	return models.LearningDelta{
		FeedbackID:  feedbackID,
		Adjustments: adj,
		MinWeight:   l.cfg.MinKeywordWeight,
		MaxWeight:   l.cfg.MaxKeywordWeight,
	}
}

// feedbackTerms merges explicit terms with non-mechanism anchors from text.
func (l *Learner) feedbackTerms(fb *Feedback) []string {
	set := make(map[string]struct{})
	for _, t := range fb.Terms {
		if n := anchor.Normalize(t); n != "" {
			set[n] = struct{}{}
		}
	}
	if fb.Text != "" {
		for _, a := range l.resolver.Anchors(fb.Text) {
			if a.Class == models.AnchorMechanism {
				continue
			}
			set[a.Term] = struct{}{}
		}
	}

	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

func (l *Learner) notify() {
	l.hookMu.RLock()
	hooks := append([]func(){}, l.onApplied...)
	l.hookMu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}
