// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/cluster"
	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
)

const adjudicationSystemPrompt = `You decide whether two short news signals describe the same underlying story.
Two signals are the same story only if they report the same specific event, decision or development.
Sharing a country, a person or a general theme is not enough.
Reply with a single JSON object and nothing else:
{"same_story": true|false, "confidence": 0-100, "reason": "<one sentence>"}`

// ErrMalformedVerdict is wrapped when the model reply cannot be parsed.
var ErrMalformedVerdict = errors.New("malformed adjudication verdict")

// Adjudicator implements cluster.Adjudicator on top of a Completer.
type Adjudicator struct {
	completer Completer
	logger    zerolog.Logger
}

var _ cluster.Adjudicator = (*Adjudicator)(nil)

// NewAdjudicator creates an adjudicator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAdjudicator(completer Completer, logger zerolog.Logger) *Adjudicator {
	return &Adjudicator{
		completer: completer,
		logger:    logger.With().Str("component", "ai_adjudicator").Logger(),
	}
}

// SameStory asks the model whether a and b describe the same story.
func (a *Adjudicator) SameStory(ctx context.Context, x, y models.ScoredSignal, shared []string) (cluster.Verdict, error) {
	reply, err := a.completer.Complete(ctx, Prompt{
		Operation: "adjudicate",
		System:    adjudicationSystemPrompt,
		User:      adjudicationPrompt(&x, &y, shared),
		MaxTokens: 256,
	})
	if err != nil {
		return cluster.Verdict{}, err
	}

	v, err := parseVerdict(reply)
	if err != nil {
		a.logger.Debug().Str("a", x.ID).Str("b", y.ID).Str("reply", truncate(reply, 200)).Msg("unparseable verdict")
		return cluster.Verdict{}, failure.Unavailable("ai.adjudicate", err)
	}
	return v, nil
}

func adjudicationPrompt(x, y *models.ScoredSignal, shared []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n", x.TopicID)
	if len(shared) > 0 {
		fmt.Fprintf(&sb, "Shared anchors: %s\n", strings.Join(shared, ", "))
	}
	writeSignal(&sb, "A", x)
	writeSignal(&sb, "B", y)
	return sb.String()
}

func writeSignal(sb *strings.Builder, label string, s *models.ScoredSignal) {
	fmt.Fprintf(sb, "\nSignal %s", label)
	if s.HasTimestamp() {
		fmt.Fprintf(sb, " (published %s)", s.PublishedAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	if s.SourceName != "" {
		fmt.Fprintf(sb, " from %s", s.SourceName)
	}
	fmt.Fprintf(sb, ":\n%s\n", s.Text)
}

type verdictReply struct {
	SameStory  *bool   `json:"same_story"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// parseVerdict extracts the JSON object from reply. Confidence is on the
// 0-100 scale the prompt asks for.
func parseVerdict(reply string) (cluster.Verdict, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return cluster.Verdict{}, fmt.Errorf("%w: no json object", ErrMalformedVerdict)
	}

	var r verdictReply
	if err := json.Unmarshal([]byte(reply[start:end+1]), &r); err != nil {
		return cluster.Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}
	if r.SameStory == nil {
		return cluster.Verdict{}, fmt.Errorf("%w: missing same_story", ErrMalformedVerdict)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return cluster.Verdict{}, fmt.Errorf("%w: confidence %.2f out of range", ErrMalformedVerdict, r.Confidence)
	}

	return cluster.Verdict{
		SameStory:  *r.SameStory,
		Confidence: r.Confidence / 100,
		Reason:     strings.TrimSpace(r.Reason),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
