// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/models"
)

const pitchSystemPrompt = `You write short editorial pitches for a video channel.
Given a recommended story, write two or three sentences: the angle, why it matters to the channel's audience now, and a working title.
Plain text only.`

// Pitcher generates editorial pitches for recommendations.
type Pitcher struct {
	completer Completer
	logger    zerolog.Logger
}

// NewPitcher creates a pitcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPitcher(completer Completer, logger zerolog.Logger) *Pitcher {
	return &Pitcher{
		completer: completer,
		logger:    logger.With().Str("component", "ai_pitcher").Logger(),
	}
}

// Generate returns a pitch for rec.
func (p *Pitcher) Generate(ctx context.Context, rec models.Recommendation) (string, error) {
	reply, err := p.completer.Complete(ctx, Prompt{
		Operation: "pitch",
		System:    pitchSystemPrompt,
		User:      pitchPrompt(&rec),
	})
	if err != nil {
		p.logger.Debug().Err(err).Str("cluster_id", rec.ClusterID).Msg("pitch generation failed")
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

func pitchPrompt(rec *models.Recommendation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Story: %s\n", rec.Title)
	if rec.TopicID != "" {
		fmt.Fprintf(&sb, "Topic: %s\n", rec.TopicID)
	}
	fmt.Fprintf(&sb, "Urgency: %s\n", rec.UrgencyTier)
	fmt.Fprintf(&sb, "Scores: fit %.0f, urgency %.0f, demand %.0f (composite %.0f)\n",
		rec.Axes.Fit, rec.Axes.Urgency, rec.Axes.Demand, rec.Composite)
	if n := len(rec.MemberIDs); n > 1 {
		fmt.Fprintf(&sb, "Reported by %d sources.\n", n)
	}
	for i, ev := range rec.Evidence {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "Evidence: %s\n", ev.Detail)
	}
	return sb.String()
}
