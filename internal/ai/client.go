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
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/metrics"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("empty model response")

// Config configures the AI client.
type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64

	// RequestsPerSecond and Burst size the client-side rate limiter.
	RequestsPerSecond float64
	Burst             int

	// BreakerName labels circuit breaker metrics.
	BreakerName string
}

// DefaultConfig returns conservative client settings. Model must still be set.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         512,
		RequestsPerSecond: 2,
		Burst:             4,
		BreakerName:       "ai-provider",
	}
}

// Validate checks the client settings.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("ai model is required")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.MaxTokens)
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests per second must be positive, got %.2f", c.RequestsPerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	return nil
}

// MessageCreator is the subset of the Anthropic SDK used by Client. Tests
// substitute a fake.
type MessageCreator interface {
	New(ctx context.Context, params anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Prompt is a single-turn request.
type Prompt struct {
	// Operation labels metrics and errors, e.g. "adjudicate".
	Operation string
	System    string
	User      string
	MaxTokens int64
}

// Completer returns the model's text for a prompt.
type Completer interface {
	Complete(ctx context.Context, p Prompt) (string, error)
}

// Client is a rate-limited, circuit-broken Completer.
type Client struct {
	messages MessageCreator
	cfg      Config
	limiter  *rate.Limiter
	breaker  *breaker
	logger   zerolog.Logger
}

// NewClient creates a client backed by the Anthropic Messages API.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	sdk := anthropic.NewClient(opts...)
	return NewClientWithMessages(&sdk.Messages, cfg, logger)
}

// NewClientWithMessages creates a client over an existing message service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClientWithMessages(messages MessageCreator, cfg Config, logger zerolog.Logger) (*Client, error) {
	if messages == nil {
		return nil, errors.New("message creator is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ai config: %w", err)
	}
	if cfg.BreakerName == "" {
		cfg.BreakerName = "ai-provider"
	}

	log := logger.With().Str("component", "ai_client").Logger()
	return &Client{
		messages: messages,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:  newBreaker(cfg.BreakerName, log),
		logger:   log,
	}, nil
}

// Complete sends p and returns the concatenated text blocks of the reply.
func (c *Client) Complete(ctx context.Context, p Prompt) (string, error) {
	op := "ai." + p.Operation
	start := time.Now()

	text, err := c.complete(ctx, p)
	metrics.RecordAIRequest(p.Operation, time.Since(start), err)
	if err != nil {
		return "", classify(ctx, op, err)
	}
	return text, nil
}

func (c *Client) complete(ctx context.Context, p Prompt) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	maxTokens := p.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.cfg.MaxTokens
	}

	return c.breaker.execute(func() (string, error) {
		params := anthropic.MessageNewParams{
			Model:     anthropic.Model(c.cfg.Model),
			MaxTokens: maxTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(p.User)),
			},
		}
		if p.System != "" {
			params.System = []anthropic.TextBlockParam{{Text: p.System}}
		}

		message, err := c.messages.New(ctx, params)
		if err != nil {
			return "", err
		}

		metrics.AITokens.WithLabelValues("input").Add(float64(message.Usage.InputTokens))
		metrics.AITokens.WithLabelValues("output").Add(float64(message.Usage.OutputTokens))

		var sb strings.Builder
		for _, block := range message.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if strings.TrimSpace(sb.String()) == "" {
			return "", ErrEmptyResponse
		}
		return sb.String(), nil
	})
}

// classify maps a client error to a typed failure.
func classify(ctx context.Context, op string, err error) error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return failure.Timeout(op, err)
	}
	return failure.Unavailable(op, err)
}
