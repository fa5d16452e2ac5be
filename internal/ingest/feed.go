// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
)

const (
	// maxTextRunes matches the signal text limit.
	maxTextRunes = 4000

	maxConcurrentFeeds = 4
)

// Config controls feed fetching.
type Config struct {
	FetchTimeout time.Duration
	MaxItems     int
	UserAgent    string
}

// DefaultConfig returns the standard fetch settings.
func DefaultConfig() Config {
	return Config{
		FetchTimeout: 15 * time.Second,
		MaxItems:     50,
		UserAgent:    "storyline/1.0 (+https://github.com/tomtom215/storyline)",
	}
}

// Validate checks the fetch settings.
func (c Config) Validate() error {
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxItems <= 0 {
		return fmt.Errorf("max items per feed must be positive, got %d", c.MaxItems)
	}
	return nil
}

// Batch is the result of fetching several feeds.
type Batch struct {
	Signals []models.SignalInput `json:"signals"`
	// Failed maps a feed URL to the reason it produced nothing.
	Failed map[string]string `json:"failed,omitempty"`
}

// Fetcher downloads and converts feeds.
type Fetcher struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

// NewFetcher creates a fetcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFetcher(cfg Config, logger zerolog.Logger) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ingest config: %w", err)
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
		logger: logger.With().Str("component", "ingest").Logger(),
	}, nil
}

// Fetch downloads one feed and converts its items.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]models.SignalInput, error) {
	const op = "ingest.fetch"

	if err := checkFeedURL(feedURL); err != nil {
		return nil, failure.Validation(op, "%v", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.FetchTimeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = f.cfg.UserAgent

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		metrics.IngestFetchErrors.Inc()
		f.logger.Warn().Err(err).Str("feed", feedURL).Msg("feed fetch failed")

		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) {
			return nil, failure.Unavailable(op, fmt.Errorf("%s returned %d", feedURL, httpErr.StatusCode))
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, failure.Validation(op, "%s is not an RSS or Atom feed", feedURL)
		}
		return nil, failure.FromContext(op, fmt.Errorf("fetch %s: %w", feedURL, err))
	}

	signals := convert(feed, feedURL, f.cfg.MaxItems)
	f.logger.Debug().
		Str("feed", feedURL).
		Int("items", len(feed.Items)).
		Int("signals", len(signals)).
		Msg("feed converted")
	return signals, nil
}

// FetchAll fetches every feed concurrently. A failed feed is reported in
// Batch.Failed and never stops the others. Signal order follows feed order.
func (f *Fetcher) FetchAll(ctx context.Context, feedURLs []string) Batch {
	results := make([][]models.SignalInput, len(feedURLs))
	failed := make(map[string]string)
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentFeeds)
	for i, u := range feedURLs {
		g.Go(func() error {
			signals, err := f.Fetch(ctx, u)
			if err != nil {
				mu.Lock()
				failed[u] = err.Error()
				mu.Unlock()
				return nil
			}
			results[i] = signals
			return nil
		})
	}
	_ = g.Wait()

	batch := Batch{}
	for _, r := range results {
		batch.Signals = append(batch.Signals, r...)
	}
	if len(failed) > 0 {
		batch.Failed = failed
	}
	return batch
}

// Parse converts a feed document that has already been read.
func Parse(r io.Reader, feedURL string, maxItems int) ([]models.SignalInput, error) {
	feed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, failure.Validation("ingest.parse", "%v", err)
	}
	return convert(feed, feedURL, maxItems), nil
}

func convert(feed *gofeed.Feed, feedURL string, maxItems int) []models.SignalInput {
	sourceName := strings.TrimSpace(feed.Title)
	if sourceName == "" {
		if u, err := url.Parse(feedURL); err == nil {
			sourceName = u.Host
		}
	}

	seen := make(map[string]struct{}, len(feed.Items))
	out := make([]models.SignalInput, 0, min(len(feed.Items), maxItems))

	for _, item := range feed.Items {
		if maxItems > 0 && len(out) >= maxItems {
			break
		}

		title := collapseSpace(StripHTML(item.Title))
		body := item.Description
		if body == "" {
			body = item.Content
		}
		body = collapseSpace(StripHTML(body))

		if title == "" && body == "" {
			metrics.IngestItems.WithLabelValues("empty").Inc()
			continue
		}
		if title != "" {
			if _, dup := seen[title]; dup {
				metrics.IngestItems.WithLabelValues("duplicate").Inc()
				continue
			}
			seen[title] = struct{}{}
		}

		in := models.SignalInput{
			Text:       truncateRunes(joinText(title, body), maxTextRunes),
			SourceType: models.SourceRSS,
			SourceName: truncateRunes(sourceName, 256),
		}
		if checkFeedURL(item.Link) == nil {
			in.SourceURL = item.Link
		}
		switch {
		case item.PublishedParsed != nil:
			t := item.PublishedParsed.UTC()
			in.PublishedAt = &t
		case item.UpdatedParsed != nil:
			t := item.UpdatedParsed.UTC()
			in.PublishedAt = &t
		}

		metrics.IngestItems.WithLabelValues("accepted").Inc()
		out = append(out, in)
	}
	return out
}

// StripHTML returns the text content of an HTML fragment. Plain text passes
// through unchanged.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	return doc.Text()
}

func joinText(title, body string) string {
	switch {
	case body == "" || body == title:
		return title
	case title == "":
		return body
	default:
		return title + "\n" + body
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func checkFeedURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid feed url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("feed url %q has no host", raw)
	}
	return nil
}
