// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package ingest turns RSS and Atom feeds into signal inputs.

Feeds are fetched and parsed with gofeed. Each item becomes one
models.SignalInput with source type "rss": the title and the description
(HTML stripped with goquery) form the text, the item link becomes the
source URL and the published or updated time becomes the timestamp.

Items whose title exactly repeats an earlier item in the same feed are
collapsed. Items with no usable text are dropped.

Usage:

	fetcher, err := ingest.NewFetcher(ingest.DefaultConfig(), logger)
	batch := fetcher.FetchAll(ctx, []string{"https://example.com/rss"})
	for url, reason := range batch.Failed {
	    ...
	}
	engineInput := batch.Signals
*/
package ingest
