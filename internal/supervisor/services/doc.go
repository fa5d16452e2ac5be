// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package services provides suture.Service wrappers for Storyline components.

Each wrapper turns a component lifecycle into suture's
Serve(ctx context.Context) error and implements fmt.Stringer so supervisor
events name it.

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine;
context cancellation triggers Shutdown with a bounded drain timeout.

TaxonomyRefreshService reloads the resolver's anchor lexicon from the
taxonomy store on an interval and on demand. The learner registers
Trigger as an OnApplied hook so learned keywords become matchable right
after a write:

	refresh := services.NewTaxonomyRefreshService(resolver, 10*time.Minute, logger)
	learner.OnApplied(refresh.Trigger)
	tree.AddDataService(refresh)
*/
package services
