// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package recommend turns a batch of raw signals into a ranked, explainable
// recommendation set.
//
// # Pipeline
//
// One call to Engine.Recommend runs these stages:
//
//  1. Validate each input. Invalid or duplicate signals are rejected per item
//     with error kind "validation"; the batch continues.
//  2. Score valid signals on a bounded worker pool: resolve the topic first,
//     then score fit and demand concurrently and compute urgency. Every store
//     call carries its own timeout.
//  3. Apply the batch timeout. Signals not started or cut off are reported as
//     skipped ("batch-timeout"), never dropped.
//  4. Fail the run with dependency_unavailable only when every attempted
//     taxonomy lookup, or every attempted evidence lookup, failed.
//  5. Compute the weighted composite.
//  6. Cluster the scored signals (see package cluster).
//  7. Rank one candidate per cluster: composite desc, urgency desc, latest
//     timestamp desc, cluster id asc.
//  8. Truncate to the limit ("ranked-below-limit").
//  9. Optionally generate pitches with bounded concurrency.
//
// # Diagnostics
//
// Every input produces exactly one models.SignalOutcome, in input order:
// accepted (cluster representative), merged (other members), rejected or
// skipped. Fallbacks taken by the clusterer are attached as notes, e.g.
// "adjudication-timeout, fallback=rule-based".
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.Deps{
//	    Resolver:  resolver,
//	    Fit:       fitScorer,
//	    Urgency:   urgencyScorer,
//	    Demand:    demandScorer,
//	    Clusterer: clusterer,
//	    Pitcher:   pitcher,
//	}, recommend.DefaultConfig(), logger)
//
//	resp, err := engine.Recommend(ctx, recommend.Request{Signals: inputs})
//
// # Thread Safety
//
// The engine holds no per-run state and is safe for concurrent use.
package recommend
