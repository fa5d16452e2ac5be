// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package cluster groups scored signals that describe the same story.
//
// Matching runs in two phases over every pair of signals:
//
//  1. Rules. A pair can only merge when both signals share a non-empty
//     topic, both carry a timestamp, the timestamps are within the window,
//     and they share at least MinHighValueAnchors high-value anchors
//     (person, topic-specific or event). Country and mechanism overlap never
//     counts.
//  2. Adjudication. Pairs whose shared high-value count falls in the
//     borderline band are sent to an Adjudicator, bounded in number, in
//     concurrency and per call in time. A verdict is used only above
//     MinAdjudicationConfidence. Every other outcome keeps the rule result.
//
// Positive decisions are merged with union-find, so membership is transitive
// and independent of input order. Adjudication never fails a run.
package cluster
