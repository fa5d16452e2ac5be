// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package models

import "time"

// Cluster is a set of scored signals believed to describe the same story.
// A cluster always has at least one member; singletons are clusters too.
type Cluster struct {
	ID               string     `json:"id"`
	Key              string     `json:"key"`
	TopicID          string     `json:"topic_id,omitempty"`
	MemberIDs        []string   `json:"member_ids"`
	RepresentativeID string     `json:"representative_id"`
	Earliest         *time.Time `json:"earliest,omitempty"`
	Latest           *time.Time `json:"latest,omitempty"`
	SharedAnchors    []string   `json:"shared_anchors,omitempty"`
	Confidence       int        `json:"confidence"`

	// Representative carries the aggregate scores of the cluster.
	Representative ScoredSignal `json:"-"`
}

// Size returns the number of member signals.
func (c *Cluster) Size() int {
	return len(c.MemberIDs)
}
