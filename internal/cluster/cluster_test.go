// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package cluster

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func at(hours int) *time.Time {
	t := base.Add(time.Duration(hours) * time.Hour)
	return &t
}

func scored(id, topic string, ts *time.Time, composite float64, terms ...string) models.ScoredSignal {
	anchors := make([]models.Anchor, 0, len(terms))
	for _, t := range terms {
		anchors = append(anchors, models.Anchor{Term: t, Class: models.AnchorEvent})
	}
	return models.ScoredSignal{
		Signal: models.Signal{
			ID:          id,
			Text:        id + " text",
			SourceType:  models.SourceRSS,
			PublishedAt: ts,
			TopicID:     topic,
			Anchors:     anchors,
		},
		Composite: composite,
	}
}

func newClusterer(t *testing.T, cfg Config, adj Adjudicator) *Clusterer {
	t.Helper()
	c, err := New(cfg, adj, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// countingAdjudicator returns a fixed verdict and counts calls.
type countingAdjudicator struct {
	verdict Verdict
	err     error
	calls   atomic.Int32
}

func (a *countingAdjudicator) SameStory(_ context.Context, _, _ models.ScoredSignal, _ []string) (Verdict, error) {
	a.calls.Add(1)
	return a.verdict, a.err
}

func clusterOfSize(res Result, n int) int {
	count := 0
	for i := range res.Clusters {
		if res.Clusters[i].Size() == n {
			count++
		}
	}
	return count
}

func TestCluster_RuleMergeWithinWindow(t *testing.T) {
	t.Parallel()

	c := newClusterer(t, DefaultConfig(), nil)
	signals := []models.ScoredSignal{
		scored("s1", "us-politics", at(0), 60, "election", "incumbent"),
		scored("s2", "us-politics", at(6), 70, "election", "incumbent", "runoff"),
	}

	res := c.Cluster(context.Background(), signals, 48*time.Hour)

	if len(res.Clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(res.Clusters))
	}
	cl := res.Clusters[0]
	if cl.Size() != 2 {
		t.Errorf("size = %d, want 2", cl.Size())
	}
	if cl.RepresentativeID != "s2" {
		t.Errorf("representative = %s, want s2 (higher composite)", cl.RepresentativeID)
	}
	if cl.Confidence != ruleConfidence {
		t.Errorf("confidence = %d, want %d", cl.Confidence, ruleConfidence)
	}
	if len(res.Decisions) != 1 || res.Decisions[0].Phase != PhaseRule {
		t.Errorf("decisions = %+v, want one rule decision", res.Decisions)
	}
	if res.AdjudicationsUsed != 0 {
		t.Errorf("adjudications = %d, want 0", res.AdjudicationsUsed)
	}
	if cl.Earliest == nil || !cl.Earliest.Equal(*at(0)) || cl.Latest == nil || !cl.Latest.Equal(*at(6)) {
		t.Errorf("time span = %v..%v", cl.Earliest, cl.Latest)
	}
	if res.ClusterOf["s1"] != cl.ID || res.ClusterOf["s2"] != cl.ID {
		t.Errorf("ClusterOf = %v", res.ClusterOf)
	}
}

func TestCluster_HardGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b models.ScoredSignal
	}{
		{
			name: "different topics",
			a:    scored("a", "us-politics", at(0), 50, "election", "incumbent"),
			b:    scored("b", "trade-wars", at(1), 50, "election", "incumbent"),
		},
		{
			name: "unresolved topic",
			a:    scored("a", "", at(0), 50, "election", "incumbent"),
			b:    scored("b", "", at(1), 50, "election", "incumbent"),
		},
		{
			name: "missing timestamp",
			a:    scored("a", "us-politics", nil, 50, "election", "incumbent"),
			b:    scored("b", "us-politics", at(1), 50, "election", "incumbent"),
		},
		{
			name: "outside window",
			a:    scored("a", "us-politics", at(0), 50, "election", "incumbent"),
			b:    scored("b", "us-politics", at(72), 50, "election", "incumbent"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			adj := &countingAdjudicator{verdict: Verdict{SameStory: true, Confidence: 1}}
			c := newClusterer(t, DefaultConfig(), adj)

			res := c.Cluster(context.Background(), []models.ScoredSignal{tt.a, tt.b}, 48*time.Hour)

			if len(res.Clusters) != 2 {
				t.Errorf("clusters = %d, want 2", len(res.Clusters))
			}
			if len(res.Decisions) != 0 {
				t.Errorf("decisions = %d, want 0", len(res.Decisions))
			}
			if adj.calls.Load() != 0 {
				t.Errorf("adjudicator called %d times", adj.calls.Load())
			}
		})
	}
}

func TestCluster_SingleAnchorNeverMergesByRule(t *testing.T) {
	t.Parallel()

	c := newClusterer(t, DefaultConfig(), nil)
	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(1), 50, "election", "recount"),
	}

	res := c.Cluster(context.Background(), signals, 48*time.Hour)

	if len(res.Clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(res.Clusters))
	}
	d := res.Decisions[0]
	if d.Merged || d.Fallback != FallbackRuleBased || d.Reason != NoteUnavailable {
		t.Errorf("decision = %+v, want unmerged unavailable fallback", d)
	}
}

func TestCluster_AdjudicationTimeoutFallsBack(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	blocking := AdjudicatorFunc(func(ctx context.Context, _, _ models.ScoredSignal, _ []string) (Verdict, error) {
		<-ctx.Done()
		return Verdict{}, failure.FromContext("test", ctx.Err())
	})
	c := newClusterer(t, cfg, blocking)

	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(2), 50, "election", "recount"),
	}

	res := c.Cluster(context.Background(), signals, 48*time.Hour)

	if len(res.Clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(res.Clusters))
	}
	want := "adjudication-timeout, fallback=rule-based"
	for _, id := range []string{"a", "b"} {
		notes := res.Notes[id]
		if len(notes) != 1 || notes[0] != want {
			t.Errorf("notes[%s] = %v, want [%q]", id, notes, want)
		}
	}
	if res.AdjudicationsUsed != 1 {
		t.Errorf("adjudications = %d, want 1", res.AdjudicationsUsed)
	}
}

func TestCluster_AdjudicatorIgnoringContextStillTimesOut(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	release := make(chan struct{})
	defer close(release)
	stuck := AdjudicatorFunc(func(_ context.Context, _, _ models.ScoredSignal, _ []string) (Verdict, error) {
		<-release
		return Verdict{SameStory: true, Confidence: 1}, nil
	})
	c := newClusterer(t, cfg, stuck)

	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(2), 50, "election", "recount"),
	}

	res := c.Cluster(context.Background(), signals, 48*time.Hour)

	if res.Decisions[0].Reason != NoteTimeout {
		t.Errorf("reason = %q, want %q", res.Decisions[0].Reason, NoteTimeout)
	}
}

func TestCluster_AdjudicationOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		verdict    Verdict
		err        error
		wantMerged bool
		wantReason string
		wantConf   int
	}{
		{
			name:       "confident same story",
			verdict:    Verdict{SameStory: true, Confidence: 0.85, Reason: "same vote"},
			wantMerged: true,
			wantReason: "same vote",
			wantConf:   85,
		},
		{
			name:       "confident distinct",
			verdict:    Verdict{SameStory: false, Confidence: 0.9},
			wantMerged: false,
			wantConf:   90,
		},
		{
			name:       "low confidence",
			verdict:    Verdict{SameStory: true, Confidence: 0.5},
			wantMerged: false,
			wantReason: NoteLowConfidence,
		},
		{
			name:       "unavailable",
			err:        failure.Unavailable("ai.adjudicate", errors.New("503")),
			wantMerged: false,
			wantReason: NoteUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			adj := &countingAdjudicator{verdict: tt.verdict, err: tt.err}
			c := newClusterer(t, DefaultConfig(), adj)
			signals := []models.ScoredSignal{
				scored("a", "us-politics", at(0), 50, "election", "runoff"),
				scored("b", "us-politics", at(2), 50, "election", "recount"),
			}

			res := c.Cluster(context.Background(), signals, 48*time.Hour)

			d := res.Decisions[0]
			if d.Merged != tt.wantMerged {
				t.Errorf("merged = %v, want %v", d.Merged, tt.wantMerged)
			}
			if d.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", d.Reason, tt.wantReason)
			}
			if d.Confidence != tt.wantConf {
				t.Errorf("confidence = %d, want %d", d.Confidence, tt.wantConf)
			}
			if tt.wantMerged && (len(res.Clusters) != 1 || res.Clusters[0].Confidence != tt.wantConf) {
				t.Errorf("clusters = %+v", res.Clusters)
			}
		})
	}
}

func TestCluster_BudgetExhausted(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxAdjudications = 1
	adj := &countingAdjudicator{verdict: Verdict{SameStory: false, Confidence: 0.9}}
	c := newClusterer(t, cfg, adj)

	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(1), 50, "election", "recount"),
		scored("c", "us-politics", at(2), 50, "election", "protest"),
	}

	res := c.Cluster(context.Background(), signals, 48*time.Hour)

	if res.AdjudicationsUsed != 1 || adj.calls.Load() != 1 {
		t.Fatalf("adjudications = %d, calls = %d, want 1", res.AdjudicationsUsed, adj.calls.Load())
	}
	exhausted := 0
	for _, d := range res.Decisions {
		if d.Reason == NoteBudgetExhausted {
			exhausted++
		}
	}
	if exhausted != 2 {
		t.Errorf("exhausted decisions = %d, want 2", exhausted)
	}
	// The budget is spent on the first pair in id order.
	if res.Decisions[0].A != "a" || res.Decisions[0].B != "b" || res.Decisions[0].Fallback != "" {
		t.Errorf("first decision = %+v, want adjudicated a/b", res.Decisions[0])
	}
}

func TestCluster_BudgetIgnoresWarmCache(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.MaxAdjudications = 1
	adj := &countingAdjudicator{verdict: Verdict{SameStory: true, Confidence: 0.9}}
	c := newClusterer(t, cfg, adj)

	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(1), 50, "election", "recount"),
		scored("c", "us-politics", at(2), 50, "election", "protest"),
	}

	cold := c.Cluster(context.Background(), signals, 48*time.Hour)
	warm := c.Cluster(context.Background(), signals, 48*time.Hour)

	if adj.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", adj.calls.Load())
	}
	if warm.AdjudicationsUsed != 0 {
		t.Errorf("warm run adjudications = %d, want 0", warm.AdjudicationsUsed)
	}

	for name, res := range map[string]Result{"cold": cold, "warm": warm} {
		if len(res.Clusters) != 2 {
			t.Fatalf("%s run clusters = %d, want 2", name, len(res.Clusters))
		}
		if res.ClusterOf["a"] != res.ClusterOf["b"] || res.ClusterOf["a"] == res.ClusterOf["c"] {
			t.Errorf("%s run membership = %v, want {a b} {c}", name, res.ClusterOf)
		}
	}
	for i := range cold.Clusters {
		if cold.Clusters[i].ID != warm.Clusters[i].ID {
			t.Errorf("cluster %d id differs between cold and warm runs", i)
		}
	}
	for i := range cold.Decisions {
		if cold.Decisions[i].Merged != warm.Decisions[i].Merged || cold.Decisions[i].Reason != warm.Decisions[i].Reason {
			t.Errorf("decision %d: cold %+v, warm %+v", i, cold.Decisions[i], warm.Decisions[i])
		}
	}
}

func TestCluster_VerdictCache(t *testing.T) {
	t.Parallel()

	adj := &countingAdjudicator{verdict: Verdict{SameStory: true, Confidence: 0.8}}
	c := newClusterer(t, DefaultConfig(), adj)
	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(2), 50, "election", "recount"),
	}

	first := c.Cluster(context.Background(), signals, 48*time.Hour)
	second := c.Cluster(context.Background(), signals, 48*time.Hour)

	if adj.calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", adj.calls.Load())
	}
	if second.AdjudicationsUsed != 0 || !second.Decisions[0].Cached {
		t.Errorf("second run = %+v, want cached decision", second.Decisions[0])
	}
	if first.Clusters[0].ID != second.Clusters[0].ID {
		t.Error("cluster ids differ between runs")
	}
}

func TestCluster_Transitive(t *testing.T) {
	t.Parallel()

	c := newClusterer(t, DefaultConfig(), nil)
	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "incumbent"),
		scored("b", "us-politics", at(1), 50, "election", "incumbent", "runoff", "recount"),
		scored("c", "us-politics", at(2), 50, "runoff", "recount"),
	}

	res := c.Cluster(context.Background(), signals, 48*time.Hour)

	if len(res.Clusters) != 1 {
		t.Fatalf("clusters = %d, want 1", len(res.Clusters))
	}
	got := res.Clusters[0].SharedAnchors
	want := []string{"election", "incumbent", "recount", "runoff"}
	if len(got) != len(want) {
		t.Fatalf("shared = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("shared[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	if res.Clusters[0].Key != "us-politics/election+incumbent+recount" {
		t.Errorf("key = %s", res.Clusters[0].Key)
	}
}

func TestCluster_OrderIndependentAndIdempotent(t *testing.T) {
	t.Parallel()

	c := newClusterer(t, DefaultConfig(), nil)
	signals := []models.ScoredSignal{
		scored("s3", "us-politics", at(3), 40, "election", "incumbent"),
		scored("s1", "us-politics", at(0), 40, "election", "incumbent"),
		scored("s2", "trade-wars", at(1), 70, "tariff", "summit"),
		scored("s4", "", nil, 10),
	}
	reversed := make([]models.ScoredSignal, len(signals))
	for i := range signals {
		reversed[len(signals)-1-i] = signals[i]
	}

	r1 := c.Cluster(context.Background(), signals, 48*time.Hour)
	r2 := c.Cluster(context.Background(), reversed, 48*time.Hour)
	r3 := c.Cluster(context.Background(), signals, 48*time.Hour)

	for _, other := range []Result{r2, r3} {
		if len(other.Clusters) != len(r1.Clusters) {
			t.Fatalf("cluster count %d != %d", len(other.Clusters), len(r1.Clusters))
		}
		for i := range r1.Clusters {
			if r1.Clusters[i].ID != other.Clusters[i].ID {
				t.Errorf("cluster %d id differs", i)
			}
			if r1.Clusters[i].RepresentativeID != other.Clusters[i].RepresentativeID {
				t.Errorf("cluster %d representative differs", i)
			}
		}
	}

	if len(r1.Clusters) != 3 || clusterOfSize(r1, 2) != 1 {
		t.Errorf("clusters = %+v", r1.Clusters)
	}
	// Equal composites fall back to the earlier timestamp.
	if r1.ClusterOf["s1"] != r1.ClusterOf["s3"] {
		t.Fatal("s1 and s3 should share a cluster")
	}
	for i := range r1.Clusters {
		if r1.Clusters[i].Size() == 2 && r1.Clusters[i].RepresentativeID != "s1" {
			t.Errorf("representative = %s, want s1", r1.Clusters[i].RepresentativeID)
		}
	}
}

func TestCluster_CoversEverySignalOnce(t *testing.T) {
	t.Parallel()

	c := newClusterer(t, DefaultConfig(), nil)
	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "incumbent"),
		scored("b", "us-politics", at(1), 50, "election", "incumbent"),
		scored("c", "us-politics", at(2), 50, "protest"),
		scored("d", "", nil, 50),
	}

	res := c.Cluster(context.Background(), signals, 0)

	seen := make(map[string]int)
	for i := range res.Clusters {
		for _, id := range res.Clusters[i].MemberIDs {
			seen[id]++
		}
	}
	for _, s := range signals {
		if seen[s.ID] != 1 {
			t.Errorf("signal %s appears %d times", s.ID, seen[s.ID])
		}
	}
	for i := range res.Clusters {
		if res.Clusters[i].Size() == 1 && res.Clusters[i].Confidence != singletonConfidence {
			t.Errorf("singleton confidence = %d", res.Clusters[i].Confidence)
		}
	}
}

func TestCluster_CanceledContext(t *testing.T) {
	t.Parallel()

	adj := &countingAdjudicator{verdict: Verdict{SameStory: true, Confidence: 1}}
	c := newClusterer(t, DefaultConfig(), adj)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	signals := []models.ScoredSignal{
		scored("a", "us-politics", at(0), 50, "election", "runoff"),
		scored("b", "us-politics", at(2), 50, "election", "recount"),
	}
	res := c.Cluster(ctx, signals, 48*time.Hour)

	if adj.calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", adj.calls.Load())
	}
	if res.Decisions[0].Fallback != FallbackRuleBased {
		t.Errorf("decision = %+v, want fallback", res.Decisions[0])
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero anchors", mutate: func(c *Config) { c.MinHighValueAnchors = 0 }, wantErr: true},
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: true},
		{name: "confidence above one", mutate: func(c *Config) { c.MinAdjudicationConfidence = 1.5 }, wantErr: true},
		{name: "cache disabled", mutate: func(c *Config) { c.CacheSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Borderline(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	for shared, want := range map[int]bool{0: false, 1: true, 2: false, 3: false} {
		if got := cfg.borderline(shared); got != want {
			t.Errorf("borderline(%d) = %v, want %v", shared, got, want)
		}
	}
}
