// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package cluster

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
)

// DefaultWindow applies when Cluster is called without a window.
const DefaultWindow = 72 * time.Hour

// Fallback notes recorded on a decision when adjudication could not decide.
const (
	NoteTimeout         = "adjudication-timeout"
	NoteUnavailable     = "adjudication-unavailable"
	NoteLowConfidence   = "adjudication-low-confidence"
	NoteBudgetExhausted = "adjudication-budget-exhausted"

	FallbackRuleBased = "rule-based"
)

// Confidence values for clusters that were not adjudicated.
const (
	singletonConfidence = 100
	ruleConfidence      = 90
)

var (
	clusterNamespace = uuid.MustParse("6f1c2a9e-3d7b-5e0f-9a41-7c5d2e8b1f30")
	pairNamespace    = uuid.MustParse("0b7e4d21-8c3a-5f96-b2e1-4a9d6c3f7e58")
)

// Phase identifies which matching phase produced a decision.
type Phase string

const (
	PhaseRule         Phase = "rule"
	PhaseAdjudication Phase = "adjudication"
)

// Decision is the outcome for one candidate or borderline pair. Pairs that
// fail the topic or time gate are not recorded.
type Decision struct {
	A          string   `json:"a"`
	B          string   `json:"b"`
	Shared     []string `json:"shared"`
	Phase      Phase    `json:"phase"`
	Merged     bool     `json:"merged"`
	Confidence int      `json:"confidence"`
	Reason     string   `json:"reason,omitempty"`
	Fallback   string   `json:"fallback,omitempty"`
	Cached     bool     `json:"cached,omitempty"`

	i, j      int
	ruleMerge bool
}

// Note renders a fallback decision for diagnostics, e.g.
// "adjudication-timeout, fallback=rule-based". It is empty otherwise.
func (d *Decision) Note() string {
	if d.Fallback == "" {
		return ""
	}
	return d.Reason + ", fallback=" + d.Fallback
}

// Result is the output of one clustering run.
type Result struct {
	// Clusters covers every input signal exactly once, ordered by the
	// smallest member id.
	Clusters  []models.Cluster `json:"clusters"`
	Decisions []Decision       `json:"decisions"`

	// AdjudicationsUsed counts adjudicator calls, not cache hits.
	AdjudicationsUsed int `json:"adjudications_used"`

	// ClusterOf maps each signal id to its cluster id.
	ClusterOf map[string]string `json:"-"`

	// Notes holds the fallback notes that involve each signal.
	Notes map[string][]string `json:"-"`
}

// Clusterer deduplicates scored signals. It is safe for concurrent use; the
// verdict cache is shared across runs.
type Clusterer struct {
	cfg    Config
	adj    Adjudicator
	cache  *expirable.LRU[string, Verdict]
	logger zerolog.Logger
}

// New creates a clusterer. adj may be nil, in which case borderline pairs
// always fall back to the rule result.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, adj Adjudicator, logger zerolog.Logger) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cluster config: %w", err)
	}

	c := &Clusterer{
		cfg:    cfg,
		adj:    adj,
		logger: logger.With().Str("component", "cluster").Logger(),
	}
	if cfg.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, Verdict](cfg.CacheSize, nil, cfg.CacheTTL)
	}
	return c, nil
}

// Cluster groups signals describing the same story within window. Signal ids
// must be unique. The result does not depend on input order.
func (c *Clusterer) Cluster(ctx context.Context, signals []models.ScoredSignal, window time.Duration) Result {
	if window <= 0 {
		window = DefaultWindow
	}

	sorted := make([]models.ScoredSignal, len(signals))
	copy(sorted, signals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	highValue := make([]map[string]struct{}, len(sorted))
	for i := range sorted {
		highValue[i] = sorted[i].HighValueTerms()
	}

	var (
		decisions []Decision
		pending   []int
	)
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			if !compatible(&sorted[i], &sorted[j], window) {
				continue
			}
			shared := intersect(highValue[i], highValue[j])
			n := len(shared)
			ruleMerge := n >= c.cfg.MinHighValueAnchors

			switch {
			case c.cfg.borderline(n):
				pending = append(pending, len(decisions))
				decisions = append(decisions, Decision{
					A: sorted[i].ID, B: sorted[j].ID, Shared: shared,
					Phase: PhaseAdjudication, i: i, j: j, ruleMerge: ruleMerge,
				})
			case ruleMerge:
				decisions = append(decisions, Decision{
					A: sorted[i].ID, B: sorted[j].ID, Shared: shared,
					Phase: PhaseRule, Merged: true, Confidence: ruleConfidence,
					Reason: "shared-anchors", i: i, j: j, ruleMerge: true,
				})
			}
		}
	}

	used := c.adjudicate(ctx, sorted, decisions, pending)
	res := c.build(sorted, decisions)
	res.AdjudicationsUsed = used

	merged := 0
	for i := range decisions {
		if decisions[i].Merged {
			merged++
		}
	}
	c.logger.Debug().
		Int("signals", len(sorted)).
		Int("clusters", len(res.Clusters)).
		Int("merged_pairs", merged).
		Int("borderline_pairs", len(pending)).
		Int("adjudications", used).
		Msg("clustering complete")

	return res
}

// adjudicate resolves the borderline decisions in place and returns the
// number of adjudicator calls made. Decisions are visited in (A, B) order and
// each one takes a budget slot whether or not its verdict is cached.
func (c *Clusterer) adjudicate(ctx context.Context, sorted []models.ScoredSignal, decisions []Decision, pending []int) int {
	var jobs []int
	for slot, di := range pending {
		d := &decisions[di]

		if slot >= c.cfg.MaxAdjudications {
			c.fallback(d, NoteBudgetExhausted)
			continue
		}
		if v, ok := c.cached(&sorted[d.i], &sorted[d.j]); ok {
			d.Cached = true
			metrics.Adjudications.WithLabelValues("cached").Inc()
			c.apply(d, v)
			continue
		}
		if c.adj == nil {
			c.fallback(d, NoteUnavailable)
			continue
		}
		jobs = append(jobs, di)
	}

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for _, di := range jobs {
		d := &decisions[di]
		a, b := sorted[d.i], sorted[d.j]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				c.fallback(d, noteFor(err))
				return nil
			}

			v, err := c.call(ctx, a, b, d.Shared)
			if err != nil {
				c.logger.Debug().Err(err).Str("a", d.A).Str("b", d.B).Msg("adjudication failed")
				c.fallback(d, noteFor(err))
				return nil
			}

			c.remember(&a, &b, v)
			c.apply(d, v)
			return nil
		})
	}
	_ = g.Wait()

	return len(jobs)
}

type callResult struct {
	verdict Verdict
	err     error
}

// call runs one adjudication under the per-call deadline. It returns on the
// deadline even if the adjudicator ignores its context.
func (c *Clusterer) call(ctx context.Context, a, b models.ScoredSignal, shared []string) (Verdict, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		v, err := c.adj.SameStory(callCtx, a, b, shared)
		done <- callResult{verdict: v, err: err}
	}()

	select {
	case r := <-done:
		return r.verdict, r.err
	case <-callCtx.Done():
		return Verdict{}, failure.FromContext("cluster.adjudicate", callCtx.Err())
	}
}

// apply uses a verdict when it is confident enough and falls back otherwise.
func (c *Clusterer) apply(d *Decision, v Verdict) {
	conf := math.Max(0, math.Min(1, v.Confidence))
	if conf < c.cfg.MinAdjudicationConfidence {
		c.fallback(d, NoteLowConfidence)
		return
	}

	d.Merged = v.SameStory
	d.Confidence = int(math.Round(conf * 100))
	d.Reason = v.Reason
	d.Fallback = ""

	if !d.Cached {
		result := "distinct"
		if v.SameStory {
			result = "same"
		}
		metrics.Adjudications.WithLabelValues(result).Inc()
	}
}

// fallback keeps the rule result for d and records why.
func (c *Clusterer) fallback(d *Decision, note string) {
	d.Merged = d.ruleMerge
	d.Confidence = 0
	if d.Merged {
		d.Confidence = ruleConfidence
	}
	d.Reason = note
	d.Fallback = FallbackRuleBased

	label := strings.ReplaceAll(strings.TrimPrefix(note, "adjudication-"), "-", "_")
	metrics.Adjudications.WithLabelValues(label).Inc()
}

func (c *Clusterer) cached(a, b *models.ScoredSignal) (Verdict, bool) {
	if c.cache == nil {
		return Verdict{}, false
	}
	v, ok := c.cache.Get(pairKey(a, b))
	metrics.RecordCacheLookup("verdict", ok)
	return v, ok
}

func (c *Clusterer) remember(a, b *models.ScoredSignal, v Verdict) {
	if c.cache != nil {
		c.cache.Add(pairKey(a, b), v)
	}
}

// build unions merged pairs and assembles clusters.
func (c *Clusterer) build(sorted []models.ScoredSignal, decisions []Decision) Result {
	uf := newUnionFind(len(sorted))
	for i := range decisions {
		if decisions[i].Merged {
			uf.union(decisions[i].i, decisions[i].j)
		}
	}

	minConf := make(map[int]int)
	shared := make(map[int]map[string]struct{})
	for i := range decisions {
		d := &decisions[i]
		if !d.Merged {
			continue
		}
		root := uf.find(d.i)
		if cur, ok := minConf[root]; !ok || d.Confidence < cur {
			minConf[root] = d.Confidence
		}
		if shared[root] == nil {
			shared[root] = make(map[string]struct{})
		}
		for _, t := range d.Shared {
			shared[root][t] = struct{}{}
		}
	}

	// Members are appended in id order because sorted is id-ordered.
	groups := make(map[int][]int)
	var roots []int
	for i := range sorted {
		root := uf.find(i)
		if _, ok := groups[root]; !ok {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], i)
	}

	res := Result{
		Clusters:  make([]models.Cluster, 0, len(roots)),
		Decisions: decisions,
		ClusterOf: make(map[string]string, len(sorted)),
		Notes:     make(map[string][]string),
	}

	for _, root := range roots {
		members := groups[root]
		cl := assemble(sorted, members, shared[root])
		cl.Confidence = singletonConfidence
		if len(members) > 1 {
			cl.Confidence = minConf[root]
		}
		for _, m := range members {
			res.ClusterOf[sorted[m].ID] = cl.ID
		}
		metrics.ClusterSize.Observe(float64(len(members)))
		res.Clusters = append(res.Clusters, cl)
	}

	for i := range decisions {
		note := decisions[i].Note()
		if note == "" {
			continue
		}
		for _, id := range []string{decisions[i].A, decisions[i].B} {
			res.Notes[id] = appendUnique(res.Notes[id], note)
		}
	}

	return res
}

// assemble builds one cluster from member indices in id order.
func assemble(sorted []models.ScoredSignal, members []int, sharedSet map[string]struct{}) models.Cluster {
	ids := make([]string, len(members))
	rep := members[0]
	var earliest, latest *time.Time
	for k, m := range members {
		s := &sorted[m]
		ids[k] = s.ID
		if better(s, &sorted[rep]) {
			rep = m
		}
		if s.HasTimestamp() {
			ts := *s.PublishedAt
			if earliest == nil || ts.Before(*earliest) {
				earliest = &ts
			}
			if latest == nil || ts.After(*latest) {
				latest = &ts
			}
		}
	}

	var anchors []string
	if len(members) > 1 {
		anchors = setToSorted(sharedSet)
	} else {
		anchors = setToSorted(sorted[rep].HighValueTerms())
	}

	representative := sorted[rep]
	return models.Cluster{
		ID:               clusterID(ids),
		Key:              clusterKey(&representative, anchors),
		TopicID:          representative.TopicID,
		MemberIDs:        ids,
		RepresentativeID: representative.ID,
		Earliest:         earliest,
		Latest:           latest,
		SharedAnchors:    anchors,
		Representative:   representative,
	}
}

// better reports whether a should represent a cluster over b: higher
// composite, then earlier timestamp (untimestamped last), then smaller id.
func better(a, b *models.ScoredSignal) bool {
	if a.Composite != b.Composite {
		return a.Composite > b.Composite
	}
	at, bt := a.HasTimestamp(), b.HasTimestamp()
	switch {
	case at && !bt:
		return true
	case !at && bt:
		return false
	case at && bt && !a.PublishedAt.Equal(*b.PublishedAt):
		return a.PublishedAt.Before(*b.PublishedAt)
	}
	return a.ID < b.ID
}

// compatible applies the hard gates: same non-empty topic and timestamps
// within window.
func compatible(a, b *models.ScoredSignal, window time.Duration) bool {
	if a.TopicID == "" || a.TopicID != b.TopicID {
		return false
	}
	if !a.HasTimestamp() || !b.HasTimestamp() {
		return false
	}
	dt := a.PublishedAt.Sub(*b.PublishedAt)
	if dt < 0 {
		dt = -dt
	}
	return dt <= window
}

func noteFor(err error) string {
	if failure.KindOf(err) == failure.KindTimeout || errors.Is(err, context.DeadlineExceeded) {
		return NoteTimeout
	}
	return NoteUnavailable
}

// clusterID is a name-based UUID over the sorted member ids.
func clusterID(sortedIDs []string) string {
	return uuid.NewSHA1(clusterNamespace, []byte(strings.Join(sortedIDs, "\n"))).String()
}

// clusterKey is the topic plus up to three sorted anchors.
func clusterKey(rep *models.ScoredSignal, anchors []string) string {
	topic := rep.TopicID
	if topic == "" {
		topic = "unresolved"
	}
	if len(anchors) == 0 {
		anchors = rep.Terms()
		sort.Strings(anchors)
	}
	if len(anchors) > 3 {
		anchors = anchors[:3]
	}
	return topic + "/" + strings.Join(anchors, "+")
}

// pairKey identifies a pair by ids and text so edited signals are re-asked.
func pairKey(a, b *models.ScoredSignal) string {
	if b.ID < a.ID {
		a, b = b, a
	}
	name := a.ID + "\x00" + a.Text + "\x00" + b.ID + "\x00" + b.Text
	return uuid.NewSHA1(pairNamespace, []byte(name)).String()
}

func intersect(a, b map[string]struct{}) []string {
	if len(b) < len(a) {
		a, b = b, a
	}
	var out []string
	for t := range a {
		if _, ok := b[t]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func setToSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
