// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package recommend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storyline/internal/cluster"
	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/scoring"
	"github.com/tomtom215/storyline/internal/store"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func hoursAgo(h float64) *time.Time {
	ts := testNow.Add(-time.Duration(h * float64(time.Hour)))
	return &ts
}

func testTopics() []models.TaxonomyEntry {
	return []models.TaxonomyEntry{
		{
			ID:   "us-politics",
			Name: "US Politics",
			Keywords: []models.Keyword{
				{Term: "election", Class: models.KeywordTopicSpecific, Weight: 1},
				{Term: "incumbent", Class: models.KeywordTopicSpecific, Weight: 1},
			},
		},
		{
			ID:   "trade-wars",
			Name: "Trade Wars",
			Keywords: []models.Keyword{
				{Term: "tariffs", Class: models.KeywordTopicSpecific, Weight: 1},
			},
		},
	}
}

// testSetup overrides parts of the default engine wiring.
type testSetup struct {
	taxonomy taxonomy.Store
	evidence scoring.EvidenceStore
	config   *Config
	fit       FitScorer
	pitcher   PitchGenerator
	clusterer Clusterer
}

func newTestEngine(t *testing.T, setup testSetup) *Engine {
	t.Helper()

	if setup.taxonomy == nil {
		setup.taxonomy = store.NewMemoryTaxonomyStore(testTopics()...)
	}
	if setup.evidence == nil {
		setup.evidence = store.NewMemoryEvidenceStore()
	}

	resolver, err := taxonomy.NewResolver(setup.taxonomy, taxonomy.DefaultResolverConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	fit, err := scoring.NewEvidenceScorer(setup.evidence, scoring.DefaultEvidenceConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEvidenceScorer() error = %v", err)
	}
	urgency, err := scoring.NewUrgencyScorer(scoring.DefaultUrgencyConfig())
	if err != nil {
		t.Fatalf("NewUrgencyScorer() error = %v", err)
	}
	demand, err := scoring.NewDemandScorer(setup.evidence, scoring.DefaultDemandConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDemandScorer() error = %v", err)
	}
	clusterer, err := cluster.New(cluster.DefaultConfig(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("cluster.New() error = %v", err)
	}

	deps := Deps{
		Resolver:  resolver,
		Fit:       fit,
		Urgency:   urgency,
		Demand:    demand,
		Clusterer: clusterer,
		Pitcher:   setup.pitcher,
	}
	if setup.fit != nil {
		deps.Fit = setup.fit
	}
	if setup.clusterer != nil {
		deps.Clusterer = setup.clusterer
	}

	engine, err := NewEngine(deps, setup.config, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine.WithClock(func() time.Time { return testNow })
}

// failingTaxonomy fails every candidate lookup whose terms include failOn.
// An empty failOn fails them all. err defaults to an unreachable store.
type failingTaxonomy struct {
	*store.MemoryTaxonomyStore
	failOn string
	err    error
}

func (f *failingTaxonomy) FindCandidates(ctx context.Context, terms []string) ([]models.TaxonomyEntry, error) {
	if f.failOn == "" || slices.Contains(terms, f.failOn) {
		if f.err != nil {
			return nil, f.err
		}
		return nil, failure.Unavailable("find candidates", errors.New("connection refused"))
	}
	return f.MemoryTaxonomyStore.FindCandidates(ctx, terms)
}

type failingEvidence struct{}

func (failingEvidence) GetEvidence(context.Context, string) ([]models.EvidenceRecord, error) {
	return nil, failure.Unavailable("get evidence", errors.New("database is locked"))
}

// timeoutAdjudicator reports a deadline for every pair.
type timeoutAdjudicator struct {
	calls atomic.Int32
}

func (a *timeoutAdjudicator) SameStory(context.Context, models.ScoredSignal, models.ScoredSignal, []string) (cluster.Verdict, error) {
	a.calls.Add(1)
	return cluster.Verdict{}, failure.Timeout("adjudicate", context.DeadlineExceeded)
}

// blockingFit waits for its context to end.
type blockingFit struct {
	calls atomic.Int32
}

func (b *blockingFit) ScoreFit(ctx context.Context, _ string, _ scoring.EvidenceContext) (models.FitScore, error) {
	b.calls.Add(1)
	<-ctx.Done()
	return models.FitScore{Status: models.FitUnscored}, failure.FromContext("fit", ctx.Err())
}

// stubPitcher fails for the representatives listed in fail.
type stubPitcher struct {
	fail  map[string]bool
	calls atomic.Int32
}

func (p *stubPitcher) Generate(_ context.Context, rec models.Recommendation) (string, error) {
	p.calls.Add(1)
	if p.fail[rec.RepresentativeID] {
		return "", failure.Unavailable("pitch", errors.New("provider overloaded"))
	}
	return "Pitch for " + rec.Title, nil
}

func outcomeByID(t *testing.T, resp *Response, id string) models.SignalOutcome {
	t.Helper()
	for _, o := range resp.Diagnostics.Signals {
		if o.SignalID == id {
			return o
		}
	}
	t.Fatalf("no outcome for signal %q", id)
	return models.SignalOutcome{}
}

func TestRecommend_ClustersSameStory(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "fresh", Text: "Incumbent concedes the election after recount", SourceType: models.SourceRSS, PublishedAt: hoursAgo(1)},
			{ID: "older", Text: "Election recount begins as incumbent trails", SourceType: models.SourceRSS, PublishedAt: hoursAgo(30)},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(resp.Recommendations))
	}
	rec := resp.Recommendations[0]
	if rec.RepresentativeID != "fresh" {
		t.Errorf("representative = %q, want fresh", rec.RepresentativeID)
	}
	if rec.TopicID != "us-politics" {
		t.Errorf("topic = %q, want us-politics", rec.TopicID)
	}
	if len(rec.MemberIDs) != 2 {
		t.Errorf("members = %v, want both signals", rec.MemberIDs)
	}

	older := outcomeByID(t, resp, "older")
	if older.Outcome != models.OutcomeMerged || older.MergedInto != "fresh" {
		t.Errorf("older outcome = %+v, want merged into fresh", older)
	}
	if older.ClusterID != rec.ClusterID {
		t.Errorf("older cluster = %q, want %q", older.ClusterID, rec.ClusterID)
	}
	if got := outcomeByID(t, resp, "fresh").Outcome; got != models.OutcomeAccepted {
		t.Errorf("fresh outcome = %s, want accepted", got)
	}
	if resp.Diagnostics.MultiMemberClusters != 1 {
		t.Errorf("multi-member clusters = %d, want 1", resp.Diagnostics.MultiMemberClusters)
	}
}

func TestRecommend_ManualTrendWithoutTimestamp(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{Text: "Greenland purchase talk resurfaces", SourceType: models.SourceManual},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(resp.Recommendations))
	}

	rec := resp.Recommendations[0]
	if rec.Axes.Urgency != 20 {
		t.Errorf("urgency = %v, want the default low score 20", rec.Axes.Urgency)
	}
	if rec.UrgencyTier != models.TierBacklog {
		t.Errorf("tier = %s, want backlog", rec.UrgencyTier)
	}
	if rec.RepresentativeID == "" {
		t.Error("missing id was not assigned")
	}
}

func TestRecommend_InvalidSignalDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	signals := make([]models.SignalInput, 0, 10)
	for i := 0; i < 9; i++ {
		signals = append(signals, models.SignalInput{
			ID:         fmt.Sprintf("s%d", i),
			Text:       fmt.Sprintf("Sourdough starter tips part %d", i),
			SourceType: models.SourceBehavior,
		})
	}
	signals = append(signals[:4], append([]models.SignalInput{{ID: "blank", Text: "   ", SourceType: models.SourceRSS}}, signals[4:]...)...)

	engine := newTestEngine(t, testSetup{})
	resp, err := engine.Recommend(context.Background(), Request{Signals: signals})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if len(resp.Recommendations) != 9 {
		t.Errorf("got %d recommendations, want 9", len(resp.Recommendations))
	}
	if len(resp.Diagnostics.Signals) != 10 {
		t.Fatalf("got %d outcomes, want one per input", len(resp.Diagnostics.Signals))
	}

	blank := resp.Diagnostics.Signals[4]
	if blank.Index != 4 || blank.SignalID != "blank" {
		t.Errorf("outcome 4 = %+v, want the blank input", blank)
	}
	if blank.Outcome != models.OutcomeRejected || blank.ErrorKind != string(failure.KindValidation) {
		t.Errorf("blank outcome = %s/%s, want rejected/validation", blank.Outcome, blank.ErrorKind)
	}
	if resp.Diagnostics.Counts.Rejected != 1 || resp.Diagnostics.Counts.Accepted != 9 {
		t.Errorf("counts = %+v", resp.Diagnostics.Counts)
	}
	if resp.Diagnostics.Unresolved != 9 {
		t.Errorf("unresolved = %d, want 9", resp.Diagnostics.Unresolved)
	}
	for i, rec := range resp.Recommendations {
		if rec.Rank != i+1 {
			t.Errorf("recommendation %d has rank %d", i, rec.Rank)
		}
		if rec.Axes.FitStatus != models.FitUnscored {
			t.Errorf("%s fit status = %s, want unscored", rec.RepresentativeID, rec.Axes.FitStatus)
		}
	}
}

func TestRecommend_DuplicateIDs(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "x", Text: "First take", SourceType: models.SourceRSS},
			{ID: "x", Text: "Second take", SourceType: models.SourceRSS},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	second := resp.Diagnostics.Signals[1]
	if second.Outcome != models.OutcomeRejected || second.Reason != ReasonDuplicateID {
		t.Errorf("second outcome = %s (%s), want rejected duplicate-id", second.Outcome, second.Reason)
	}
	if len(resp.Recommendations) != 1 {
		t.Errorf("got %d recommendations, want 1", len(resp.Recommendations))
	}
}

func TestRecommend_DerivedIDsAreDeterministic(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	req := Request{Signals: []models.SignalInput{{Text: "Fermentation basics", SourceType: models.SourceManual}}}

	first, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	second, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if a, b := first.Diagnostics.Signals[0].SignalID, second.Diagnostics.Signals[0].SignalID; a == "" || a != b {
		t.Errorf("derived ids %q and %q, want equal and non-empty", a, b)
	}
}

func TestRecommend_RunLevelValidation(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	valid := []models.SignalInput{{Text: "Anything", SourceType: models.SourceRSS}}

	tests := []struct {
		name string
		req  Request
	}{
		{"nil signals", Request{}},
		{"empty signals", Request{Signals: []models.SignalInput{}}},
		{"negative limit", Request{Signals: valid, Limit: -1}},
		{"negative window", Request{Signals: valid, Window: -time.Hour}},
		{"negative weight", Request{Signals: valid, Weights: &AxisWeights{Fit: -0.1, Urgency: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := engine.Recommend(context.Background(), tt.req)
			if !failure.Is(err, failure.KindValidation) {
				t.Errorf("Recommend() error = %v, want validation", err)
			}
		})
	}
}

func TestRecommend_LimitCappedAndRankedBelowLimit(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	signals := []models.SignalInput{
		{ID: "a", Text: "Kimchi at home", SourceType: models.SourceRSS, PublishedAt: hoursAgo(1)},
		{ID: "b", Text: "Miso from scratch", SourceType: models.SourceRSS, PublishedAt: hoursAgo(20)},
		{ID: "c", Text: "Kombucha myths", SourceType: models.SourceRSS, PublishedAt: hoursAgo(50)},
	}

	resp, err := engine.Recommend(context.Background(), Request{Signals: signals, Limit: 1})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].RepresentativeID != "a" {
		t.Fatalf("recommendations = %+v, want only a", resp.Recommendations)
	}
	for _, id := range []string{"b", "c"} {
		o := outcomeByID(t, resp, id)
		if o.Outcome != models.OutcomeRejected || o.Reason != ReasonRankedBelowLimit {
			t.Errorf("%s outcome = %s (%s), want ranked-below-limit", id, o.Outcome, o.Reason)
		}
	}

	resp, err = engine.Recommend(context.Background(), Request{Signals: signals, Limit: 500})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Limit != DefaultConfig().MaxLimit {
		t.Errorf("limit = %d, want capped at %d", resp.Metadata.Limit, DefaultConfig().MaxLimit)
	}
	if len(resp.Recommendations) != 3 {
		t.Errorf("got %d recommendations, want 3", len(resp.Recommendations))
	}
}

func TestRecommend_ManualFitBonus(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "manual", Text: "Incumbent election strategy explained", SourceType: models.SourceManual},
			{ID: "feed", Text: "Incumbent election strategy explained", SourceType: models.SourceRSS},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	fits := make(map[string]models.AxisBreakdown)
	for _, rec := range resp.Recommendations {
		fits[rec.RepresentativeID] = rec.Axes
	}
	manual, feed := fits["manual"], fits["feed"]
	if feed.FitStatus != models.FitNoEvidence {
		t.Fatalf("feed fit status = %s, want no-evidence", feed.FitStatus)
	}
	if manual.Fit != feed.Fit+DefaultConfig().ManualFitBonus {
		t.Errorf("manual fit = %v, want %v + bonus", manual.Fit, feed.Fit)
	}
}

func TestRecommend_TopicStoreFailureDegradesSignal(t *testing.T) {
	t.Parallel()

	tax := &failingTaxonomy{MemoryTaxonomyStore: store.NewMemoryTaxonomyStore(testTopics()...), failOn: "tariffs"}
	engine := newTestEngine(t, testSetup{taxonomy: tax})

	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "trade", Text: "New tariffs announced overnight", SourceType: models.SourceRSS, PublishedAt: hoursAgo(2)},
			{ID: "vote", Text: "Incumbent wins the election", SourceType: models.SourceRSS, PublishedAt: hoursAgo(2)},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
	}

	for _, rec := range resp.Recommendations {
		if rec.RepresentativeID == "trade" && rec.Axes.FitStatus != models.FitUnscored {
			t.Errorf("trade fit status = %s, want unscored", rec.Axes.FitStatus)
		}
	}
	trade := outcomeByID(t, resp, "trade")
	if trade.Outcome != models.OutcomeAccepted {
		t.Errorf("trade outcome = %s, want accepted", trade.Outcome)
	}
	want := "taxonomy-lookup-failed: " + string(failure.KindDependencyUnavailable)
	if !slices.Contains(trade.Notes, want) {
		t.Errorf("trade notes = %v, want %q", trade.Notes, want)
	}
}

func TestRecommend_StoreUnreachableFailsRun(t *testing.T) {
	t.Parallel()

	signals := []models.SignalInput{
		{Text: "Incumbent wins the election", SourceType: models.SourceRSS},
		{Text: "Tariffs expand to steel", SourceType: models.SourceRSS},
	}

	tests := []struct {
		name  string
		setup testSetup
	}{
		{
			name: "taxonomy",
			setup: testSetup{taxonomy: &failingTaxonomy{
				MemoryTaxonomyStore: store.NewMemoryTaxonomyStore(testTopics()...),
			}},
		},
		{
			name:  "evidence",
			setup: testSetup{evidence: failingEvidence{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := newTestEngine(t, tt.setup)
			_, err := engine.Recommend(context.Background(), Request{Signals: signals})
			if !failure.Is(err, failure.KindDependencyUnavailable) {
				t.Fatalf("Recommend() error = %v, want dependency_unavailable", err)
			}
			if !strings.Contains(err.Error(), tt.name+" store unreachable") {
				t.Errorf("error %q does not name the %s store", err, tt.name)
			}
		})
	}
}

func TestRecommend_TaxonomyTimeoutsDegradeWithoutFailingRun(t *testing.T) {
	t.Parallel()

	tax := &failingTaxonomy{
		MemoryTaxonomyStore: store.NewMemoryTaxonomyStore(testTopics()...),
		err:                 failure.Timeout("find candidates", context.DeadlineExceeded),
	}
	engine := newTestEngine(t, testSetup{taxonomy: tax})

	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "vote", Text: "Incumbent wins the election", SourceType: models.SourceRSS, PublishedAt: hoursAgo(2)},
			{ID: "trade", Text: "Tariffs expand to steel", SourceType: models.SourceRSS, PublishedAt: hoursAgo(3)},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v, want degraded success", err)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
	}
	for _, rec := range resp.Recommendations {
		if rec.Axes.FitStatus != models.FitUnscored {
			t.Errorf("%s fit status = %s, want unscored", rec.RepresentativeID, rec.Axes.FitStatus)
		}
	}

	want := "taxonomy-lookup-failed: " + string(failure.KindTimeout)
	for _, id := range []string{"vote", "trade"} {
		out := outcomeByID(t, resp, id)
		if out.Outcome != models.OutcomeAccepted {
			t.Errorf("%s outcome = %s, want accepted", id, out.Outcome)
		}
		if !slices.Contains(out.Notes, want) {
			t.Errorf("%s notes = %v, want %q", id, out.Notes, want)
		}
	}
}

func TestRecommend_AdjudicationTimeoutNotedOnBothSignals(t *testing.T) {
	t.Parallel()

	adj := &timeoutAdjudicator{}
	clusterer, err := cluster.New(cluster.DefaultConfig(), adj, zerolog.Nop())
	if err != nil {
		t.Fatalf("cluster.New() error = %v", err)
	}
	engine := newTestEngine(t, testSetup{clusterer: clusterer})

	// The pair shares only "election", which is one anchor short of a rule merge.
	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "polls", Text: "Polls open in the election", SourceType: models.SourceRSS, PublishedAt: hoursAgo(1)},
			{ID: "night", Text: "Election night coverage begins", SourceType: models.SourceRSS, PublishedAt: hoursAgo(2)},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if adj.calls.Load() != 1 {
		t.Fatalf("adjudicator calls = %d, want 1", adj.calls.Load())
	}

	polls := outcomeByID(t, resp, "polls")
	night := outcomeByID(t, resp, "night")
	if polls.ClusterID == night.ClusterID {
		t.Errorf("both signals in cluster %s, want separate clusters", polls.ClusterID)
	}
	want := cluster.NoteTimeout + ", fallback=" + cluster.FallbackRuleBased
	for _, out := range []models.SignalOutcome{polls, night} {
		if !slices.Contains(out.Notes, want) {
			t.Errorf("%s notes = %v, want %q", out.SignalID, out.Notes, want)
		}
		if out.Outcome != models.OutcomeAccepted {
			t.Errorf("%s outcome = %s, want accepted", out.SignalID, out.Outcome)
		}
	}
	if len(resp.Recommendations) != 2 {
		t.Errorf("got %d recommendations, want 2", len(resp.Recommendations))
	}
}

func TestRecommend_BatchTimeoutSkipsSignals(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Workers = 1
	cfg.Timeouts.Batch = 50 * time.Millisecond
	fit := &blockingFit{}
	engine := newTestEngine(t, testSetup{config: cfg, fit: fit})

	resp, err := engine.Recommend(context.Background(), Request{
		Signals: []models.SignalInput{
			{ID: "a", Text: "First", SourceType: models.SourceRSS},
			{ID: "b", Text: "Second", SourceType: models.SourceRSS},
			{ID: "c", Text: "Third", SourceType: models.SourceRSS},
		},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Errorf("got %d recommendations, want none", len(resp.Recommendations))
	}
	if resp.Diagnostics.Counts.Skipped != 3 {
		t.Fatalf("skipped = %d, want 3", resp.Diagnostics.Counts.Skipped)
	}
	for _, o := range resp.Diagnostics.Signals {
		if o.Reason != ReasonBatchTimeout || o.ErrorKind != string(failure.KindTimeout) {
			t.Errorf("%s outcome = %s/%s, want batch-timeout/timeout", o.SignalID, o.Reason, o.ErrorKind)
		}
	}
	if n := fit.calls.Load(); n != 1 {
		t.Errorf("fit scorer called %d times, want 1", n)
	}
}

func TestRecommend_CanceledContext(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Recommend(ctx, Request{Signals: []models.SignalInput{{Text: "x", SourceType: models.SourceRSS}}})
	if err == nil {
		t.Fatal("Recommend() error = nil, want a context failure")
	}
}

func TestRecommend_Pitches(t *testing.T) {
	t.Parallel()

	signals := []models.SignalInput{
		{ID: "a", Text: "Kimchi at home", SourceType: models.SourceRSS, PublishedAt: hoursAgo(1)},
		{ID: "b", Text: "Miso from scratch", SourceType: models.SourceRSS, PublishedAt: hoursAgo(20)},
	}

	t.Run("failure keeps recommendation", func(t *testing.T) {
		t.Parallel()
		pitcher := &stubPitcher{fail: map[string]bool{"b": true}}
		engine := newTestEngine(t, testSetup{pitcher: pitcher})

		resp, err := engine.Recommend(context.Background(), Request{Signals: signals, GeneratePitches: true})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(resp.Recommendations) != 2 {
			t.Fatalf("got %d recommendations, want 2", len(resp.Recommendations))
		}
		for _, rec := range resp.Recommendations {
			switch rec.RepresentativeID {
			case "a":
				if rec.PitchStatus != models.PitchGenerated || rec.Pitch == "" {
					t.Errorf("a pitch = %q (%s), want generated", rec.Pitch, rec.PitchStatus)
				}
			case "b":
				if rec.PitchStatus != models.PitchFailed || rec.Pitch != "" {
					t.Errorf("b pitch = %q (%s), want failed", rec.Pitch, rec.PitchStatus)
				}
			}
		}
	})

	t.Run("not requested", func(t *testing.T) {
		t.Parallel()
		pitcher := &stubPitcher{}
		engine := newTestEngine(t, testSetup{pitcher: pitcher})

		resp, err := engine.Recommend(context.Background(), Request{Signals: signals})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if got := resp.Recommendations[0].PitchStatus; got != models.PitchNotRequested {
			t.Errorf("pitch status = %s, want not_requested", got)
		}
		if n := pitcher.calls.Load(); n != 0 {
			t.Errorf("pitcher called %d times, want 0", n)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.PitchesEnabled = false
		engine := newTestEngine(t, testSetup{config: cfg, pitcher: &stubPitcher{}})

		resp, err := engine.Recommend(context.Background(), Request{Signals: signals, GeneratePitches: true})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if got := resp.Recommendations[0].PitchStatus; got != models.PitchDisabled {
			t.Errorf("pitch status = %s, want disabled", got)
		}
	})
}

func TestRecommend_Metadata(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, testSetup{})
	resp, err := engine.Recommend(context.Background(), Request{
		Signals:   []models.SignalInput{{Text: "Pickling guide", SourceType: models.SourceRSS}},
		Window:    48 * time.Hour,
		Weights:   &AxisWeights{},
		RequestID: "req-1",
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	md := resp.Metadata
	if md.RequestID != "req-1" {
		t.Errorf("request id = %q", md.RequestID)
	}
	if md.Window != "48h0m0s" {
		t.Errorf("window = %q, want 48h0m0s", md.Window)
	}
	if md.Weights.Fit != 1.0/3 || md.Weights.Urgency != 1.0/3 {
		t.Errorf("weights = %+v, want equal thirds", md.Weights)
	}
	if !md.GeneratedAt.Equal(testNow) {
		t.Errorf("generated at = %v, want %v", md.GeneratedAt, testNow)
	}
}

func TestComposite_Monotonic(t *testing.T) {
	t.Parallel()

	weights := []AxisWeights{
		DefaultConfig().Weights.Normalized(),
		AxisWeights{}.Normalized(),
		AxisWeights{Fit: 1}.Normalized(),
		AxisWeights{Urgency: 2, Demand: 1}.Normalized(),
	}
	bump := []func(f, u, d float64) (float64, float64, float64){
		func(f, u, d float64) (float64, float64, float64) { return f + 10, u, d },
		func(f, u, d float64) (float64, float64, float64) { return f, u + 10, d },
		func(f, u, d float64) (float64, float64, float64) { return f, u, d + 10 },
	}

	for _, w := range weights {
		for f := 0.0; f <= 90; f += 30 {
			for u := 0.0; u <= 90; u += 30 {
				for d := 0.0; d <= 90; d += 30 {
					base := composite(w, f, u, d)
					for _, b := range bump {
						bf, bu, bd := b(f, u, d)
						if got := composite(w, bf, bu, bd); got < base {
							t.Errorf("composite(%+v) decreased from %v to %v", w, base, got)
						}
					}
				}
			}
		}
	}
}

func TestRank(t *testing.T) {
	t.Parallel()

	mk := func(id string, comp, urg float64, latest *time.Time) models.Cluster {
		return models.Cluster{
			ID:     id,
			Latest: latest,
			Representative: models.ScoredSignal{
				Composite: comp,
				Urgency:   models.UrgencyScore{Score: urg},
			},
		}
	}

	got := rank([]models.Cluster{
		mk("e", 50, 10, nil),
		mk("d", 50, 10, hoursAgo(5)),
		mk("c", 50, 10, hoursAgo(1)),
		mk("b", 50, 40, nil),
		mk("a", 80, 0, nil),
		mk("f", 50, 10, nil),
	})

	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	want := []string{"a", "b", "c", "d", "e", "f"}
	if !slices.Equal(ids, want) {
		t.Errorf("rank order = %v, want %v", ids, want)
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 60)
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first line", "Headline here\nbody text", "Headline here"},
		{"trimmed", "  padded  ", "padded"},
		{"truncated", long, strings.TrimSpace(long[:maxTitleRunes]) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := title(tt.text); got != tt.want {
				t.Errorf("title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewEngine_RequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(Deps{}, nil, zerolog.Nop()); err == nil {
		t.Error("NewEngine() with no deps error = nil")
	}
}
