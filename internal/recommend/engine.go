// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/storyline/internal/cluster"
	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/scoring"
	"github.com/tomtom215/storyline/internal/validation"
)

const op = "recommend"

// signalNamespace derives ids for signals submitted without one.
var signalNamespace = uuid.MustParse("3a8f5c1e-9b2d-5e47-a6c0-1d4b7e9f2a63")

const maxTitleRunes = 140

// Engine runs the recommendation pipeline. It is safe for concurrent use.
type Engine struct {
	deps   Deps
	config *Config
	clock  func() time.Time
	logger zerolog.Logger
}

// NewEngine creates a recommendation engine. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(deps Deps, cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	switch {
	case deps.Resolver == nil:
		return nil, errors.New("resolver is required")
	case deps.Fit == nil, deps.Urgency == nil, deps.Demand == nil:
		return nil, errors.New("all three axis scorers are required")
	case deps.Clusterer == nil:
		return nil, errors.New("clusterer is required")
	}

	return &Engine{
		deps:   deps,
		config: cfg.Clone(),
		clock:  time.Now,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// WithClock replaces the engine clock used for recency and metadata.
func (e *Engine) WithClock(c func() time.Time) *Engine {
	e.clock = c
	return e
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// params are the resolved request parameters of one run.
type params struct {
	limit     int
	weights   AxisWeights
	window    time.Duration
	pitches   bool
	requestID string
	now       time.Time
}

// job is one valid signal waiting to be scored.
type job struct {
	index  int
	signal models.Signal
}

// scoreResult is the outcome of scoring one signal.
type scoreResult struct {
	started bool
	cutOff  bool
	scored  models.ScoredSignal

	taxAttempted bool
	taxErr       error
	evAttempted  bool
	evErr        error
}

// Recommend runs the pipeline over req. Per-signal problems are reported in
// diagnostics; only a malformed request or an unreachable store fails the run.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	p, err := e.resolveParams(&req)
	if err != nil {
		metrics.RecordPipelineRun("invalid", len(req.Signals), time.Since(start))
		return nil, err
	}

	log := e.logger.With().Str("request_id", p.requestID).Logger()
	outcomes := make([]models.SignalOutcome, len(req.Signals))

	stageStart := time.Now()
	jobs := e.prepare(req.Signals, outcomes)
	metrics.ObserveStage("validate", time.Since(stageStart))

	stageStart = time.Now()
	results := e.scoreAll(ctx, jobs, &p)
	metrics.ObserveStage("score", time.Since(stageStart))

	if err := ctx.Err(); err != nil {
		metrics.RecordPipelineRun("canceled", len(req.Signals), time.Since(start))
		return nil, failure.FromContext(op, err)
	}
	if err := fatalStoreError(results); err != nil {
		metrics.RecordPipelineRun("failed", len(req.Signals), time.Since(start))
		log.Error().Err(err).Msg("store unreachable for the whole run")
		return nil, err
	}

	scored := make([]models.ScoredSignal, 0, len(jobs))
	indexOf := make(map[string]int, len(jobs))
	for k := range jobs {
		r := &results[k]
		out := &outcomes[jobs[k].index]
		switch {
		case !r.started || r.cutOff:
			out.Outcome = models.OutcomeSkipped
			out.Reason = ReasonBatchTimeout
			out.ErrorKind = string(failure.KindTimeout)
		default:
			scored = append(scored, r.scored)
			indexOf[r.scored.ID] = jobs[k].index
			out.Notes = append(out.Notes, degradationNotes(r)...)
		}
	}

	stageStart = time.Now()
	clustered := e.deps.Clusterer.Cluster(ctx, scored, p.window)
	metrics.ObserveStage("cluster", time.Since(stageStart))

	stageStart = time.Now()
	candidates := rank(clustered.Clusters)
	kept := candidates
	if len(kept) > p.limit {
		kept = candidates[:p.limit]
	}
	recs := make([]models.Recommendation, 0, len(kept))
	for i := range kept {
		recs = append(recs, e.recommendation(i+1, &kept[i], &p))
	}
	e.recordOutcomes(outcomes, indexOf, candidates, len(kept), &clustered)
	metrics.ObserveStage("rank", time.Since(stageStart))

	if p.pitches {
		stageStart = time.Now()
		e.generatePitches(ctx, recs)
		metrics.ObserveStage("pitch", time.Since(stageStart))
	}

	diag := diagnostics(outcomes, clustered.Clusters, scored)
	for i := range outcomes {
		metrics.RecordSignalOutcome(string(outcomes[i].Outcome), outcomes[i].ErrorKind)
	}

	latency := time.Since(start)
	metrics.RecordPipelineRun("success", len(req.Signals), latency)

	log.Info().
		Int("signals", len(req.Signals)).
		Int("accepted", diag.Counts.Accepted).
		Int("merged", diag.Counts.Merged).
		Int("rejected", diag.Counts.Rejected).
		Int("skipped", diag.Counts.Skipped).
		Int("recommendations", len(recs)).
		Int("adjudications", clustered.AdjudicationsUsed).
		Dur("latency", latency).
		Msg("recommendation run complete")

	return &Response{
		Recommendations: recs,
		Diagnostics:     diag,
		Metadata: Metadata{
			RequestID:         p.requestID,
			LatencyMS:         latency.Milliseconds(),
			Window:            p.window.String(),
			Weights:           p.weights,
			Limit:             p.limit,
			AdjudicationsUsed: clustered.AdjudicationsUsed,
			GeneratedAt:       p.now.UTC(),
		},
	}, nil
}

// resolveParams validates run-level inputs and fills defaults.
func (e *Engine) resolveParams(req *Request) (params, error) {
	p := params{
		limit:     req.Limit,
		weights:   e.config.Weights,
		window:    req.Window,
		pitches:   req.GeneratePitches,
		requestID: req.RequestID,
		now:       e.clock(),
	}

	if len(req.Signals) == 0 {
		return p, failure.Validation(op, "signals must not be empty")
	}
	if p.limit < 0 {
		return p, failure.Validation(op, "limit must not be negative, got %d", p.limit)
	}
	if p.window < 0 {
		return p, failure.Validation(op, "window must not be negative")
	}
	if req.Weights != nil {
		if err := req.Weights.Validate(); err != nil {
			return p, failure.New(failure.KindValidation, op, err)
		}
		p.weights = *req.Weights
	}

	if p.limit == 0 {
		p.limit = e.config.DefaultLimit
	}
	if p.limit > e.config.MaxLimit {
		p.limit = e.config.MaxLimit
	}
	if p.window == 0 {
		p.window = e.config.DefaultWindow
	}
	if p.requestID == "" {
		p.requestID = uuid.NewString()
	}
	p.weights = p.weights.Normalized()
	return p, nil
}

// prepare validates inputs, assigns ids and extracts anchors. Rejected
// inputs are recorded in outcomes.
func (e *Engine) prepare(inputs []models.SignalInput, outcomes []models.SignalOutcome) []job {
	jobs := make([]job, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for i := range inputs {
		in := &inputs[i]
		out := &outcomes[i]
		out.Index = i
		out.SignalID = in.ID

		if err := validation.ValidateSignal(in); err != nil {
			out.Outcome = models.OutcomeRejected
			out.Reason = validationReason(err)
			out.ErrorKind = string(failure.KindValidation)
			continue
		}

		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = derivedID(in)
		}
		out.SignalID = id

		if _, dup := seen[id]; dup {
			out.Outcome = models.OutcomeRejected
			out.Reason = ReasonDuplicateID
			out.ErrorKind = string(failure.KindValidation)
			continue
		}
		seen[id] = struct{}{}

		sig := models.Signal{
			ID:          id,
			Text:        strings.TrimSpace(in.Text),
			SourceType:  in.SourceType,
			PublishedAt: in.PublishedAt,
			SourceURL:   in.SourceURL,
			SourceName:  in.SourceName,
			Format:      in.Format,
		}
		sig.Anchors = e.deps.Resolver.Anchors(sig.Text)
		jobs = append(jobs, job{index: i, signal: sig})
	}
	return jobs
}

// scoreAll scores jobs on the worker pool under the batch deadline. Results
// are indexed like jobs.
func (e *Engine) scoreAll(ctx context.Context, jobs []job, p *params) []scoreResult {
	results := make([]scoreResult, len(jobs))

	batchCtx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Batch)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(e.config.Workers)
	for k := range jobs {
		if batchCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if batchCtx.Err() != nil {
				return nil
			}
			results[k] = e.scoreSignal(batchCtx, jobs[k].signal, p)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// scoreSignal resolves the topic and scores all three axes.
func (e *Engine) scoreSignal(ctx context.Context, sig models.Signal, p *params) scoreResult {
	res := scoreResult{started: true}
	timeouts := e.config.Timeouts

	res.taxAttempted = len(sig.Terms()) > 0
	tctx, cancel := context.WithTimeout(ctx, timeouts.Taxonomy)
	resolution, err := e.deps.Resolver.Resolve(tctx, &sig)
	cancel()
	if err != nil {
		res.taxErr = err
	}
	sig.TopicID = resolution.TopicID

	var (
		fit       models.FitScore
		demand    models.DemandScore
		fitErr    error
		demandErr error
		eg        errgroup.Group
	)
	eg.Go(func() error {
		ectx, cancel := context.WithTimeout(ctx, timeouts.Evidence)
		defer cancel()
		fit, fitErr = e.deps.Fit.ScoreFit(ectx, sig.TopicID, scoring.EvidenceContext{Now: p.now})
		return nil
	})
	eg.Go(func() error {
		ectx, cancel := context.WithTimeout(ctx, timeouts.Evidence)
		defer cancel()
		demand, demandErr = e.deps.Demand.ScoreDemand(ectx, sig.TopicID, scoring.DemandContext{
			Terms:  sig.Terms(),
			Format: sig.Format,
		})
		return nil
	})
	urgency := e.deps.Urgency.ScoreUrgencyAt(&sig, p.window, p.now)
	_ = eg.Wait()

	res.evAttempted = sig.TopicID != ""
	res.evErr = errors.Join(fitErr, demandErr)

	if sig.SourceType == models.SourceManual && fit.Status != models.FitUnscored && e.config.ManualFitBonus > 0 {
		bonus := math.Min(e.config.ManualFitBonus, 100-fit.Score)
		fit.Score += bonus
		fit.Rationale = append(fit.Rationale, models.EvidenceItem{
			Kind:   models.EvidenceIdentity,
			Detail: "manual trend entry",
			Points: bonus,
		})
	}

	res.scored = models.ScoredSignal{
		Signal:          sig,
		TopicConfidence: resolution.Confidence,
		NeedsReview:     resolution.NeedsReview,
		Fit:             fit,
		Urgency:         urgency,
		Demand:          demand,
		Composite:       composite(p.weights, fit.Score, urgency.Score, demand.Score),
	}

	// A failure caused by the batch deadline means the signal was cut off.
	if ctx.Err() != nil && (res.taxErr != nil || res.evErr != nil) {
		res.cutOff = true
	}
	return res
}

// composite is the weighted sum of the axes with normalized weights.
func composite(w AxisWeights, fit, urgency, demand float64) float64 {
	v := w.Fit*fit + w.Urgency*urgency + w.Demand*demand
	return math.Round(v*100) / 100
}

// fatalStoreError returns a run-level failure when every attempted lookup
// against one store failed as unreachable. Timeouts and other kinds only
// degrade the signals they hit.
func fatalStoreError(results []scoreResult) error {
	var (
		taxAttempted, taxFailed int
		evAttempted, evFailed   int
		taxErr, evErr           error
	)
	for i := range results {
		r := &results[i]
		if !r.started || r.cutOff {
			continue
		}
		if r.taxAttempted {
			taxAttempted++
			if failure.Is(r.taxErr, failure.KindDependencyUnavailable) {
				taxFailed++
				taxErr = r.taxErr
			}
		}
		if r.evAttempted {
			evAttempted++
			if failure.Is(r.evErr, failure.KindDependencyUnavailable) {
				evFailed++
				evErr = r.evErr
			}
		}
	}

	if taxAttempted > 0 && taxFailed == taxAttempted {
		return failure.Unavailable(op, fmt.Errorf("taxonomy store unreachable: %w", taxErr))
	}
	if evAttempted > 0 && evFailed == evAttempted {
		return failure.Unavailable(op, fmt.Errorf("evidence store unreachable: %w", evErr))
	}
	return nil
}

// degradationNotes labels absorbed store failures on a scored signal.
func degradationNotes(r *scoreResult) []string {
	var notes []string
	if r.taxErr != nil {
		notes = append(notes, "taxonomy-lookup-failed: "+string(failure.KindOf(r.taxErr)))
	}
	if r.evErr != nil {
		notes = append(notes, "evidence-lookup-failed: "+string(failure.KindOf(r.evErr)))
	}
	return notes
}

// rank orders clusters by composite desc, urgency desc, latest timestamp
// desc (none is oldest), then cluster id.
func rank(clusters []models.Cluster) []models.Cluster {
	out := append([]models.Cluster(nil), clusters...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := &out[i], &out[j]
		ra, rb := &a.Representative, &b.Representative
		if ra.Composite != rb.Composite {
			return ra.Composite > rb.Composite
		}
		if ra.Urgency.Score != rb.Urgency.Score {
			return ra.Urgency.Score > rb.Urgency.Score
		}
		switch {
		case a.Latest != nil && b.Latest == nil:
			return true
		case a.Latest == nil && b.Latest != nil:
			return false
		case a.Latest != nil && !a.Latest.Equal(*b.Latest):
			return a.Latest.After(*b.Latest)
		}
		return a.ID < b.ID
	})
	return out
}

func (e *Engine) recommendation(rank int, cl *models.Cluster, p *params) models.Recommendation {
	rep := &cl.Representative
	status := models.PitchNotRequested
	if p.pitches {
		status = models.PitchDisabled
	}
	return models.Recommendation{
		Rank:             rank,
		ClusterID:        cl.ID,
		ClusterKey:       cl.Key,
		RepresentativeID: rep.ID,
		Title:            title(rep.Text),
		TopicID:          rep.TopicID,
		SourceURL:        rep.SourceURL,
		Composite:        rep.Composite,
		Axes: models.AxisBreakdown{
			Fit:       rep.Fit.Score,
			FitStatus: rep.Fit.Status,
			Urgency:   rep.Urgency.Score,
			Demand:    rep.Demand.Score,
		},
		UrgencyTier: rep.Urgency.Tier,
		Verdict:     models.VerdictFor(rep.Composite),
		MemberIDs:   append([]string(nil), cl.MemberIDs...),
		Evidence:    append([]models.EvidenceItem(nil), rep.Fit.Rationale...),
		PitchStatus: status,
	}
}

// recordOutcomes fills outcomes for every scored signal. The first kept
// clusters of candidates are recommended; the rest ranked below the limit.
func (e *Engine) recordOutcomes(outcomes []models.SignalOutcome, indexOf map[string]int, candidates []models.Cluster, kept int, res *cluster.Result) {
	for c := range candidates {
		cl := &candidates[c]
		for _, id := range cl.MemberIDs {
			idx, ok := indexOf[id]
			if !ok {
				continue
			}
			out := &outcomes[idx]
			out.ClusterID = cl.ID
			out.Notes = append(out.Notes, res.Notes[id]...)

			switch {
			case c >= kept:
				out.Outcome = models.OutcomeRejected
				out.Reason = ReasonRankedBelowLimit
			case id == cl.RepresentativeID:
				out.Outcome = models.OutcomeAccepted
			default:
				out.Outcome = models.OutcomeMerged
				out.MergedInto = cl.RepresentativeID
			}
		}
	}
}

// generatePitches fills pitches in place with bounded concurrency. A failed
// pitch never removes a recommendation.
func (e *Engine) generatePitches(ctx context.Context, recs []models.Recommendation) {
	if e.deps.Pitcher == nil || !e.config.PitchesEnabled {
		return
	}

	var g errgroup.Group
	g.SetLimit(e.config.PitchWorkers)
	for i := range recs {
		g.Go(func() error {
			rec := &recs[i]
			pctx, cancel := context.WithTimeout(ctx, e.config.Timeouts.Pitch)
			defer cancel()

			pitch, err := e.deps.Pitcher.Generate(pctx, *rec)
			if err != nil {
				rec.PitchStatus = models.PitchFailed
				metrics.PitchGenerations.WithLabelValues(string(failure.KindOf(err))).Inc()
				e.logger.Warn().Err(err).Str("cluster_id", rec.ClusterID).Msg("pitch generation failed")
				return nil
			}
			rec.Pitch = pitch
			rec.PitchStatus = models.PitchGenerated
			metrics.PitchGenerations.WithLabelValues("generated").Inc()
			return nil
		})
	}
	_ = g.Wait()
}

func diagnostics(outcomes []models.SignalOutcome, clusters []models.Cluster, scored []models.ScoredSignal) models.Diagnostics {
	d := models.Diagnostics{Signals: outcomes}
	for i := range outcomes {
		switch outcomes[i].Outcome {
		case models.OutcomeAccepted:
			d.Counts.Accepted++
		case models.OutcomeMerged:
			d.Counts.Merged++
		case models.OutcomeRejected:
			d.Counts.Rejected++
		case models.OutcomeSkipped:
			d.Counts.Skipped++
		}
	}
	for i := range clusters {
		if clusters[i].Size() > 1 {
			d.MultiMemberClusters++
		}
	}
	for i := range scored {
		if scored[i].TopicID == "" {
			d.Unresolved++
		}
	}
	return d
}

// derivedID is a name-based id over source type and text.
func derivedID(in *models.SignalInput) string {
	name := string(in.SourceType) + "\x00" + strings.TrimSpace(in.Text)
	return uuid.NewSHA1(signalNamespace, []byte(name)).String()
}

// validationReason strips the failure wrapper from a validation error.
func validationReason(err error) string {
	var fe *failure.Error
	if errors.As(err, &fe) && fe.Err != nil {
		return fe.Err.Error()
	}
	return err.Error()
}

// title is the first line of text, shortened to a headline.
func title(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= maxTitleRunes {
		return line
	}
	runes := []rune(line)
	return strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
}
