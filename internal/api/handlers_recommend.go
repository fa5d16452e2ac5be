// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/logging"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/recommend"
	"github.com/tomtom215/storyline/internal/taxonomy"
)

// Recommendations handles POST /api/v1/recommendations.
//
// Signals come from the body, from the listed feeds, or from the configured
// default feeds when the body names neither.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	const op = "api.recommendations"
	start := time.Now()

	var req RecommendationRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, op, &req); err != nil {
		h.respondDecodeError(w, r, err)
		return
	}

	signals := req.Signals
	feeds := req.Feeds
	if len(signals) == 0 && len(feeds) == 0 {
		feeds = h.defaultFeeds
	}

	var feedErrors map[string]string
	if len(feeds) > 0 {
		if h.feeds == nil {
			respondFailure(w, r, failure.Unavailable(op, errors.New("feed ingestion is not configured")))
			return
		}
		batch := h.feeds.FetchAll(r.Context(), feeds)
		feedErrors = batch.Failed
		signals = append(append([]models.SignalInput(nil), signals...), batch.Signals...)

		if len(signals) == 0 && len(feedErrors) == len(feeds) {
			respondError(w, r, http.StatusServiceUnavailable, ErrCodeUnavailable, ErrNoFeedsFetched.Error(),
				map[string]interface{}{"feed_errors": feedErrors})
			return
		}
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		Signals:         signals,
		Limit:           req.Limit,
		Weights:         req.Weights,
		Window:          req.window(),
		GeneratePitches: req.GeneratePitches,
		RequestID:       logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, RecommendationResult{Response: resp, FeedErrors: feedErrors}, start)
}

// TaxonomyFeedback handles POST /api/v1/taxonomy/feedback.
func (h *Handler) TaxonomyFeedback(w http.ResponseWriter, r *http.Request) {
	const op = "api.taxonomy_feedback"
	start := time.Now()

	if h.learner == nil {
		respondFailure(w, r, failure.New(failure.KindValidation, op, taxonomy.ErrLearningDisabled))
		return
	}

	var fb taxonomy.Feedback
	if err := decodeJSON(w, r, h.maxBodyBytes, op, &fb); err != nil {
		h.respondDecodeError(w, r, err)
		return
	}

	result, err := h.learner.Apply(r.Context(), fb)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	respondSuccess(w, r, http.StatusOK, result, start)
}

func (h *Handler) respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge errBodyTooLarge
	if errors.As(err, &tooLarge) {
		respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge, err.Error(), nil)
		return
	}
	respondFailure(w, r, err)
}
