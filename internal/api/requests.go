// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/models"
	"github.com/tomtom215/storyline/internal/recommend"
	"github.com/tomtom215/storyline/internal/validation"
)

// RecommendationRequest is the body of POST /api/v1/recommendations.
// Signals are validated one by one by the engine so a bad item never
// rejects the whole request.
type RecommendationRequest struct {
	Signals         []models.SignalInput   `json:"signals"`
	Feeds           []string               `json:"feeds" validate:"max=20,dive,url"`
	Limit           int                    `json:"limit"`
	Weights         *recommend.AxisWeights `json:"weights,omitempty"`
	WindowHours     float64                `json:"window_hours" validate:"gte=0,lte=720"`
	GeneratePitches bool                   `json:"generate_pitches"`
}

// window converts WindowHours; zero keeps the engine default.
func (req *RecommendationRequest) window() time.Duration {
	return time.Duration(req.WindowHours * float64(time.Hour))
}

// RecommendationResult is the data payload of a recommendation response.
type RecommendationResult struct {
	*recommend.Response
	// FeedErrors maps a feed URL to the reason it produced nothing.
	FeedErrors map[string]string `json:"feed_errors,omitempty"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, op string, dst interface{}) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge{limit: maxErr.Limit}
		}
		return failure.Validation(op, "failed to read request body: %v", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return failure.Validation(op, "request body is empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return failure.Validation(op, "invalid JSON body: %v", err)
	}
	if dec.More() {
		return failure.Validation(op, "request body must contain a single JSON object")
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr.Failure(op)
	}
	return nil
}

type errBodyTooLarge struct {
	limit int64
}

func (e errBodyTooLarge) Error() string {
	return fmt.Sprintf("request body exceeds %d bytes", e.limit)
}
