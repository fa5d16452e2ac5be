// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/storyline/internal/failure"
	"github.com/tomtom215/storyline/internal/taxonomy"
	"github.com/tomtom215/storyline/internal/validation"
)

// Error codes for API responses
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnavailable     = "DEPENDENCY_UNAVAILABLE"
	ErrCodeTimeout         = "TIMEOUT"
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBodyTooLarge    = "BODY_TOO_LARGE"
	ErrCodeLearningOff     = "LEARNING_DISABLED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// ErrNoFeedsFetched is returned when a run had only feeds and none of them
// produced signals.
var ErrNoFeedsFetched = errors.New("no feed could be fetched")

// statusFor maps a failure kind to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch failure.KindOf(err) {
	case failure.KindValidation:
		if errors.Is(err, taxonomy.ErrLearningDisabled) {
			return http.StatusBadRequest, ErrCodeLearningOff
		}
		return http.StatusBadRequest, ErrCodeValidation
	case failure.KindDependencyUnavailable:
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	case failure.KindTimeout:
		return http.StatusGatewayTimeout, ErrCodeTimeout
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// errorDetails returns field-level details for validator failures.
func errorDetails(err error) map[string]interface{} {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		return verr.Details()
	}
	return nil
}
