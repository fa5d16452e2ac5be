// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared. It reports JSON field
// names and registers the custom tags used by the domain models:
//
//   - notblank: the string contains at least one non-whitespace character
//   - sourcetype: one of manual, rss, behavior
//   - keywordclass: one of generic, person, topic-specific
//
// Failures convert to a typed failure of kind validation so that callers can
// treat them like any other pipeline error:
//
//	if err := validation.ValidateSignal(&input); err != nil {
//	    // failure.KindOf(err) == failure.KindValidation
//	}
package validation
