// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

// Package logging provides the process-wide zerolog logger.
//
// Components do not log through the global helpers. They receive a
// zerolog.Logger by value and tag it with a component field:
//
//	logger.With().Str("component", "cluster").Logger()
//
// The global logger is for main, startup and HTTP middleware.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Recommendation run failed")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
//
// # Request IDs
//
// ContextWithRequestID stores the request ID set by the HTTP layer and Ctx
// attaches it to every line logged for that request.
//
// # slog
//
// NewSlogLogger adapts a zerolog.Logger to *slog.Logger for sutureslog, so
// supervisor events appear in the same stream.
package logging
