// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package ai adapts a hosted language model to the two AI contracts used by the
pipeline: same-story adjudication for the clusterer and pitch generation for
the recommendation engine.

# Client

Client sends single-turn prompts through the Anthropic Messages API. Every
call waits on a token-bucket limiter (golang.org/x/time/rate) and runs inside
a circuit breaker (sony/gobreaker/v2):

  - Max 3 requests in half-open state
  - 1 minute measurement window
  - 2 minute open timeout
  - Opens at >= 60% failures over at least 10 requests

Errors are returned as *failure.Error: context deadlines map to
failure.KindTimeout and everything else, including an open breaker, to
failure.KindDependencyUnavailable.

# Adjudicator

Adjudicator implements cluster.Adjudicator. The model is asked for a JSON
object {"same_story": bool, "confidence": 0-100, "reason": string};
confidence is normalized to [0,1].

# Pitcher

Pitcher implements recommend.PitchGenerator and returns a short editorial
pitch for a recommendation.

No model is prescribed; Config.Model selects one.
*/
package ai
