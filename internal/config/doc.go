// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package config provides centralized configuration management for Storyline.

Configuration is loaded with Koanf v2 from three layers, each overriding the
previous one:

 1. Built-in defaults (structs provider)
 2. An optional YAML file, found via CONFIG_PATH or DefaultConfigPaths
 3. Environment variables with an explicit name mapping

# Sections

  - server: HTTP listener, timeouts, CORS and rate limiting
  - logging: zerolog level, format and caller reporting
  - store: Badger taxonomy directory, DuckDB evidence file, seed files, cache
  - taxonomy: class weights, auto-match threshold, learning, lexicon refresh
  - scoring: evidence (fit), urgency and demand parameters
  - cluster: anchor thresholds, adjudication budget, workers and timeout
  - recommend: axis weights, limits, workers and per-call timeouts
  - ai: provider, API key, model, rate limit and circuit breaker name
  - ingest: feed URLs, fetch timeout and item cap

# Environment Variables

Only mapped variables are read. Examples:

  - HTTP_PORT: Listen port (default: 8080)
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - DUCKDB_PATH: Evidence database file (default: /data/evidence.duckdb)
  - TAXONOMY_PATH: Badger directory (default: /data/taxonomy)
  - SEED_FILES: Comma-separated YAML seed files
  - ANTHROPIC_API_KEY: Enables adjudication and pitches with AI_ENABLED=true
  - INGEST_FEEDS: Comma-separated RSS/Atom URLs

# Component Settings

Config exposes typed settings for each component (Resolver, Learner,
FitScoring, UrgencyScoring, DemandScoring, Clustering, Engine, AIClient).
Validate delegates to each component's own validation so a bad value fails
at startup rather than at first use.

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := recommend.NewEngine(deps, cfg.Engine(), logger)
*/
package config
