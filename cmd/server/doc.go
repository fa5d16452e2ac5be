// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

/*
Package main is the entry point for the Storyline server.

Storyline turns raw content signals (manual notes, RSS items, audience
behavior) into a ranked list of story recommendations. Each signal is
resolved against a topic taxonomy, scored on fit, urgency and proven demand,
then deduplicated into stories before ranking.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("storyline")
	├── DataSupervisor ("data-layer")
	│   └── Taxonomy refresh (periodic and after feedback)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON/console output modes
 3. Stores: Badger taxonomy and DuckDB evidence, or in-memory stores
 4. Seeding: YAML seed files merged into the stores
 5. AI: optional Anthropic client for adjudication and pitches
 6. Pipeline: resolver, learner, scorers, clusterer and engine
 7. Supervisor Tree: HTTP server and taxonomy refresh service

# Configuration

Settings come from config.yaml (or CONFIG_PATH) and environment variables.
The most common ones:

	HTTP_PORT=8080
	STORE_IN_MEMORY=true
	SEED_FILES=seeds/topics.yaml
	INGEST_FEEDS=https://example.com/feed.xml
	AI_ENABLED=true
	ANTHROPIC_API_KEY=sk-ant-...

# Signal Handling

SIGINT and SIGTERM stop the supervisor tree. The HTTP server drains
in-flight requests within the configured shutdown timeout, then the stores
are closed.
*/
package main
