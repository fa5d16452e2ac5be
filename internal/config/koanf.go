// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/storyline/config.yaml",
	"/etc/storyline/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      120 * time.Second,
			ShutdownTimeout:   15 * time.Second,
			MaxBodyBytes:      2 << 20,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Store: StoreConfig{
			InMemory:          false,
			TaxonomyPath:      "/data/taxonomy",
			EvidencePath:      "/data/evidence.duckdb",
			EvidenceCacheSize: 512,
			EvidenceCacheTTL:  5 * time.Minute,
		},
		Taxonomy: TaxonomyConfig{
			TopicSpecificWeight: 1.0,
			PersonWeight:        0.6,
			GenericWeight:       0.2,
			DefaultThreshold:    0.35,
			LearningEnabled:     false,
			LearningRate:        0.1,
			MinKeywordWeight:    0.1,
			MaxKeywordWeight:    3.0,
			RefreshInterval:     10 * time.Minute,
		},
		Scoring: ScoringConfig{
			Evidence: EvidenceScoringConfig{
				Neutral:        35,
				ItemWeight:     25,
				IdentityWeight: 10,
				HalfLife:       90 * 24 * time.Hour,
				MaxItemShare:   0.25,
			},
			Urgency: UrgencyScoringConfig{
				BreakingWindow:     6 * time.Hour,
				CueBoost:           10,
				DefaultLow:         20,
				Cues:               []string{"breaking", "live", "today", "deadline", "just in", "عاجل", "الآن", "اليوم"},
				PostTodayThreshold: 70,
				ThisWeekThreshold:  30,
			},
			Demand: DemandScoringConfig{
				AudienceRequestWeight:    35,
				AudienceQuestionWeight:   30,
				AudienceCap:              50,
				LikesBoostMin:            5,
				LikesBoostMax:            10,
				CompetitorWeight:         15,
				CompetitorBreakoutWeight: 25,
				CompetitorVolumeBonus:    15,
				CompetitorVolumeCount:    3,
				SearchWeight:             20,
				OwnFormatWeight:          15,
				Neutral:                  40,
				MinRecords:               2,
				MinTermOverlap:           2,
				HighThreshold:            60,
				MediumThreshold:          30,
			},
		},
		Cluster: ClusterConfig{
			MinHighValueAnchors:       2,
			BorderlineBelow:           1,
			BorderlineAbove:           0,
			MaxAdjudications:          10,
			AdjudicationWorkers:       4,
			AdjudicationTimeout:       10 * time.Second,
			MinAdjudicationConfidence: 0.7,
			CacheSize:                 1024,
			CacheTTL:                  6 * time.Hour,
		},
		Recommend: RecommendConfig{
			FitWeight:       0.45,
			UrgencyWeight:   0.30,
			DemandWeight:    0.25,
			DefaultLimit:    20,
			MaxLimit:        100,
			DefaultWindow:   72 * time.Hour,
			Workers:         8,
			PitchWorkers:    2,
			PitchesEnabled:  true,
			ManualFitBonus:  15,
			TaxonomyTimeout: 2 * time.Second,
			EvidenceTimeout: 3 * time.Second,
			PitchTimeout:    15 * time.Second,
			BatchTimeout:    60 * time.Second,
		},
		AI: AIConfig{
			Enabled:           false,
			Provider:          "anthropic",
			Model:             "claude-3-5-haiku-latest",
			MaxTokens:         512,
			RequestsPerSecond: 2,
			Burst:             4,
			BreakerName:       "ai-provider",
		},
		Ingest: IngestConfig{
			FetchTimeout: 15 * time.Second,
			MaxItems:     50,
			UserAgent:    "storyline/1.0 (+https://github.com/tomtom215/storyline)",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// load runs the layered load with an explicit config file path. An empty
// path skips the file layer.
func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// LOG_LEVEL -> logging.level, ANTHROPIC_API_KEY -> ai.api_key
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
	"store.seed_files",
	"scoring.urgency.cues",
	"ingest.feeds",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_read_timeout":   "server.read_timeout",
	"http_write_timeout":  "server.write_timeout",
	"shutdown_timeout":    "server.shutdown_timeout",
	"max_body_bytes":      "server.max_body_bytes",
	"cors_origins":        "server.cors_origins",
	"rate_limit_requests": "server.rate_limit_requests",
	"rate_limit_window":   "server.rate_limit_window",
	"disable_rate_limit":  "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Stores
	"store_in_memory":     "store.in_memory",
	"taxonomy_path":       "store.taxonomy_path",
	"duckdb_path":         "store.evidence_path",
	"seed_files":          "store.seed_files",
	"evidence_cache_size": "store.evidence_cache_size",
	"evidence_cache_ttl":  "store.evidence_cache_ttl",

	// Taxonomy
	"taxonomy_threshold":        "taxonomy.default_threshold",
	"taxonomy_refresh_interval": "taxonomy.refresh_interval",
	"learning_enabled":          "taxonomy.learning_enabled",
	"learning_rate":             "taxonomy.learning_rate",

	// Scoring
	"evidence_half_life": "scoring.evidence.half_life",
	"urgency_cues":       "scoring.urgency.cues",

	// Clustering
	"cluster_min_anchors":         "cluster.min_high_value_anchors",
	"cluster_max_adjudications":   "cluster.max_adjudications_per_run",
	"adjudication_timeout":        "cluster.adjudication_timeout",
	"adjudication_workers":        "cluster.adjudication_workers",
	"min_adjudication_confidence": "cluster.min_adjudication_confidence",

	// Recommendation engine
	"recommend_fit_weight":     "recommend.fit_weight",
	"recommend_urgency_weight": "recommend.urgency_weight",
	"recommend_demand_weight":  "recommend.demand_weight",
	"recommend_default_limit":  "recommend.default_limit",
	"recommend_max_limit":      "recommend.max_limit",
	"recommend_window":         "recommend.default_window",
	"recommend_workers":        "recommend.workers",
	"recommend_batch_timeout":  "recommend.batch_timeout",
	"pitches_enabled":          "recommend.pitches_enabled",
	"manual_fit_bonus":         "recommend.manual_fit_bonus",

	// AI provider
	"ai_enabled":             "ai.enabled",
	"ai_provider":            "ai.provider",
	"anthropic_api_key":      "ai.api_key",
	"ai_model":               "ai.model",
	"ai_max_tokens":          "ai.max_tokens",
	"ai_requests_per_second": "ai.requests_per_second",
	"ai_burst":               "ai.burst",

	// Ingestion
	"ingest_feeds":         "ingest.feeds",
	"ingest_fetch_timeout": "ingest.fetch_timeout",
	"ingest_max_items":     "ingest.max_items_per_feed",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// For unmapped keys it returns an empty string so they are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
