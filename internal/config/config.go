// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package config

import "time"

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in values for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override individual settings
//
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Store     StoreConfig     `koanf:"store"`
	Taxonomy  TaxonomyConfig  `koanf:"taxonomy"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Cluster   ClusterConfig   `koanf:"cluster"`
	Recommend RecommendConfig `koanf:"recommend"`
	AI        AIConfig        `koanf:"ai"`
	Ingest    IngestConfig    `koanf:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// StoreConfig selects and locates the taxonomy and evidence stores.
type StoreConfig struct {
	// InMemory uses the map-backed stores and ignores the paths below.
	InMemory bool `koanf:"in_memory"`

	// TaxonomyPath is the Badger directory. Empty runs Badger in memory.
	TaxonomyPath string `koanf:"taxonomy_path"`

	// EvidencePath is the DuckDB file. Empty runs DuckDB in memory.
	EvidencePath string `koanf:"evidence_path"`

	// SeedFiles are YAML files loaded into the stores at startup.
	SeedFiles []string `koanf:"seed_files"`

	// EvidenceCacheSize of 0 disables the evidence lookup cache.
	EvidenceCacheSize int           `koanf:"evidence_cache_size"`
	EvidenceCacheTTL  time.Duration `koanf:"evidence_cache_ttl"`
}

// TaxonomyConfig holds topic resolution and learning settings.
type TaxonomyConfig struct {
	TopicSpecificWeight float64 `koanf:"topic_specific_weight"`
	PersonWeight        float64 `koanf:"person_weight"`
	GenericWeight       float64 `koanf:"generic_weight"`
	DefaultThreshold    float64 `koanf:"default_threshold"`

	LearningEnabled  bool    `koanf:"learning_enabled"`
	LearningRate     float64 `koanf:"learning_rate"`
	MinKeywordWeight float64 `koanf:"min_keyword_weight"`
	MaxKeywordWeight float64 `koanf:"max_keyword_weight"`

	// RefreshInterval rebuilds the anchor lexicon from the store.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// ScoringConfig groups the three axis scorers.
type ScoringConfig struct {
	Evidence EvidenceScoringConfig `koanf:"evidence"`
	Urgency  UrgencyScoringConfig  `koanf:"urgency"`
	Demand   DemandScoringConfig   `koanf:"demand"`
}

// EvidenceScoringConfig tunes the fit axis.
type EvidenceScoringConfig struct {
	Neutral        float64       `koanf:"neutral"`
	ItemWeight     float64       `koanf:"item_weight"`
	IdentityWeight float64       `koanf:"identity_weight"`
	HalfLife       time.Duration `koanf:"half_life"`
	MaxItemShare   float64       `koanf:"max_item_share"`
}

// UrgencyScoringConfig tunes the urgency axis.
type UrgencyScoringConfig struct {
	BreakingWindow     time.Duration `koanf:"breaking_window"`
	CueBoost           float64       `koanf:"cue_boost"`
	DefaultLow         float64       `koanf:"default_low"`
	Cues               []string      `koanf:"cues"`
	PostTodayThreshold float64       `koanf:"post_today_threshold"`
	ThisWeekThreshold  float64       `koanf:"this_week_threshold"`
}

// DemandScoringConfig tunes the demand axis.
type DemandScoringConfig struct {
	AudienceRequestWeight    float64 `koanf:"audience_request_weight"`
	AudienceQuestionWeight   float64 `koanf:"audience_question_weight"`
	AudienceCap              float64 `koanf:"audience_cap"`
	LikesBoostMin            int64   `koanf:"likes_boost_min"`
	LikesBoostMax            float64 `koanf:"likes_boost_max"`
	CompetitorWeight         float64 `koanf:"competitor_weight"`
	CompetitorBreakoutWeight float64 `koanf:"competitor_breakout_weight"`
	CompetitorVolumeBonus    float64 `koanf:"competitor_volume_bonus"`
	CompetitorVolumeCount    int     `koanf:"competitor_volume_count"`
	SearchWeight             float64 `koanf:"search_weight"`
	OwnFormatWeight          float64 `koanf:"own_format_weight"`
	Neutral                  float64 `koanf:"neutral"`
	MinRecords               int     `koanf:"min_records"`
	MinTermOverlap           int     `koanf:"min_term_overlap"`
	HighThreshold            float64 `koanf:"high_threshold"`
	MediumThreshold          float64 `koanf:"medium_threshold"`
}

// ClusterConfig holds story clustering and adjudication settings.
type ClusterConfig struct {
	MinHighValueAnchors       int           `koanf:"min_high_value_anchors"`
	BorderlineBelow           int           `koanf:"borderline_below"`
	BorderlineAbove           int           `koanf:"borderline_above"`
	MaxAdjudications          int           `koanf:"max_adjudications_per_run"`
	AdjudicationWorkers       int           `koanf:"adjudication_workers"`
	AdjudicationTimeout       time.Duration `koanf:"adjudication_timeout"`
	MinAdjudicationConfidence float64       `koanf:"min_adjudication_confidence"`
	CacheSize                 int           `koanf:"cache_size"`
	CacheTTL                  time.Duration `koanf:"cache_ttl"`
}

// RecommendConfig holds recommendation engine settings.
type RecommendConfig struct {
	FitWeight     float64 `koanf:"fit_weight"`
	UrgencyWeight float64 `koanf:"urgency_weight"`
	DemandWeight  float64 `koanf:"demand_weight"`

	DefaultLimit  int           `koanf:"default_limit"`
	MaxLimit      int           `koanf:"max_limit"`
	DefaultWindow time.Duration `koanf:"default_window"`

	Workers        int     `koanf:"workers"`
	PitchWorkers   int     `koanf:"pitch_workers"`
	PitchesEnabled bool    `koanf:"pitches_enabled"`
	ManualFitBonus float64 `koanf:"manual_fit_bonus"`

	TaxonomyTimeout time.Duration `koanf:"taxonomy_timeout"`
	EvidenceTimeout time.Duration `koanf:"evidence_timeout"`
	PitchTimeout    time.Duration `koanf:"pitch_timeout"`
	BatchTimeout    time.Duration `koanf:"batch_timeout"`
}

// AIConfig holds the language model provider settings. Adjudication and
// pitches run only when Enabled is true and an API key is present.
type AIConfig struct {
	Enabled           bool    `koanf:"enabled"`
	Provider          string  `koanf:"provider"`
	APIKey            string  `koanf:"api_key"`
	Model             string  `koanf:"model"`
	MaxTokens         int64   `koanf:"max_tokens"`
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	Burst             int     `koanf:"burst"`
	BreakerName       string  `koanf:"breaker_name"`
}

// Active reports whether an AI client should be built.
func (c AIConfig) Active() bool {
	return c.Enabled && c.APIKey != ""
}

// IngestConfig holds RSS/Atom feed settings.
type IngestConfig struct {
	Feeds        []string      `koanf:"feeds"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	MaxItems     int           `koanf:"max_items_per_feed"`
	UserAgent    string        `koanf:"user_agent"`
}
