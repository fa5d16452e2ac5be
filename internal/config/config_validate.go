// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package config

import (
	"fmt"
	"net/url"
	"time"
)

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateStore,
		c.validateTaxonomy,
		c.validateScoring,
		c.validateCluster,
		c.validateRecommend,
		c.validateAI,
		c.validateIngest,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if c.Server.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024, got %d", c.Server.MaxBodyBytes)
	}
	// The write timeout bounds the whole recommendation run.
	if c.Server.WriteTimeout < c.Recommend.BatchTimeout {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT (%v) must not be shorter than RECOMMEND_BATCH_TIMEOUT (%v)",
			c.Server.WriteTimeout, c.Recommend.BatchTimeout)
	}
	return c.validateRateLimits()
}

// validateRateLimits validates rate limiting bounds
func (c *Config) validateRateLimits() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitRequests < minRateLimitRequests || c.Server.RateLimitRequests > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Server.RateLimitWindow < minRateLimitWindow || c.Server.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateStore validates store locations
func (c *Config) validateStore() error {
	if c.Store.EvidenceCacheSize < 0 {
		return fmt.Errorf("EVIDENCE_CACHE_SIZE must not be negative")
	}
	if c.Store.EvidenceCacheSize > 0 && c.Store.EvidenceCacheTTL <= 0 {
		return fmt.Errorf("EVIDENCE_CACHE_TTL must be positive when the cache is enabled")
	}
	for _, path := range c.Store.SeedFiles {
		if path == "" {
			return fmt.Errorf("SEED_FILES contains an empty path")
		}
	}
	return nil
}

// validateTaxonomy validates resolver and learner settings
func (c *Config) validateTaxonomy() error {
	if err := c.Resolver().Validate(); err != nil {
		return fmt.Errorf("taxonomy: %w", err)
	}
	if err := c.Learner().Validate(); err != nil {
		return fmt.Errorf("taxonomy learning: %w", err)
	}
	if c.Taxonomy.RefreshInterval < 0 {
		return fmt.Errorf("TAXONOMY_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

// validateScoring validates the three axis scorers
func (c *Config) validateScoring() error {
	if err := c.FitScoring().Validate(); err != nil {
		return fmt.Errorf("scoring.evidence: %w", err)
	}
	if err := c.UrgencyScoring().Validate(); err != nil {
		return fmt.Errorf("scoring.urgency: %w", err)
	}
	if err := c.DemandScoring().Validate(); err != nil {
		return fmt.Errorf("scoring.demand: %w", err)
	}
	return nil
}

// validateCluster validates clustering settings
func (c *Config) validateCluster() error {
	if err := c.Clustering().Validate(); err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	return nil
}

// validateRecommend validates engine settings
func (c *Config) validateRecommend() error {
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validateAI validates provider settings (only if enabled)
func (c *Config) validateAI() error {
	if !c.AI.Enabled {
		return nil
	}
	if c.AI.Provider != "anthropic" {
		return fmt.Errorf("AI_PROVIDER must be anthropic, got %q", c.AI.Provider)
	}
	if c.AI.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required when AI_ENABLED=true")
	}
	if err := c.AIClient().Validate(); err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	return nil
}

// validateIngest validates feed urls
func (c *Config) validateIngest() error {
	if c.Ingest.FetchTimeout <= 0 {
		return fmt.Errorf("INGEST_FETCH_TIMEOUT must be positive")
	}
	if c.Ingest.MaxItems < 1 {
		return fmt.Errorf("INGEST_MAX_ITEMS must be at least 1")
	}
	for _, feed := range c.Ingest.Feeds {
		if err := validateFeedURL(feed); err != nil {
			return fmt.Errorf("INGEST_FEEDS: %w", err)
		}
	}
	return nil
}

// validateFeedURL validates that a feed URL is an absolute http(s) URL.
func validateFeedURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL %q: %w", rawURL, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required in %q", rawURL)
	}
	return nil
}
