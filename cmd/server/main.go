// Storyline - Content Signal Evaluation and Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storyline

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/tomtom215/storyline/internal/api"
	"github.com/tomtom215/storyline/internal/config"
	"github.com/tomtom215/storyline/internal/ingest"
	"github.com/tomtom215/storyline/internal/logging"
	"github.com/tomtom215/storyline/internal/metrics"
	"github.com/tomtom215/storyline/internal/supervisor"
	"github.com/tomtom215/storyline/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

//nolint:gocyclo // Sequential startup steps
func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	logging.Info().
		Str("version", version).
		Bool("in_memory", cfg.Store.InMemory).
		Bool("ai_enabled", cfg.AI.Active()).
		Bool("learning_enabled", cfg.Taxonomy.LearningEnabled).
		Int("default_feeds", len(cfg.Ingest.Feeds)).
		Msg("Starting Storyline with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, &cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing stores")
		}
	}()

	if err := st.seed(ctx, cfg.Store.SeedFiles, logger); err != nil {
		return err
	}

	p, err := initPipeline(ctx, cfg, st, logger)
	if err != nil {
		return err
	}
	logging.Info().
		Int64("lexicon_version", p.resolver.LexiconVersion()).
		Msg("Recommendation pipeline initialized")

	fetcher, err := ingest.NewFetcher(cfg.Feeds(), logger)
	if err != nil {
		return err
	}

	deps := api.HandlerDeps{
		Engine:         p.engine,
		Feeds:          fetcher,
		DefaultFeeds:   cfg.Ingest.Feeds,
		Checks:         st.checks,
		LexiconVersion: p.resolver.LexiconVersion,
		AIEnabled:      cfg.AI.Active(),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}
	if p.learner.Enabled() {
		deps.Learner = p.learner
	}
	handler, err := api.NewHandler(deps)
	if err != nil {
		return err
	}

	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           api.NewRouter(handler, api.RouterConfigFrom(&cfg.Server)),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})

	refresh := services.NewTaxonomyRefreshService(p.resolver, cfg.Taxonomy.RefreshInterval, logger)
	p.learner.OnApplied(refresh.Trigger)
	tree.AddDataService(refresh)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	// The channel carries exactly one result when the tree stops.
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to stop")
		treeErr = <-errCh
	case treeErr = <-errCh:
		cancel()
	}

	var serveErr error
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		serveErr = treeErr
		logging.Error().Err(treeErr).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
	return serveErr
}
