// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/api"
	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/supervisor"
	"github.com/tomtom215/sommelier/internal/supervisor/services"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with periodic catalog refresh",
		Long: `Serve starts the HTTP API and the catalog refresh loop under a supervisor.

The newest stored artifact is loaded first so requests can be answered
while the startup refit runs. Without an artifact the server starts
unfitted and /api/v1/health/ready reports 503 until the first fit lands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := opts.cfg
	logger := logging.WithComponent("server")

	c, err := opts.components()
	if err != nil {
		return err
	}
	defer c.Close() //nolint:errcheck

	loaded, err := c.loadLatest(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("artifact load failed, waiting for refit")
	}

	handlerCfg := api.DefaultHandlerConfig()
	handlerCfg.Version = version
	handlerCfg.Evaluation = cfg.Evaluation.Options()
	handlerCfg.TargetJaccard = cfg.Tuning.TargetJaccard
	handlerCfg.TargetCoverage = cfg.Tuning.TargetCoverage
	handlerCfg.CacheSize = cfg.Server.ResponseCacheSize
	handlerCfg.CacheTTL = cfg.Server.ResponseCacheTTL

	handler, err := api.NewHandler(c.engine, c.evaluator, c.tuner, handlerCfg)
	if err != nil {
		return err
	}

	mwCfg := api.DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Server.RateLimitRequests
	mwCfg.RateLimitDisabled = cfg.Server.RateLimitDisabled || cfg.Server.RateLimitRequests == 0
	if cfg.Server.RateLimitWindow > 0 {
		mwCfg.RateLimitWindow = cfg.Server.RateLimitWindow
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, mwCfg).SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logger), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	refresh := services.NewRefreshService(c.engine, c.provider, c.store, services.RefreshServiceConfig{
		Interval:     cfg.Refresh.Interval,
		OnStartup:    cfg.Refresh.OnStartup || !loaded,
		ArtifactName: cfg.Storage.Name,
		Keep:         cfg.Storage.Keep,
	}, logger)
	tree.AddEngineService(refresh)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	logger.Info().
		Str("addr", server.Addr).
		Str("catalog", c.provider.Name()).
		Bool("artifact_loaded", loaded).
		Dur("refresh_interval", cfg.Refresh.Interval).
		Msg("starting sommelier")

	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logger.Warn().Str("service", svc.Name).Msg("service failed to stop")
	}

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("supervisor: %w", err)
	}
	logger.Info().Msg("sommelier stopped")
	return nil
}
