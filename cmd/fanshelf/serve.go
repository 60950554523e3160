// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/api"
	"github.com/tomtom215/fanshelf/internal/cache"
	"github.com/tomtom215/fanshelf/internal/config"
	"github.com/tomtom215/fanshelf/internal/logging"
	"github.com/tomtom215/fanshelf/internal/supervisor"
	"github.com/tomtom215/fanshelf/internal/supervisor/services"
)

// buildMiddlewareConfig maps the server section onto the API middleware.
func buildMiddlewareConfig(cfg *config.ServerConfig) *api.MiddlewareConfig {
	mw := api.DefaultMiddlewareConfig()
	mw.CORSAllowedOrigins = append([]string(nil), cfg.CORSOrigins...)
	mw.RateLimitRequests = cfg.RateLimitRequests
	mw.RateLimitWindow = cfg.RateLimitWindow
	return mw
}

// newHTTPServer builds the HTTP server for the result API.
func newHTTPServer(cfg *config.ServerConfig, a *app) *http.Server {
	router := api.NewRouter(a.engine, a.store, buildMiddlewareConfig(cfg), cfg.Timeout)
	if cfg.CacheTTL > 0 {
		router.WithCache(cache.New(cfg.CacheTTL, cache.DefaultMaxEntries))
	}
	return &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Timeout,
		ReadTimeout:       cfg.Timeout,
		WriteTimeout:      cfg.Timeout,
	}
}

// buildTree assembles the supervisor tree for serve mode.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func buildTree(cfg *config.Config, a *app, logger zerolog.Logger) (*supervisor.SupervisorTree, error) {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create supervisor tree: %w", err)
	}

	server := newHTTPServer(&cfg.Server, a)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	if cfg.Evaluation.RerunInterval > 0 {
		tree.AddComputeService(services.NewEvaluationService(a.engine, a.publisher.Publish, services.EvaluationServiceConfig{
			Reference: cfg.Dataset.ReferenceISBN,
			Interval:  cfg.Evaluation.RerunInterval,
		}, logger))
		logger.Info().Dur("interval", cfg.Evaluation.RerunInterval).Msg("Periodic re-evaluation enabled")
	}

	return tree, nil
}

// serve runs the supervisor tree until ctx ends.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func serve(ctx context.Context, cfg *config.Config, a *app, logger zerolog.Logger) error {
	tree, err := buildTree(cfg, a, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", cfg.Server.Addr()).Msg("Serving results")

	errCh := tree.ServeBackground(ctx)
	err = <-errCh
	if err != nil && !errors.Is(err, context.Canceled) {
		if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
			logger.Warn().Int("unstopped", len(report)).Msg("Services did not stop in time")
		}
		return fmt.Errorf("supervisor: %w", err)
	}
	logger.Info().Msg("Server stopped")
	return nil
}
