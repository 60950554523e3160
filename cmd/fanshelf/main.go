// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package main is the entry point for the fanshelf command.
//
// fanshelf recommends books to the fans of one reference book. It prepares a
// Book-Crossing style ratings dump in DuckDB, ranks the catalog by popularity
// inside the fan group and by rating similarity to the reference, blends the
// two rankings and cross-validates the blending weight over the fans.
//
// # Run Order
//
//  1. Configuration: defaults, config.yaml, environment (Koanf v2)
//  2. Database: in-memory DuckDB for the preparation stage
//  3. Engine: rankers, cross-validator and rerankers
//  4. Evaluation: one full run for dataset.reference_isbn
//  5. Reports: JSON report and alpha/score CSV
//  6. Serve mode (HTTP_ENABLED=true): read-only API under a suture tree
//
// # Example Usage
//
//	export FANSHELF_RATINGS_PATH=data/BX-Book-Ratings.csv
//	export FANSHELF_BOOKS_PATH=data/BX-Books.csv
//	./fanshelf
//
// Serving the results:
//
//	export HTTP_ENABLED=true
//	export FANSHELF_RERUN_INTERVAL=6h
//	./fanshelf
//	curl 'localhost:8419/api/v1/recommendations?method=hybrid&alpha=0.3&k=5'
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the run. In serve mode they stop the supervisor
// tree, which shuts the HTTP server down gracefully.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/fanshelf/internal/config"
	"github.com/tomtom215/fanshelf/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, context.Canceled) {
			logging.Info().Msg("Stopped")
			return
		}
		logging.Error().Err(err).Msg("fanshelf failed")
		cancel()
		os.Exit(1)
	}
}

// run evaluates once, publishes the reports and, when enabled, serves them
// until ctx ends.
func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Logger()

	logger.Info().
		Str("ratings", cfg.Dataset.RatingsPath).
		Str("books", cfg.Dataset.BooksPath).
		Str("reference", cfg.Dataset.ReferenceISBN).
		Int("folds", cfg.Evaluation.Folds).
		Int("grid_points", cfg.Evaluation.GridPoints).
		Msg("Starting fanshelf")

	app, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.engine.Run(ctx, cfg.Dataset.ReferenceISBN)
	if err != nil {
		return err
	}
	if err := app.publisher.Publish(ctx, result); err != nil {
		return err
	}

	if !cfg.Server.Enabled {
		return nil
	}
	return serve(ctx, cfg, app, logger)
}
