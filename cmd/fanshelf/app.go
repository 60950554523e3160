// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/config"
	"github.com/tomtom215/fanshelf/internal/database"
	"github.com/tomtom215/fanshelf/internal/dataset"
	"github.com/tomtom215/fanshelf/internal/recommend"
	"github.com/tomtom215/fanshelf/internal/recommend/algorithms"
	"github.com/tomtom215/fanshelf/internal/recommend/evaluation"
	"github.com/tomtom215/fanshelf/internal/recommend/reranking"
	"github.com/tomtom215/fanshelf/internal/report"
)

// app holds the components shared by the batch run and serve mode.
type app struct {
	db        *database.DB
	loader    *dataset.Loader
	engine    *recommend.Engine
	store     *report.Store
	publisher *publisher
}

// newApp opens DuckDB and wires the preparation stage into a fully
// configured engine.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	logger.Info().Bool("in_memory", db.IsInMemory()).Msg("Database initialized")

	loader, err := dataset.NewLoader(db, cfg.Dataset, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize dataset loader: %w", err)
	}

	engine, err := initEngine(cfg, loader, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &report.Store{}
	return &app{
		db:     db,
		loader: loader,
		engine: engine,
		store:  store,
		publisher: &publisher{
			stats:    loader,
			store:    store,
			jsonPath: cfg.Evaluation.ReportPath,
			csvPath:  cfg.Evaluation.SweepCSVPath,
			logger:   logger.With().Str("component", "report").Logger(),
		},
	}, nil
}

// Close releases the database.
func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.publisher.logger.Error().Err(err).Msg("Error closing database")
	}
}

// buildEngineConfig creates the engine configuration from app config.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	return &recommend.Config{
		Ranking: recommend.RankingConfig{
			MinSupport: cfg.Recommend.MinSupport,
			TopN:       cfg.Recommend.TopN,
			TieBreak:   cfg.Recommend.TieBreak,
			Diversify:  cfg.Recommend.Diversify,
			Reranker:   cfg.Recommend.Reranker,
			MMRLambda:  cfg.Recommend.MMRLambda,
		},
		Cohort: recommend.CohortConfig{
			FanThreshold: cfg.Recommend.FanThreshold,
		},
		Evaluation: recommend.EvaluationConfig{
			Folds:      cfg.Evaluation.Folds,
			GridPoints: cfg.Evaluation.GridPoints,
			Workers:    cfg.Evaluation.Workers,
		},
		Limits: recommend.LimitsConfig{
			MaxK: cfg.Recommend.MaxK,
		},
		Seed: cfg.Evaluation.Seed,
	}
}

// initEngine creates the engine and registers the rankers, the
// cross-validator and the configured reranker.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(cfg *config.Config, provider recommend.DataProvider, logger zerolog.Logger) (*recommend.Engine, error) {
	engineCfg := buildEngineConfig(cfg)
	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}
	engine.SetDataProvider(provider)

	tieBreak := engineCfg.TieBreakFunc()
	pop := algorithms.NewPopularity(algorithms.PopularityConfig{
		MinSupport: engineCfg.Ranking.MinSupport,
		TieBreak:   tieBreak,
	})
	sim := algorithms.NewSimilarity(algorithms.SimilarityConfig{TieBreak: tieBreak})
	hybrid := algorithms.NewHybrid(algorithms.HybridConfig{TieBreak: tieBreak})
	engine.SetRankers(pop, sim, hybrid)

	engine.SetEvaluator(evaluation.NewCrossValidator(evaluation.Config{
		Folds:   engineCfg.Evaluation.Folds,
		TopN:    engineCfg.Ranking.TopN,
		Seed:    engineCfg.Seed,
		Workers: engineCfg.Evaluation.Workers,
	}, pop, sim, hybrid, logger))

	switch engineCfg.Ranking.Reranker {
	case recommend.RerankerMMR:
		engine.RegisterReranker(reranking.NewMMR(engineCfg.Ranking.MMRLambda))
	default:
		engine.RegisterReranker(reranking.NewAuthorDiversity())
	}

	logger.Debug().
		Str("tie_break", engineCfg.Ranking.TieBreak).
		Str("reranker", engineCfg.Ranking.Reranker).
		Int("min_support", engineCfg.Ranking.MinSupport).
		Msg("recommendation engine initialized")

	return engine, nil
}
