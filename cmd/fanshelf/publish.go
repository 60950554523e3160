// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/dataset"
	"github.com/tomtom215/fanshelf/internal/recommend"
	"github.com/tomtom215/fanshelf/internal/report"
)

// statsSource is satisfied by *dataset.Loader.
type statsSource interface {
	Stats() *dataset.Stats
}

// publisher turns run results into reports: files on disk, the report the
// API serves, and a log summary of the top lists.
type publisher struct {
	stats    statsSource
	store    *report.Store
	jsonPath string
	csvPath  string
	logger   zerolog.Logger
}

// Publish builds, saves and stores the report of result.
// Its signature matches services.PublishFunc.
func (p *publisher) Publish(_ context.Context, result *recommend.Result) error {
	var stats *dataset.Stats
	if p.stats != nil {
		stats = p.stats.Stats()
	}

	rep, err := report.New(result, stats)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := rep.Save(p.jsonPath, p.csvPath); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	p.store.Set(rep)

	p.logger.Info().
		Str("run_id", rep.RunID).
		Str("json", p.jsonPath).
		Str("csv", p.csvPath).
		Float64("best_alpha", rep.BestAlpha).
		Float64("best_score", rep.BestScore).
		Msg("Report written")

	p.logRanking("popularity", rep.Popularity)
	p.logRanking("similarity", rep.Similarity)
	p.logRanking("hybrid", rep.Hybrid)
	if len(rep.Diversified) > 0 {
		p.logRanking("diversified", rep.Diversified)
	}
	return nil
}

func (p *publisher) logRanking(method string, ranking recommend.Ranking) {
	p.logger.Info().Str("method", method).Strs("titles", ranking.Titles()).Msg("Top list")
}
