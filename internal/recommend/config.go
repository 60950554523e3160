// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package recommend

import (
	"fmt"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Ranking contains parameters shared by the rankers.
	Ranking RankingConfig `json:"ranking"`

	// Cohort contains fan-group selection parameters.
	Cohort CohortConfig `json:"cohort"`

	// Evaluation contains cross-validation parameters.
	Evaluation EvaluationConfig `json:"evaluation"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Seed drives the fold shuffle. The same seed over the same cohort
	// always yields the same partition.
	Seed int64 `json:"seed"`
}

// RankingConfig contains parameters shared by the rankers.
type RankingConfig struct {
	// MinSupport is the minimum number of cohort ratings an item needs
	// before its mean counts toward popularity. Below it the score is 0.
	// Default: 5.
	MinSupport int `json:"min_support"`

	// TopN is the length of the recommended list.
	// Default: 10.
	TopN int `json:"top_n"`

	// TieBreak names the secondary sort key: "title_desc" or "title_asc".
	// Default: title_desc.
	TieBreak string `json:"tie_break"`

	// Diversify enables the diversified final list.
	// Default: true.
	Diversify bool `json:"diversify"`

	// Reranker selects the diversification: "author" keeps one book per
	// author, "mmr" penalizes repeated authors.
	// Default: author.
	Reranker string `json:"reranker"`

	// MMRLambda balances input order against author diversity for the
	// mmr reranker.
	// Default: 0.7.
	MMRLambda float64 `json:"mmr_lambda"`
}

// Reranker names accepted by RankingConfig.Reranker.
const (
	RerankerAuthor = "author"
	RerankerMMR    = "mmr"
)

// CohortConfig contains fan-group selection parameters.
type CohortConfig struct {
	// FanThreshold is the rating a user must strictly exceed on the
	// reference book to join the fan group.
	// Default: 8.
	FanThreshold float64 `json:"fan_threshold"`
}

// EvaluationConfig contains cross-validation parameters.
type EvaluationConfig struct {
	// Folds is the number of cross-validation folds.
	// Default: 4.
	Folds int `json:"folds"`

	// GridPoints is the number of evenly spaced alphas in [0, 1],
	// endpoints included.
	// Default: 20.
	GridPoints int `json:"grid_points"`

	// Workers bounds the number of (alpha, fold) cells evaluated at once.
	// 1 evaluates sequentially.
	// Default: 1.
	Workers int `json:"workers"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxK is the maximum list length a request may ask for.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// DefaultConfig returns a Config with the defaults of the reference study.
func DefaultConfig() *Config {
	return &Config{
		Ranking: RankingConfig{
			MinSupport: 5,
			TopN:       10,
			TieBreak:   TieBreakTitleDesc,
			Diversify:  true,
			Reranker:   RerankerAuthor,
			MMRLambda:  0.7,
		},
		Cohort: CohortConfig{
			FanThreshold: 8,
		},
		Evaluation: EvaluationConfig{
			Folds:      4,
			GridPoints: 20,
			Workers:    1,
		},
		Limits: LimitsConfig{
			MaxK: 100,
		},
		Seed: 444,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Ranking.MinSupport < 0 {
		return fmt.Errorf("ranking.min_support must be non-negative, got %d", c.Ranking.MinSupport)
	}
	if c.Ranking.TopN < 1 {
		return fmt.Errorf("ranking.top_n must be positive, got %d", c.Ranking.TopN)
	}
	if _, err := ParseTieBreak(c.Ranking.TieBreak); err != nil {
		return fmt.Errorf("ranking.tie_break: %w", err)
	}
	if c.Ranking.Reranker != RerankerAuthor && c.Ranking.Reranker != RerankerMMR {
		return fmt.Errorf("ranking.reranker must be %q or %q, got %q", RerankerAuthor, RerankerMMR, c.Ranking.Reranker)
	}
	if c.Ranking.MMRLambda < 0 || c.Ranking.MMRLambda > 1 {
		return fmt.Errorf("ranking.mmr_lambda must be in [0, 1], got %f", c.Ranking.MMRLambda)
	}

	if c.Cohort.FanThreshold < MinRating || c.Cohort.FanThreshold > MaxRating {
		return fmt.Errorf("cohort.fan_threshold must be in [0, 10], got %f", c.Cohort.FanThreshold)
	}

	if c.Evaluation.Folds < 2 {
		return fmt.Errorf("evaluation.folds must be at least 2, got %d", c.Evaluation.Folds)
	}
	if c.Evaluation.GridPoints < 2 {
		return fmt.Errorf("evaluation.grid_points must be at least 2, got %d", c.Evaluation.GridPoints)
	}
	if c.Evaluation.Workers < 1 {
		return fmt.Errorf("evaluation.workers must be positive, got %d", c.Evaluation.Workers)
	}

	if c.Limits.MaxK < c.Ranking.TopN {
		return fmt.Errorf("limits.max_k must be >= ranking.top_n, got %d < %d", c.Limits.MaxK, c.Ranking.TopN)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all nested structs contain only value types
	return &Config{
		Ranking:    c.Ranking,
		Cohort:     c.Cohort,
		Evaluation: c.Evaluation,
		Limits:     c.Limits,
		Seed:       c.Seed,
	}
}

// TieBreakFunc resolves the configured tie-break. Validate guarantees the
// name is known, so an unknown name falls back to TitleDescending.
func (c *Config) TieBreakFunc() TieBreak {
	tb, err := ParseTieBreak(c.Ranking.TieBreak)
	if err != nil {
		return TitleDescending
	}
	return tb
}
