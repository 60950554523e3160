// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package recommend

import (
	"context"
	"time"
)

// MinRating and MaxRating bound an explicit rating value.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// Rating is one user's rating of one book.
type Rating struct {
	// UserID identifies the rater.
	UserID int `json:"user_id"`

	// ItemID is the canonical catalog identifier (cleaned ISBN).
	ItemID string `json:"item_id"`

	// Value is the rating in [0, 10].
	Value float64 `json:"value"`
}

// Book is a catalog entry.
type Book struct {
	// ItemID uniquely identifies the catalog entry.
	ItemID string `json:"item_id"`

	// Title is unique across the catalog once the preparation stage has
	// merged editions onto one canonical entry.
	Title string `json:"title"`

	// Author is the author string as supplied by the catalog.
	Author string `json:"author"`
}

// Dataset is the in-memory rating store handed to the core.
type Dataset struct {
	Ratings []Rating `json:"ratings"`
	Catalog []Book   `json:"catalog"`
}

// RankEntry is one row of a ranking.
type RankEntry struct {
	ItemID string `json:"item_id"`
	Title  string `json:"title"`
	Author string `json:"author"`

	// Score is the method-specific value the ranking was sorted by:
	// mean rating, cosine similarity, or fused rank.
	Score float64 `json:"score"`

	// Rank is the 1-based position after sorting.
	Rank int `json:"rank"`
}

// Method names a ranking method.
type Method string

const (
	// MethodPopularity ranks by mean rating inside the fan cohort.
	MethodPopularity Method = "popularity"
	// MethodSimilarity ranks by cosine similarity to the reference book.
	MethodSimilarity Method = "similarity"
	// MethodHybrid ranks by weighted rank fusion of the two.
	MethodHybrid Method = "hybrid"
)

// ParseMethod converts a string to a Method.
func ParseMethod(s string) (Method, bool) {
	switch Method(s) {
	case MethodPopularity, MethodSimilarity, MethodHybrid:
		return Method(s), true
	default:
		return "", false
	}
}

// AlphaScore is the cross-validated satisfaction for one blending weight.
type AlphaScore struct {
	Alpha float64 `json:"alpha"`

	// Score is the mean of FoldScores.
	Score float64 `json:"score"`

	// FoldScores holds one score per fold in fold order.
	FoldScores []float64 `json:"fold_scores"`
}

// SweepResult is the outcome of one alpha grid search.
type SweepResult struct {
	// Scores is ordered by ascending alpha, matching the evaluated grid.
	Scores []AlphaScore `json:"scores"`

	// BestAlpha maximizes Score; ties resolve to the lower alpha.
	BestAlpha float64 `json:"best_alpha"`

	// BestScore is the score at BestAlpha.
	BestScore float64 `json:"best_score"`

	// Folds is the partition every alpha was evaluated against.
	Folds *FoldAssignment `json:"folds"`

	// DegenerateFolds counts fold evaluations that contributed a zero score.
	DegenerateFolds int `json:"degenerate_folds"`
}

// Request asks the engine for one ranked list.
type Request struct {
	// Method selects the ranking. Defaults to hybrid.
	Method Method `json:"method"`

	// Alpha is the hybrid weight. Nil selects the best alpha of the last
	// sweep. Ignored for the other methods.
	Alpha *float64 `json:"alpha,omitempty"`

	// K is the list length. Defaults to Config.TopN.
	K int `json:"k"`

	// Diversify applies the registered rerankers before truncation.
	Diversify bool `json:"diversify"`
}

// Result is the outcome of a full engine run.
type Result struct {
	Reference  string       `json:"reference"`
	CohortSize int          `json:"cohort_size"`
	Sweep      *SweepResult `json:"sweep"`

	Popularity  Ranking `json:"popularity"`
	Similarity  Ranking `json:"similarity"`
	Hybrid      Ranking `json:"hybrid"`
	Diversified Ranking `json:"diversified"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// DataProvider supplies the cleaned dataset. Implemented by the preparation stage.
type DataProvider interface {
	Load(ctx context.Context) (*Dataset, error)
}

// PopularityRanker ranks catalog items by their reception inside a cohort.
type PopularityRanker interface {
	Rank(ctx context.Context, ratings []Rating, catalog []Book, cohort Cohort, excluded string) (Ranking, error)
}

// SimilarityRanker ranks catalog items by closeness to a reference item.
type SimilarityRanker interface {
	Rank(ctx context.Context, ratings []Rating, catalog []Book, reference string) (Ranking, error)
}

// Fuser blends a popularity and a similarity ranking with weight alpha.
type Fuser interface {
	Fuse(alpha float64, pop, sim Ranking) (Ranking, error)
}

// Evaluator scores a grid of blending weights by cross-validation.
type Evaluator interface {
	Sweep(ctx context.Context, data *Dataset, cohort Cohort, reference string, alphas []float64) (*SweepResult, error)
}

// Reranker post-processes a ranking, for example to diversify authors.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank returns up to k entries with positions reassigned.
	Rerank(ctx context.Context, entries Ranking, k int) Ranking
}
