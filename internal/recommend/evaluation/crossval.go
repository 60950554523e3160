// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// Degenerate fold reasons, used as metric labels.
const (
	ReasonEmptyFold        = "empty_fold"
	ReasonNoScorableUsers  = "no_scorable_users"
	ReasonReferenceMissing = "reference_missing"
)

// Config contains cross-validation parameters.
type Config struct {
	// Folds is the number of folds. Default: 4.
	Folds int

	// TopN is the length of the list scored against held-out fans. Default: 10.
	TopN int

	// Seed drives the fold shuffle. Default: 444.
	Seed int64

	// Workers bounds concurrent (alpha, fold) evaluations. Default: 1.
	Workers int
}

// DefaultConfig returns the cross-validation defaults.
func DefaultConfig() Config {
	return Config{
		Folds:   4,
		TopN:    10,
		Seed:    444,
		Workers: 1,
	}
}

// CrossValidator scores blending weights by k-fold cross-validation over a
// fan cohort.
//
// For each fold the held-out fans are removed from the ratings entirely, the
// popularity ranking is computed over the remaining fans and the similarity
// ranking over the remaining users, and the hybrid top-N list is scored by
// the held-out fans' own ratings of the recommended books.
type CrossValidator struct {
	config Config
	logger zerolog.Logger

	popularity recommend.PopularityRanker
	similarity recommend.SimilarityRanker
	fuser      recommend.Fuser
}

// NewCrossValidator creates a cross-validator. Non-positive config values
// take their defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCrossValidator(cfg Config, pop recommend.PopularityRanker, sim recommend.SimilarityRanker, fuser recommend.Fuser, logger zerolog.Logger) *CrossValidator {
	defaults := DefaultConfig()
	if cfg.Folds <= 0 {
		cfg.Folds = defaults.Folds
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaults.TopN
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}

	return &CrossValidator{
		config:     cfg,
		logger:     logger.With().Str("component", "evaluation").Logger(),
		popularity: pop,
		similarity: sim,
		fuser:      fuser,
	}
}

// Config returns the effective configuration.
func (cv *CrossValidator) Config() Config {
	return cv.config
}

// Evaluate returns the cross-validated satisfaction score of one alpha.
func (cv *CrossValidator) Evaluate(ctx context.Context, alpha float64, data *recommend.Dataset, cohort recommend.Cohort, reference string) (float64, error) {
	res, err := cv.Sweep(ctx, data, cohort, reference, []float64{alpha})
	if err != nil {
		return 0, err
	}
	return res.Scores[0].Score, nil
}

// fold holds everything about one fold that does not depend on alpha.
type fold struct {
	index int
	test  []int

	// pop and sim are computed on the training split
	pop recommend.Ranking
	sim recommend.Ranking

	// testRatings maps each held-out fan to their ratings by item
	testRatings map[int]map[string]float64

	// degenerate is set when the fold cannot be scored at any alpha
	degenerate string
}

// prepareFold builds the training split of fold index and ranks it.
func (cv *CrossValidator) prepareFold(ctx context.Context, data *recommend.Dataset, cohort recommend.Cohort, assignment *recommend.FoldAssignment, index int, reference string) (*fold, error) {
	f := &fold{
		index: index,
		test:  assignment.Members(index),
	}
	if len(f.test) == 0 {
		f.degenerate = ReasonEmptyFold
		return f, nil
	}

	testSet := recommend.NewCohort(f.test...)
	trainFans := cohort.Without(testSet)
	train := data.WithoutUsers(testSet)

	pop, err := cv.popularity.Rank(ctx, train.Ratings, data.Catalog, trainFans, reference)
	if err != nil {
		return nil, fmt.Errorf("fold %d popularity: %w", index, err)
	}
	sim, err := cv.similarity.Rank(ctx, train.Ratings, data.Catalog, reference)
	if errors.Is(err, recommend.ErrReferenceNotFound) {
		f.degenerate = ReasonReferenceMissing
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fold %d similarity: %w", index, err)
	}
	f.pop = pop
	f.sim = sim

	f.testRatings = make(map[int]map[string]float64, len(f.test))
	for i := range data.Ratings {
		r := &data.Ratings[i]
		if !testSet.Contains(r.UserID) {
			continue
		}
		byItem, ok := f.testRatings[r.UserID]
		if !ok {
			byItem = make(map[string]float64)
			f.testRatings[r.UserID] = byItem
		}
		byItem[r.ItemID] = r.Value
	}

	return f, nil
}

// scoreFold fuses the fold's rankings at alpha and returns the mean, over
// held-out fans who rated at least one recommended book, of their mean
// rating of the recommended books they rated. A fold that cannot be scored
// returns 0 and the reason.
func (cv *CrossValidator) scoreFold(alpha float64, f *fold) (float64, string, error) {
	if f.degenerate != "" {
		return 0, f.degenerate, nil
	}

	fused, err := cv.fuser.Fuse(alpha, f.pop, f.sim)
	if err != nil {
		return 0, "", fmt.Errorf("fold %d fuse: %w", f.index, err)
	}
	top := fused.Top(cv.config.TopN)

	var total float64
	var scorable int
	for _, user := range f.test {
		rated := f.testRatings[user]
		var sum float64
		var n int
		for i := range top {
			if v, ok := rated[top[i].ItemID]; ok {
				sum += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		total += sum / float64(n)
		scorable++
	}

	if scorable == 0 {
		return 0, ReasonNoScorableUsers, nil
	}
	return total / float64(scorable), "", nil
}
