// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/fanshelf/internal/metrics"
	"github.com/tomtom215/fanshelf/internal/recommend"
)

// Sweep cross-validates every alpha on one shared fold partition and selects
// the alpha with the highest score. Ties go to the lower alpha.
//
// Folds are ranked once and reused by every alpha. Up to Config.Workers
// cells run at once; each cell writes its own slot of a pre-sized
// [alpha][fold] table, and the table is reduced in index order, so the
// result does not depend on scheduling.
func (cv *CrossValidator) Sweep(ctx context.Context, data *recommend.Dataset, cohort recommend.Cohort, reference string, alphas []float64) (*recommend.SweepResult, error) {
	if len(alphas) == 0 {
		return nil, errors.New("sweep needs at least one alpha")
	}
	for _, a := range alphas {
		if err := recommend.ValidateAlpha(a); err != nil {
			return nil, err
		}
	}
	if data == nil {
		return nil, errors.New("sweep needs a dataset")
	}
	if !rated(data.Ratings, reference) {
		return nil, fmt.Errorf("%w: %s", recommend.ErrReferenceNotFound, reference)
	}

	start := time.Now()
	k := cv.config.Folds

	assignment, err := AssignFolds(cohort, k, cv.config.Seed)
	if err != nil {
		return nil, err
	}

	folds, err := cv.prepareFolds(ctx, data, cohort, assignment, reference)
	if err != nil {
		return nil, err
	}

	scores := make([][]float64, len(alphas))
	reasons := make([][]string, len(alphas))
	for i := range alphas {
		scores[i] = make([]float64, k)
		reasons[i] = make([]string, k)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cv.config.Workers)
	for ai := range alphas {
		for fi := 0; fi < k; fi++ {
			ai, fi := ai, fi
			g.Go(func() error {
				if err := gCtx.Err(); err != nil {
					return err
				}
				score, reason, err := cv.scoreFold(alphas[ai], folds[fi])
				if err != nil {
					return fmt.Errorf("alpha %v: %w", alphas[ai], err)
				}
				scores[ai][fi] = score
				reasons[ai][fi] = reason
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &recommend.SweepResult{
		Scores: make([]recommend.AlphaScore, len(alphas)),
		Folds:  assignment,
	}
	for ai, alpha := range alphas {
		var sum float64
		for fi := 0; fi < k; fi++ {
			sum += scores[ai][fi]
			if reason := reasons[ai][fi]; reason != "" {
				result.DegenerateFolds++
				metrics.RecordDegenerateFold(reason)
				cv.logger.Warn().
					Int("fold", fi).
					Float64("alpha", alpha).
					Str("reason", reason).
					Int("test_users", len(folds[fi].test)).
					Msg("degenerate fold scored 0")
			}
		}
		mean := sum / float64(k)
		result.Scores[ai] = recommend.AlphaScore{
			Alpha:      alpha,
			Score:      mean,
			FoldScores: scores[ai],
		}

		if ai == 0 || mean > result.BestScore || (mean == result.BestScore && alpha < result.BestAlpha) {
			result.BestScore = mean
			result.BestAlpha = alpha
		}
	}

	duration := time.Since(start)
	plain := make([]float64, len(alphas))
	for i := range result.Scores {
		plain[i] = result.Scores[i].Score
	}
	metrics.RecordSweep(duration, alphas, plain, result.BestAlpha)
	for fi := range folds {
		metrics.SetFoldTestUsers(fi, len(folds[fi].test))
	}

	cv.logger.Info().
		Int("alphas", len(alphas)).
		Int("folds", k).
		Int("fans", cohort.Len()).
		Float64("best_alpha", result.BestAlpha).
		Float64("best_score", result.BestScore).
		Int("degenerate_folds", result.DegenerateFolds).
		Dur("duration", duration).
		Msg("alpha sweep complete")

	return result, nil
}

// prepareFolds ranks the training split of every fold.
func (cv *CrossValidator) prepareFolds(ctx context.Context, data *recommend.Dataset, cohort recommend.Cohort, assignment *recommend.FoldAssignment, reference string) ([]*fold, error) {
	folds := make([]*fold, assignment.K)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cv.config.Workers)
	for fi := 0; fi < assignment.K; fi++ {
		fi := fi
		g.Go(func() error {
			f, err := cv.prepareFold(gCtx, data, cohort, assignment, fi, reference)
			if err != nil {
				return err
			}
			folds[fi] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return folds, nil
}

// rated reports whether anyone rated item.
func rated(ratings []recommend.Rating, item string) bool {
	for i := range ratings {
		if ratings[i].ItemID == item {
			return true
		}
	}
	return false
}
