// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package algorithms

import (
	"context"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// Popularity ranks books by how well a cohort received them.
//
// The popularity score is computed as:
//
//	score(item) = mean(rating) over cohort members who rated item
//
// when at least MinSupport cohort members rated the item, and 0 otherwise.
// Every catalog book except the excluded one appears in the output, so an
// empty cohort yields a complete all-zero ranking ordered by the tie-break.
type Popularity struct {
	baseRanker

	minSupport int
}

// PopularityConfig contains configuration for the popularity ranker.
type PopularityConfig struct {
	// MinSupport is the minimum number of cohort ratings before the mean
	// counts. Negative values are treated as 0.
	MinSupport int

	// TieBreak orders books with equal scores. Nil selects title descending.
	TieBreak recommend.TieBreak
}

// NewPopularity creates a new popularity ranker.
func NewPopularity(cfg PopularityConfig) *Popularity {
	if cfg.MinSupport < 0 {
		cfg.MinSupport = 0
	}

	return &Popularity{
		baseRanker: newBaseRanker(string(recommend.MethodPopularity), cfg.TieBreak),
		minSupport: cfg.MinSupport,
	}
}

// MinSupport returns the configured minimum support.
func (p *Popularity) MinSupport() int {
	return p.minSupport
}

type meanAccumulator struct {
	sum   float64
	count int
}

// Rank scores every catalog book except excluded by its mean rating inside
// cohort. Ratings of books missing from the catalog are ignored.
func (p *Popularity) Rank(ctx context.Context, ratings []recommend.Rating, catalog []recommend.Book, cohort recommend.Cohort, excluded string) (recommend.Ranking, error) {
	if err := p.checkContext(ctx); err != nil {
		return nil, err
	}

	stats := make(map[string]*meanAccumulator)
	for i := range ratings {
		r := &ratings[i]
		if !cohort.Contains(r.UserID) {
			continue
		}
		acc, ok := stats[r.ItemID]
		if !ok {
			acc = &meanAccumulator{}
			stats[r.ItemID] = acc
		}
		acc.sum += r.Value
		acc.count++
	}

	ranking := make(recommend.Ranking, 0, len(catalog))
	for i := range catalog {
		book := &catalog[i]
		if book.ItemID == excluded {
			continue
		}

		var score float64
		if acc, ok := stats[book.ItemID]; ok && acc.count > 0 && acc.count >= p.minSupport {
			score = acc.sum / float64(acc.count)
		}
		ranking = append(ranking, entryFor(book, score))
	}

	ranking.SortByScoreDesc(p.tieBreak)
	return ranking, nil
}
