// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package algorithms

import (
	"context"
	"fmt"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// ctxCheckInterval is how many items a ranker processes between context checks.
const ctxCheckInterval = 1024

// baseRanker provides common functionality for all rankers.
type baseRanker struct {
	name     string
	tieBreak recommend.TieBreak
}

// newBaseRanker creates a base ranker. A nil tie-break selects title descending.
func newBaseRanker(name string, tb recommend.TieBreak) baseRanker {
	if tb == nil {
		tb = recommend.TitleDescending
	}
	return baseRanker{name: name, tieBreak: tb}
}

// Name returns the ranker identifier.
func (b *baseRanker) Name() string {
	return b.name
}

// checkContext returns the context error, if any, wrapped with the ranker name.
func (b *baseRanker) checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	return nil
}

// entryFor builds an unranked entry from a catalog book.
func entryFor(book *recommend.Book, score float64) recommend.RankEntry {
	return recommend.RankEntry{
		ItemID: book.ItemID,
		Title:  book.Title,
		Author: book.Author,
		Score:  score,
	}
}
