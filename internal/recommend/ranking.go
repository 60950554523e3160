// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package recommend

import (
	"fmt"
	"math"
	"sort"
)

// Ranking is an ordered list of rank entries, best first.
type Ranking []RankEntry

// TieBreak reports whether a sorts before b once their primary keys are
// equal. Implementations must define a total order so that sorting is
// reproducible.
type TieBreak func(a, b RankEntry) bool

// TitleDescending orders by title, Z before A, then by item ID descending.
// It is the default secondary key.
func TitleDescending(a, b RankEntry) bool {
	if a.Title != b.Title {
		return a.Title > b.Title
	}
	return a.ItemID > b.ItemID
}

// TitleAscending orders by title, A before Z, then by item ID ascending.
func TitleAscending(a, b RankEntry) bool {
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.ItemID < b.ItemID
}

// Tie-break names accepted by ParseTieBreak.
const (
	TieBreakTitleDesc = "title_desc"
	TieBreakTitleAsc  = "title_asc"
)

// ParseTieBreak resolves a tie-break by name. Empty selects TitleDescending.
func ParseTieBreak(name string) (TieBreak, error) {
	switch name {
	case "", TieBreakTitleDesc:
		return TitleDescending, nil
	case TieBreakTitleAsc:
		return TitleAscending, nil
	default:
		return nil, fmt.Errorf("unknown tie-break %q", name)
	}
}

// SortByScoreDesc orders entries by descending Score, resolving ties with tb,
// and assigns 1-based ranks.
func (r Ranking) SortByScoreDesc(tb TieBreak) {
	if tb == nil {
		tb = TitleDescending
	}
	sort.Slice(r, func(i, j int) bool {
		if r[i].Score != r[j].Score {
			return r[i].Score > r[j].Score
		}
		return tb(r[i], r[j])
	})
	r.AssignRanks()
}

// SortByScoreAsc orders entries by ascending Score, resolving ties with tb,
// and assigns 1-based ranks. Scores within scoreEpsilon of each other are
// ties: fused ranks that are equal in exact arithmetic can differ in the
// last bit.
func (r Ranking) SortByScoreAsc(tb TieBreak) {
	if tb == nil {
		tb = TitleDescending
	}
	sort.Slice(r, func(i, j int) bool {
		if !nearlyEqual(r[i].Score, r[j].Score) {
			return r[i].Score < r[j].Score
		}
		return tb(r[i], r[j])
	})
	r.AssignRanks()
}

// scoreEpsilon is the relative tolerance of nearlyEqual. Distinct fused ranks
// on an alpha grid differ by far more.
const scoreEpsilon = 1e-9

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= scoreEpsilon*math.Max(1, math.Abs(a))
}

// AssignRanks numbers entries 1..N in their current order.
func (r Ranking) AssignRanks() {
	for i := range r {
		r[i].Rank = i + 1
	}
}

// Top returns a copy of the first n entries.
func (r Ranking) Top(n int) Ranking {
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	out := make(Ranking, n)
	copy(out, r[:n])
	return out
}

// Titles returns the titles in rank order.
func (r Ranking) Titles() []string {
	titles := make([]string, len(r))
	for i := range r {
		titles[i] = r[i].Title
	}
	return titles
}

// ItemIDs returns the item IDs in rank order.
func (r Ranking) ItemIDs() []string {
	ids := make([]string, len(r))
	for i := range r {
		ids[i] = r[i].ItemID
	}
	return ids
}

// Position returns the rank of itemID, or 0 if it is absent.
func (r Ranking) Position(itemID string) int {
	for i := range r {
		if r[i].ItemID == itemID {
			return r[i].Rank
		}
	}
	return 0
}

// AlphaGrid returns points evenly spaced values covering [0, 1] with both
// endpoints included.
func AlphaGrid(points int) ([]float64, error) {
	if points < 2 {
		return nil, fmt.Errorf("alpha grid needs at least 2 points, got %d", points)
	}
	grid := make([]float64, points)
	step := 1.0 / float64(points-1)
	for i := range grid {
		grid[i] = float64(i) * step
	}
	grid[points-1] = 1
	return grid, nil
}
