// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package algorithms

import (
	"strconv"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// Hybrid fuses a popularity ranking and a similarity ranking by rank position:
//
//	fused(item) = alpha*popRank(item) + (1-alpha)*simRank(item)
//
// Lower fused values rank higher. The two inputs are joined on title, which
// the preparation stage guarantees to be unique. A book missing from one
// input takes the fallback rank max(len(pop), len(sim)) + 1 there.
type Hybrid struct {
	baseRanker
}

// HybridConfig contains configuration for the hybrid fuser.
type HybridConfig struct {
	// TieBreak orders books with equal fused ranks. Nil selects title descending.
	TieBreak recommend.TieBreak
}

// NewHybrid creates a new hybrid fuser.
func NewHybrid(cfg HybridConfig) *Hybrid {
	return &Hybrid{
		baseRanker: newBaseRanker(string(recommend.MethodHybrid), cfg.TieBreak),
	}
}

// fusedItem accumulates one title's positions in both inputs.
type fusedItem struct {
	entry   recommend.RankEntry
	popRank int
	simRank int
}

// Fuse blends pop and sim with weight alpha. Entry scores of the result hold
// the fused rank value. Inputs are read in their given order; their Rank
// fields are not consulted.
func (h *Hybrid) Fuse(alpha float64, pop, sim recommend.Ranking) (recommend.Ranking, error) {
	if err := recommend.ValidateAlpha(alpha); err != nil {
		return nil, err
	}

	fallback := len(pop)
	if len(sim) > fallback {
		fallback = len(sim)
	}
	fallback++

	items := make(map[string]*fusedItem, fallback)
	order := make([]string, 0, fallback)

	for i := range pop {
		e := pop[i]
		if _, dup := items[e.Title]; dup {
			return nil, &recommend.DataContractError{Field: "popularity.title", Value: e.Title, Reason: "title repeated within ranking"}
		}
		items[e.Title] = &fusedItem{entry: e, popRank: i + 1, simRank: fallback}
		order = append(order, e.Title)
	}

	simSeen := make(map[string]struct{}, len(sim))
	for i := range sim {
		e := sim[i]
		if _, dup := simSeen[e.Title]; dup {
			return nil, &recommend.DataContractError{Field: "similarity.title", Value: e.Title, Reason: "title repeated within ranking"}
		}
		simSeen[e.Title] = struct{}{}

		if it, ok := items[e.Title]; ok {
			if it.entry.ItemID != e.ItemID {
				return nil, &recommend.DataContractError{
					Field:  "title",
					Value:  e.Title,
					Reason: "maps to item " + strconv.Quote(it.entry.ItemID) + " and item " + strconv.Quote(e.ItemID),
				}
			}
			it.simRank = i + 1
			continue
		}
		items[e.Title] = &fusedItem{entry: e, popRank: fallback, simRank: i + 1}
		order = append(order, e.Title)
	}

	fused := make(recommend.Ranking, 0, len(order))
	for _, title := range order {
		it := items[title]
		entry := it.entry
		entry.Score = alpha*float64(it.popRank) + (1-alpha)*float64(it.simRank)
		fused = append(fused, entry)
	}

	fused.SortByScoreAsc(h.tieBreak)
	return fused, nil
}
