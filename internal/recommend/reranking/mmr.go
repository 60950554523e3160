// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package reranking

import (
	"context"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// maxRerankSize limits slice allocations; k is also bounded by len(entries).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking with author overlap as
// the similarity. Unlike AuthorDiversity it never drops an author outright;
// a repeated author is pushed down by a penalty instead.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * rel(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = input order, 0.0 = authors first)
//   - rel(i): 1 - pos(i)/n, the relevance implied by input position
//   - sim(i, s): 1 when i and s share a normalized author, else 0
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// Lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker.
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank greedily selects k entries by MMR score. Ties keep input order.
func (m *MMR) Rerank(ctx context.Context, entries recommend.Ranking, k int) recommend.Ranking {
	if len(entries) == 0 {
		return recommend.Ranking{}
	}
	if k <= 0 || k > len(entries) {
		k = len(entries)
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}

	// Early return if lambda is 1.0 (pure relevance)
	if m.lambda >= 1.0 {
		out := entries.Top(k)
		out.AssignRanks()
		return out
	}

	n := len(entries)
	authors := make([]string, n)
	for i := range entries {
		authors[i] = NormalizeAuthor(entries[i].Author)
	}

	selected := make(recommend.Ranking, 0, k)
	selectedIdx := make([]bool, n)
	selectedAuthors := make(map[string]struct{}, k)

	for len(selected) < k {
		bestIdx := -1
		bestMMR := 0.0

		for i := 0; i < n; i++ {
			if selectedIdx[i] {
				continue
			}

			relevance := 1 - float64(i)/float64(n)
			maxSim := 0.0
			if _, ok := selectedAuthors[authors[i]]; ok {
				maxSim = 1
			}

			score := m.lambda*relevance - (1-m.lambda)*maxSim
			if bestIdx < 0 || score > bestMMR {
				bestMMR = score
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		selected = append(selected, entries[bestIdx])
		selectedIdx[bestIdx] = true
		selectedAuthors[authors[bestIdx]] = struct{}{}
	}

	selected.AssignRanks()
	return selected
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
