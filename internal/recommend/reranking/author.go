// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package reranking

import (
	"context"
	"strings"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// NormalizeAuthor folds an author string for comparison: uppercased with
// every space removed, so "J. R. R. Tolkien" and "J.R.R. TOLKIEN" match.
func NormalizeAuthor(author string) string {
	return strings.ToUpper(strings.ReplaceAll(author, " ", ""))
}

// AuthorDiversity keeps the first entry of each author and drops the rest.
// Relative order is preserved and ranks are reassigned.
type AuthorDiversity struct{}

// NewAuthorDiversity creates an author diversity reranker.
func NewAuthorDiversity() *AuthorDiversity {
	return &AuthorDiversity{}
}

// Name returns the reranker identifier.
func (a *AuthorDiversity) Name() string {
	return "author_diversity"
}

// Rerank returns up to k entries with pairwise distinct normalized authors.
// A non-positive k keeps every distinct author.
func (a *AuthorDiversity) Rerank(ctx context.Context, entries recommend.Ranking, k int) recommend.Ranking {
	if k <= 0 || k > len(entries) {
		k = len(entries)
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}

	seen := make(map[string]struct{}, k)
	out := make(recommend.Ranking, 0, k)
	for i := range entries {
		if len(out) >= k {
			break
		}
		key := NormalizeAuthor(entries[i].Author)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entries[i])
	}

	out.AssignRanks()
	return out
}

// Ensure AuthorDiversity implements the interface.
var _ recommend.Reranker = (*AuthorDiversity)(nil)
