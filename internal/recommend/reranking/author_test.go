// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package reranking

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

func entries(pairs ...string) recommend.Ranking {
	r := make(recommend.Ranking, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r = append(r, recommend.RankEntry{ItemID: pairs[i], Title: pairs[i], Author: pairs[i+1]})
	}
	r.AssignRanks()
	return r
}

func TestNormalizeAuthor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"J. R. R. Tolkien", "J.R.R.TOLKIEN"},
		{"J.R.R. TOLKIEN", "J.R.R.TOLKIEN"},
		{"Terry Pratchett", "TERRYPRATCHETT"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeAuthor(tt.in); got != tt.want {
				t.Errorf("NormalizeAuthor(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuthorDiversity_Rerank(t *testing.T) {
	input := entries(
		"hobbit", "J. R. R. Tolkien",
		"silmarillion", "J.R.R. TOLKIEN",
		"mort", "Terry Pratchett",
		"dune", "Frank Herbert",
		"guards", "terry pratchett",
		"earthsea", "Ursula K. Le Guin",
	)

	tests := []struct {
		name string
		k    int
		want []string
	}{
		{name: "keeps first per author", k: 10, want: []string{"hobbit", "mort", "dune", "earthsea"}},
		{name: "truncates to k", k: 2, want: []string{"hobbit", "mort"}},
		{name: "non-positive k keeps all authors", k: 0, want: []string{"hobbit", "mort", "dune", "earthsea"}},
	}

	ad := NewAuthorDiversity()
	if ad.Name() != "author_diversity" {
		t.Errorf("Name() = %q, want author_diversity", ad.Name())
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ad.Rerank(context.Background(), input, tt.k)
			if !reflect.DeepEqual(got.ItemIDs(), tt.want) {
				t.Errorf("Rerank() = %v, want %v", got.ItemIDs(), tt.want)
			}
			for i := range got {
				if got[i].Rank != i+1 {
					t.Errorf("rank[%d] = %d, want %d", i, got[i].Rank, i+1)
				}
			}
		})
	}

	// Input ranks are untouched
	if input[2].Rank != 3 {
		t.Errorf("input mutated: rank of mort = %d, want 3", input[2].Rank)
	}
}

func TestAuthorDiversity_Empty(t *testing.T) {
	got := NewAuthorDiversity().Rerank(context.Background(), nil, 10)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
