// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package algorithms

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// scenarioRatings is the six-rating example: three fans of A, one of whom
// rated A 0.
func scenarioRatings() []recommend.Rating {
	return []recommend.Rating{
		{UserID: 1, ItemID: "A", Value: 10},
		{UserID: 1, ItemID: "B", Value: 2},
		{UserID: 2, ItemID: "A", Value: 9},
		{UserID: 2, ItemID: "B", Value: 8},
		{UserID: 3, ItemID: "A", Value: 0},
		{UserID: 3, ItemID: "C", Value: 10},
	}
}

func scenarioCatalog() []recommend.Book {
	return []recommend.Book{
		{ItemID: "A", Title: "A", Author: "Author A"},
		{ItemID: "B", Title: "B", Author: "Author B"},
		{ItemID: "C", Title: "C", Author: "Author C"},
	}
}

func TestNewPopularity(t *testing.T) {
	tests := []struct {
		name           string
		cfg            PopularityConfig
		wantMinSupport int
	}{
		{name: "keeps configured support", cfg: PopularityConfig{MinSupport: 5}, wantMinSupport: 5},
		{name: "zero support is allowed", cfg: PopularityConfig{}, wantMinSupport: 0},
		{name: "negative support clamps to zero", cfg: PopularityConfig{MinSupport: -3}, wantMinSupport: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPopularity(tt.cfg)
			if p.Name() != "popularity" {
				t.Errorf("Name() = %q, want popularity", p.Name())
			}
			if p.MinSupport() != tt.wantMinSupport {
				t.Errorf("MinSupport() = %d, want %d", p.MinSupport(), tt.wantMinSupport)
			}
		})
	}
}

func TestPopularity_Rank(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		minSupport int
		cohort     recommend.Cohort
		wantOrder  []string
		wantScores []float64
	}{
		{
			name:       "scenario with support 1 ranks C above B",
			minSupport: 1,
			cohort:     recommend.NewCohort(1, 2, 3),
			wantOrder:  []string{"C", "B"},
			wantScores: []float64{10, 5},
		},
		{
			name:       "support 2 zeroes the single-rating book",
			minSupport: 2,
			cohort:     recommend.NewCohort(1, 2, 3),
			wantOrder:  []string{"B", "C"},
			wantScores: []float64{5, 0},
		},
		{
			name:       "ratings outside cohort are ignored",
			minSupport: 1,
			cohort:     recommend.NewCohort(2),
			wantOrder:  []string{"B", "C"},
			wantScores: []float64{8, 0},
		},
		{
			name:       "empty cohort yields all-zero ranking in tie-break order",
			minSupport: 1,
			cohort:     recommend.NewCohort(),
			wantOrder:  []string{"C", "B"},
			wantScores: []float64{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPopularity(PopularityConfig{MinSupport: tt.minSupport})

			got, err := p.Rank(ctx, scenarioRatings(), scenarioCatalog(), tt.cohort, "A")
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}

			if !reflect.DeepEqual(got.ItemIDs(), tt.wantOrder) {
				t.Errorf("order = %v, want %v", got.ItemIDs(), tt.wantOrder)
			}
			for i := range got {
				if got[i].Score != tt.wantScores[i] {
					t.Errorf("score[%d] = %v, want %v", i, got[i].Score, tt.wantScores[i])
				}
				if got[i].Rank != i+1 {
					t.Errorf("rank[%d] = %d, want %d", i, got[i].Rank, i+1)
				}
			}
		})
	}
}

func TestPopularity_RankEmptyRatings(t *testing.T) {
	p := NewPopularity(PopularityConfig{MinSupport: 5})

	got, err := p.Rank(context.Background(), nil, scenarioCatalog(), recommend.NewCohort(1), "")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (every catalog book)", len(got))
	}
	for _, e := range got {
		if e.Score != 0 {
			t.Errorf("%s score = %v, want 0", e.ItemID, e.Score)
		}
	}
}

func TestPopularity_IgnoresRatingsOutsideCatalog(t *testing.T) {
	ratings := append(scenarioRatings(), recommend.Rating{UserID: 1, ItemID: "Z", Value: 10})
	p := NewPopularity(PopularityConfig{MinSupport: 1})

	got, err := p.Rank(context.Background(), ratings, scenarioCatalog(), recommend.NewCohort(1, 2, 3), "A")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	if got.Position("Z") != 0 {
		t.Error("book outside the catalog appeared in the ranking")
	}
}

func TestPopularity_Monotonicity(t *testing.T) {
	catalog := []recommend.Book{
		{ItemID: "1", Title: "Alpha"},
		{ItemID: "2", Title: "Beta"},
		{ItemID: "3", Title: "Gamma"},
		{ItemID: "4", Title: "Delta"},
	}
	base := []recommend.Rating{
		{UserID: 1, ItemID: "1", Value: 7},
		{UserID: 1, ItemID: "2", Value: 4},
		{UserID: 1, ItemID: "3", Value: 6},
		{UserID: 2, ItemID: "1", Value: 8},
		{UserID: 2, ItemID: "2", Value: 5},
		{UserID: 2, ItemID: "4", Value: 6},
		{UserID: 3, ItemID: "2", Value: 3},
		{UserID: 3, ItemID: "3", Value: 6},
		{UserID: 3, ItemID: "4", Value: 7},
	}
	cohort := recommend.NewCohort(1, 2, 3)
	p := NewPopularity(PopularityConfig{MinSupport: 1})
	ctx := context.Background()

	before, err := p.Rank(ctx, base, catalog, cohort, "")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	for i := range base {
		for _, bump := range []float64{0.5, 1, 3, 10} {
			ratings := make([]recommend.Rating, len(base))
			copy(ratings, base)
			ratings[i].Value += bump
			if ratings[i].Value > recommend.MaxRating {
				ratings[i].Value = recommend.MaxRating
			}

			after, err := p.Rank(ctx, ratings, catalog, cohort, "")
			if err != nil {
				t.Fatalf("Rank() error = %v", err)
			}

			item := ratings[i].ItemID
			if after.Position(item) > before.Position(item) {
				t.Errorf("raising rating %d by %v moved %s from %d to %d",
					i, bump, item, before.Position(item), after.Position(item))
			}
		}
	}
}

func TestPopularity_Idempotent(t *testing.T) {
	p := NewPopularity(PopularityConfig{MinSupport: 1})
	ctx := context.Background()
	cohort := recommend.NewCohort(1, 2, 3)

	first, err := p.Rank(ctx, scenarioRatings(), scenarioCatalog(), cohort, "A")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}
	second, err := p.Rank(ctx, scenarioRatings(), scenarioCatalog(), cohort, "A")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second call = %v, want %v", second, first)
	}
}

func TestPopularity_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPopularity(PopularityConfig{})
	if _, err := p.Rank(ctx, scenarioRatings(), scenarioCatalog(), recommend.NewCohort(1), "A"); err == nil {
		t.Error("Rank() error = nil, want context error")
	}
}

func TestPopularity_TitleAscendingTieBreak(t *testing.T) {
	p := NewPopularity(PopularityConfig{MinSupport: 1, TieBreak: recommend.TitleAscending})

	got, err := p.Rank(context.Background(), nil, scenarioCatalog(), recommend.NewCohort(), "")
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(got.Titles(), want) {
		t.Errorf("titles = %v, want %v", got.Titles(), want)
	}
}
