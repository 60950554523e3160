// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package algorithms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"reflect"
	"strconv"
	"testing"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

func ranked(entries ...recommend.RankEntry) recommend.Ranking {
	r := recommend.Ranking(entries)
	r.AssignRanks()
	return r
}

func book(id string) recommend.RankEntry {
	return recommend.RankEntry{ItemID: id, Title: "Title " + id}
}

func TestHybrid_ScenarioEndToEnd(t *testing.T) {
	ctx := context.Background()
	cohort := recommend.NewCohort(1, 2, 3)

	pop, err := NewPopularity(PopularityConfig{MinSupport: 1}).Rank(ctx, scenarioRatings(), scenarioCatalog(), cohort, "A")
	if err != nil {
		t.Fatalf("popularity Rank() error = %v", err)
	}
	sim, err := NewSimilarity(SimilarityConfig{}).Rank(ctx, scenarioRatings(), scenarioCatalog(), "A")
	if err != nil {
		t.Fatalf("similarity Rank() error = %v", err)
	}

	tests := []struct {
		alpha float64
		want  []string
	}{
		{alpha: 1, want: []string{"C", "B"}},
		// C and B tie at 1.5; title descending puts C first
		{alpha: 0.5, want: []string{"C", "B"}},
		{alpha: 0, want: []string{"B", "C"}},
	}

	h := NewHybrid(HybridConfig{})
	for _, tt := range tests {
		t.Run("alpha="+strconv.FormatFloat(tt.alpha, 'f', -1, 64), func(t *testing.T) {
			got, err := h.Fuse(tt.alpha, pop, sim)
			if err != nil {
				t.Fatalf("Fuse() error = %v", err)
			}
			if !reflect.DeepEqual(got.ItemIDs(), tt.want) {
				t.Errorf("order = %v, want %v", got.ItemIDs(), tt.want)
			}
		})
	}
}

func TestHybrid_FusionIdentity(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(11))

	for trial := 0; trial < 20; trial++ {
		var catalog []recommend.Book
		for i := 0; i < 12; i++ {
			id := strconv.Itoa(i)
			catalog = append(catalog, recommend.Book{ItemID: id, Title: "Book " + id})
		}
		var ratings []recommend.Rating
		for user := 1; user <= 25; user++ {
			for i := range catalog {
				if i == 0 || rng.Float64() < 0.4 {
					ratings = append(ratings, recommend.Rating{UserID: user, ItemID: catalog[i].ItemID, Value: float64(rng.Intn(11))})
				}
			}
		}
		cohort := recommend.SelectFans(ratings, "0", 5)

		pop, err := NewPopularity(PopularityConfig{MinSupport: 2}).Rank(ctx, ratings, catalog, cohort, "0")
		if err != nil {
			t.Fatalf("popularity Rank() error = %v", err)
		}
		sim, err := NewSimilarity(SimilarityConfig{}).Rank(ctx, ratings, catalog, "0")
		if err != nil {
			t.Fatalf("similarity Rank() error = %v", err)
		}

		h := NewHybrid(HybridConfig{})
		atZero, err := h.Fuse(0, pop, sim)
		if err != nil {
			t.Fatalf("Fuse(0) error = %v", err)
		}
		atOne, err := h.Fuse(1, pop, sim)
		if err != nil {
			t.Fatalf("Fuse(1) error = %v", err)
		}

		if !reflect.DeepEqual(atZero.ItemIDs(), sim.ItemIDs()) {
			t.Errorf("trial %d: Fuse(0) = %v, want similarity order %v", trial, atZero.ItemIDs(), sim.ItemIDs())
		}
		if !reflect.DeepEqual(atOne.ItemIDs(), pop.ItemIDs()) {
			t.Errorf("trial %d: Fuse(1) = %v, want popularity order %v", trial, atOne.ItemIDs(), pop.ItemIDs())
		}
	}
}

func TestHybrid_FallbackRank(t *testing.T) {
	pop := ranked(book("x"), book("y"))
	sim := ranked(book("z"))

	got, err := NewHybrid(HybridConfig{}).Fuse(0.5, pop, sim)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}

	// fallback = max(2, 1) + 1 = 3
	want := map[string]float64{
		"x": 0.5*1 + 0.5*3,
		"y": 0.5*2 + 0.5*3,
		"z": 0.5*3 + 0.5*1,
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, e := range got {
		if e.Score != want[e.ItemID] {
			t.Errorf("score(%s) = %v, want %v", e.ItemID, e.Score, want[e.ItemID])
		}
	}
	// x and z tie at 2; title descending puts "Title z" first
	if wantOrder := []string{"z", "x", "y"}; !reflect.DeepEqual(got.ItemIDs(), wantOrder) {
		t.Errorf("order = %v, want %v", got.ItemIDs(), wantOrder)
	}
}

func TestHybrid_TieOnGridAlphaUsesTieBreak(t *testing.T) {
	// At alpha 1/19, Z at (pop 1, sim 3) and A at (pop 37, sim 1) both fuse
	// to 55/19, but the float sums differ in the last bit with Z larger.
	// Fillers f02..f36 sit at pop i, sim i+1 except f02 at sim 2.
	fillers := make([]recommend.RankEntry, 0, 35)
	for i := 2; i <= 36; i++ {
		fillers = append(fillers, book(fmt.Sprintf("f%02d", i)))
	}

	popEntries := append([]recommend.RankEntry{book("Z")}, fillers...)
	popEntries = append(popEntries, book("A"))

	simEntries := []recommend.RankEntry{book("A"), fillers[0], book("Z")}
	simEntries = append(simEntries, fillers[1:]...)

	alpha := 1.0 / 19
	got, err := NewHybrid(HybridConfig{}).Fuse(alpha, ranked(popEntries...), ranked(simEntries...))
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}

	// Title descending puts "Title Z" before "Title A"
	if want := []string{"f02", "Z", "A"}; !reflect.DeepEqual(got.Top(3).ItemIDs(), want) {
		t.Errorf("top 3 = %v, want %v", got.Top(3).ItemIDs(), want)
	}
	if z, a := got[1].Score, got[2].Score; math.Abs(z-a) > 1e-12 {
		t.Errorf("fused ranks %v and %v should be equal", z, a)
	}
	if got[1].Rank != 2 || got[2].Rank != 3 {
		t.Errorf("ranks = %d, %d, want 2, 3", got[1].Rank, got[2].Rank)
	}
}

func TestHybrid_InvalidAlpha(t *testing.T) {
	pop := ranked(book("x"))
	sim := ranked(book("x"))
	h := NewHybrid(HybridConfig{})

	for _, alpha := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		if _, err := h.Fuse(alpha, pop, sim); !errors.Is(err, recommend.ErrInvalidAlpha) {
			t.Errorf("Fuse(%v) error = %v, want ErrInvalidAlpha", alpha, err)
		}
	}
}

func TestHybrid_DataContract(t *testing.T) {
	tests := []struct {
		name      string
		pop       recommend.Ranking
		sim       recommend.Ranking
		wantField string
	}{
		{
			name:      "repeated title in popularity",
			pop:       ranked(book("x"), recommend.RankEntry{ItemID: "x2", Title: "Title x"}),
			sim:       ranked(book("x")),
			wantField: "popularity.title",
		},
		{
			name:      "repeated title in similarity",
			pop:       ranked(book("x")),
			sim:       ranked(book("x"), recommend.RankEntry{ItemID: "x2", Title: "Title x"}),
			wantField: "similarity.title",
		},
		{
			name:      "title maps to two items",
			pop:       ranked(book("x")),
			sim:       ranked(recommend.RankEntry{ItemID: "other", Title: "Title x"}),
			wantField: "title",
		},
	}

	h := NewHybrid(HybridConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Fuse(0.5, tt.pop, tt.sim)

			var dce *recommend.DataContractError
			if !errors.As(err, &dce) {
				t.Fatalf("Fuse() error = %v, want *DataContractError", err)
			}
			if dce.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", dce.Field, tt.wantField)
			}
			if !errors.Is(err, recommend.ErrDataContract) {
				t.Error("errors.Is(err, ErrDataContract) = false")
			}
		})
	}
}

func TestHybrid_EmptyInputs(t *testing.T) {
	got, err := NewHybrid(HybridConfig{}).Fuse(0.3, nil, nil)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestHybrid_Idempotent(t *testing.T) {
	pop := ranked(book("a"), book("b"), book("c"), book("d"))
	sim := ranked(book("d"), book("c"), book("b"), book("a"))
	h := NewHybrid(HybridConfig{})

	first, err := h.Fuse(0.5, pop, sim)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}
	second, err := h.Fuse(0.5, pop, sim)
	if err != nil {
		t.Fatalf("Fuse() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second call = %v, want %v", second, first)
	}
	// Inputs are not modified
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(pop.ItemIDs(), want) {
		t.Errorf("pop mutated to %v", pop.ItemIDs())
	}
}
