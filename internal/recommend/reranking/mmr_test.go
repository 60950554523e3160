// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package reranking

import (
	"context"
	"reflect"
	"testing"
)

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmr := NewMMR(tt.lambda)
			if mmr == nil {
				t.Fatal("NewMMR() returned nil")
			}
			if mmr.lambda != tt.wantLambda {
				t.Errorf("lambda = %f, want %f", mmr.lambda, tt.wantLambda)
			}
		})
	}
}

func TestMMR_Name(t *testing.T) {
	mmr := NewMMR(0.7)
	if mmr.Name() != "mmr" {
		t.Errorf("Name() = %q, want %q", mmr.Name(), "mmr")
	}
}

func TestMMR_Rerank(t *testing.T) {
	input := entries(
		"a1", "Author A",
		"a2", "Author A",
		"b1", "Author B",
		"a3", "author a",
		"c1", "Author C",
	)

	tests := []struct {
		name   string
		lambda float64
		k      int
		want   []string
	}{
		{
			name:   "pure relevance keeps input order",
			lambda: 1,
			k:      5,
			want:   []string{"a1", "a2", "b1", "a3", "c1"},
		},
		{
			name:   "pure diversity spreads authors first",
			lambda: 0,
			k:      5,
			want:   []string{"a1", "b1", "c1", "a2", "a3"},
		},
		{
			name:   "balanced pushes repeated author down",
			lambda: 0.5,
			k:      3,
			want:   []string{"a1", "b1", "c1"},
		},
		{
			name:   "k larger than input",
			lambda: 1,
			k:      50,
			want:   []string{"a1", "a2", "b1", "a3", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewMMR(tt.lambda).Rerank(context.Background(), input, tt.k)
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
}

func TestMMR_Empty(t *testing.T) {
	got := NewMMR(0.5).Rerank(context.Background(), nil, 5)
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
