// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package algorithms

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// RatingMatrix is a user x item rating matrix over every user present in the
// ratings.
//
// Unrated cells are 0, not missing. This absence-as-zero convention is a
// modeling choice: a user who never rated a book counts as having rated it 0,
// which pulls cosine similarity toward books that share raters. A sparse
// representation that skipped missing cells in the norms would produce
// different similarities.
//
// Columns are stored compressed with the zeros implicit. Dot products and
// norms are computed over the stored cells only, which is exact because the
// implicit cells contribute 0 to both.
type RatingMatrix struct {
	users     []int
	userIndex map[int]int
	columns   map[string]*matrixColumn
}

// matrixColumn holds the explicit cells of one item, ordered by row.
type matrixColumn struct {
	rows   []int
	values []float64
	norm   float64
}

// NewRatingMatrix builds the matrix from ratings. Rows follow ascending user ID.
func NewRatingMatrix(ratings []recommend.Rating) *RatingMatrix {
	seen := make(map[int]struct{})
	users := make([]int, 0)
	for i := range ratings {
		if _, ok := seen[ratings[i].UserID]; !ok {
			seen[ratings[i].UserID] = struct{}{}
			users = append(users, ratings[i].UserID)
		}
	}
	sort.Ints(users)

	userIndex := make(map[int]int, len(users))
	for i, u := range users {
		userIndex[u] = i
	}

	columns := make(map[string]*matrixColumn)
	for i := range ratings {
		r := &ratings[i]
		col, ok := columns[r.ItemID]
		if !ok {
			col = &matrixColumn{}
			columns[r.ItemID] = col
		}
		col.rows = append(col.rows, userIndex[r.UserID])
		col.values = append(col.values, r.Value)
	}

	for _, col := range columns {
		sort.Sort(byRow{col})
		var sq float64
		for _, v := range col.values {
			sq += v * v
		}
		col.norm = math.Sqrt(sq)
	}

	return &RatingMatrix{
		users:     users,
		userIndex: userIndex,
		columns:   columns,
	}
}

// byRow sorts a column's cells by row index.
type byRow struct{ c *matrixColumn }

func (b byRow) Len() int           { return len(b.c.rows) }
func (b byRow) Less(i, j int) bool { return b.c.rows[i] < b.c.rows[j] }
func (b byRow) Swap(i, j int) {
	b.c.rows[i], b.c.rows[j] = b.c.rows[j], b.c.rows[i]
	b.c.values[i], b.c.values[j] = b.c.values[j], b.c.values[i]
}

// Users returns the number of rows.
func (m *RatingMatrix) Users() int {
	return len(m.users)
}

// Items returns the number of columns.
func (m *RatingMatrix) Items() int {
	return len(m.columns)
}

// Has reports whether item has a column, that is at least one rating.
func (m *RatingMatrix) Has(item string) bool {
	_, ok := m.columns[item]
	return ok
}

// Column returns the dense zero-filled column of item, one value per user in
// ascending user ID order. Unknown items yield an all-zero column.
func (m *RatingMatrix) Column(item string) []float64 {
	dense := make([]float64, len(m.users))
	if col, ok := m.columns[item]; ok {
		for i, row := range col.rows {
			dense[row] = col.values[i]
		}
	}
	return dense
}

// Cosine returns the cosine similarity of the columns of a and b, clamped to
// [-1, 1]. A zero column on either side yields 0.
func (m *RatingMatrix) Cosine(a, b string) float64 {
	ca, okA := m.columns[a]
	cb, okB := m.columns[b]
	if !okA || !okB || ca.norm == 0 || cb.norm == 0 {
		return 0
	}
	return clampUnit(dot(ca, cb) / (ca.norm * cb.norm))
}

// dot merges two row-sorted columns.
func dot(a, b *matrixColumn) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.rows) && j < len(b.rows) {
		switch {
		case a.rows[i] == b.rows[j]:
			sum += a.values[i] * b.values[j]
			i++
			j++
		case a.rows[i] < b.rows[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// Similarity ranks books by cosine similarity between their rating column
// and the reference book's column in a RatingMatrix built from all users.
// The reference itself is excluded from the output.
type Similarity struct {
	baseRanker
}

// SimilarityConfig contains configuration for the similarity ranker.
type SimilarityConfig struct {
	// TieBreak orders books with equal scores. Nil selects title descending.
	TieBreak recommend.TieBreak
}

// NewSimilarity creates a new similarity ranker.
func NewSimilarity(cfg SimilarityConfig) *Similarity {
	return &Similarity{
		baseRanker: newBaseRanker(string(recommend.MethodSimilarity), cfg.TieBreak),
	}
}

// Rank scores every catalog book except reference by cosine similarity to
// reference. Books without ratings score 0. It returns
// recommend.ErrReferenceNotFound when nobody rated reference.
func (s *Similarity) Rank(ctx context.Context, ratings []recommend.Rating, catalog []recommend.Book, reference string) (recommend.Ranking, error) {
	if err := s.checkContext(ctx); err != nil {
		return nil, err
	}

	m := NewRatingMatrix(ratings)
	return s.RankMatrix(ctx, m, catalog, reference)
}

// RankMatrix is Rank over a prebuilt matrix.
func (s *Similarity) RankMatrix(ctx context.Context, m *RatingMatrix, catalog []recommend.Book, reference string) (recommend.Ranking, error) {
	if !m.Has(reference) {
		return nil, fmt.Errorf("%w: %s", recommend.ErrReferenceNotFound, reference)
	}
	ref := m.columns[reference]

	ranking := make(recommend.Ranking, 0, len(catalog))
	for i := range catalog {
		if i%ctxCheckInterval == 0 {
			if err := s.checkContext(ctx); err != nil {
				return nil, err
			}
		}

		book := &catalog[i]
		if book.ItemID == reference {
			continue
		}

		var score float64
		if col, ok := m.columns[book.ItemID]; ok && ref.norm != 0 && col.norm != 0 {
			score = clampUnit(dot(ref, col) / (ref.norm * col.norm))
		}
		ranking = append(ranking, entryFor(book, score))
	}

	ranking.SortByScoreDesc(s.tieBreak)
	return ranking, nil
}
