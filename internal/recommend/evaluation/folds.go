// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package evaluation

import (
	"fmt"
	"math/rand"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// AssignFolds partitions cohort into k folds.
//
// Members are taken in ascending ID order. Labels 0..k-2 are each repeated
// floor(n/k) times and the last label takes the remainder, so the last fold
// absorbs every leftover member. The label sequence is then shuffled with a
// math/rand source seeded by seed. A cohort smaller than k leaves the leading
// folds empty.
func AssignFolds(cohort recommend.Cohort, k int, seed int64) (*recommend.FoldAssignment, error) {
	if k < 1 {
		return nil, fmt.Errorf("fold count must be positive, got %d", k)
	}

	ids := cohort.IDs()
	n := len(ids)
	size := n / k

	labels := make([]int, 0, n)
	for fold := 0; fold < k-1; fold++ {
		for i := 0; i < size; i++ {
			labels = append(labels, fold)
		}
	}
	for len(labels) < n {
		labels = append(labels, k-1)
	}

	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible partition, not security sensitive
	rng.Shuffle(len(labels), func(i, j int) {
		labels[i], labels[j] = labels[j], labels[i]
	})

	assignment := &recommend.FoldAssignment{
		K:      k,
		Seed:   seed,
		Labels: make(map[int]int, n),
	}
	for i, id := range ids {
		assignment.Labels[id] = labels[i]
	}
	return assignment, nil
}
