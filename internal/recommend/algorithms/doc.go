// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package algorithms implements the rankers used by the recommendation engine.
//
// # Rankers
//
//   - Popularity: mean rating inside a fan cohort with a minimum-support filter
//   - Similarity: cosine similarity to a reference book over a RatingMatrix
//   - Hybrid: weighted fusion of popularity and similarity rank positions
//
// Popularity and Similarity satisfy recommend.PopularityRanker and
// recommend.SimilarityRanker; Hybrid satisfies recommend.Fuser.
//
// # Determinism
//
// Every ranker sorts with a total order: the primary score first, then a
// configurable recommend.TieBreak (title descending unless configured
// otherwise). Identical inputs always produce identical rankings.
//
// # Usage Example
//
//	pop := algorithms.NewPopularity(algorithms.PopularityConfig{MinSupport: 5})
//	sim := algorithms.NewSimilarity(algorithms.SimilarityConfig{})
//	hybrid := algorithms.NewHybrid(algorithms.HybridConfig{})
//
//	popRanking, _ := pop.Rank(ctx, data.Ratings, data.Catalog, fans, reference)
//	simRanking, err := sim.Rank(ctx, data.Ratings, data.Catalog, reference)
//	if err != nil {
//	    return err // recommend.ErrReferenceNotFound
//	}
//	list, err := hybrid.Fuse(0.6, popRanking, simRanking)
//
// # Thread Safety
//
// Rankers hold only immutable configuration and are safe for concurrent use.
package algorithms
