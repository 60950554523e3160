// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package recommend implements fan-group book recommendations for a single
// reference book.
//
// # Architecture
//
// The engine combines two rankings of the catalog:
//
//   - Popularity: mean rating inside the fan cohort, with a minimum support
//   - Similarity: cosine similarity of item rating columns to the reference
//
// The two are blended by weighted rank fusion. The blending weight alpha is
// chosen by k-fold cross-validation over the fan cohort, scored by the mean
// rating held-out fans gave the recommended books.
//
// Implementations live in sub-packages:
//
//   - algorithms: Popularity, Similarity, Hybrid
//   - evaluation: fold assignment and the alpha sweep
//   - reranking: author diversity and MMR post-processing
//
// # Data Contract
//
// The core trusts the preparation stage for ratings in [0, 10], one rating
// per (user, book), unique catalog titles and rated books present in the
// catalog. Run checks these with Dataset.Validate and fails with a
// DataContractError when one is broken.
//
// # Determinism
//
// Every sort has a total order (score, then the configured title tie-break,
// then item ID), and the fold shuffle is driven by Config.Seed. The same
// dataset, reference, seed and configuration always produce the same lists
// and the same best alpha, regardless of the evaluation worker count.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger)
//	if err != nil {
//	    return err
//	}
//
//	pop := algorithms.NewPopularity(algorithms.PopularityConfig{MinSupport: cfg.Ranking.MinSupport})
//	sim := algorithms.NewSimilarity(algorithms.SimilarityConfig{})
//	hyb := algorithms.NewHybrid(algorithms.HybridConfig{})
//	engine.SetRankers(pop, sim, hyb)
//	engine.SetEvaluator(evaluation.NewCrossValidator(evalCfg, pop, sim, hyb, logger))
//	engine.SetDataProvider(loader)
//
//	result, err := engine.Run(ctx, referenceISBN)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Run replaces the engine state under
// an exclusive lock once it has finished, so Recommend always reads a
// consistent snapshot of the last completed run.
package recommend
