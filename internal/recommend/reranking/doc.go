// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package reranking implements post-processing of ranked book lists.
//
// Reranking is applied after ranking and never feeds back into it:
//
//	Rankers -> Hybrid Ranking -> Rerankers -> Final List
//
// # Available Rerankers
//
// AuthorDiversity:
//   - One book per author, first occurrence kept
//   - Authors compared uppercased with spaces removed
//
// Maximal Marginal Relevance (MMR):
//   - Penalizes a repeated author instead of dropping it
//   - Lambda parameter controls the order/diversity tradeoff
//
// Both implement recommend.Reranker and reassign 1-based ranks on output.
package reranking
