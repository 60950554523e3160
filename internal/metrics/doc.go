// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

/*
Package metrics provides Prometheus metrics collection and export for observability.

Collectors are registered with the default registry through promauto and are
exposed at /metrics when the server is enabled:

	curl http://localhost:8484/metrics

# Available Metrics

Dataset Metrics:
  - fanshelf_duckdb_query_duration_seconds: Preparation query time (histogram)
    Labels: operation
  - fanshelf_duckdb_query_errors_total: Failed preparation queries (counter)
  - fanshelf_dataset_rows: Prepared table sizes (gauge)
    Labels: table

Ranking Metrics:
  - fanshelf_ranking_duration_seconds: Time per ranking (histogram)
    Labels: method (popularity, similarity, hybrid)

Evaluation Metrics:
  - fanshelf_sweep_duration_seconds: Full grid sweep time (histogram)
  - fanshelf_sweep_alpha_score: Score per alpha of the last sweep (gauge)
  - fanshelf_best_alpha: Selected alpha (gauge)
  - fanshelf_degenerate_folds_total: Folds scored 0 (counter)
    Labels: reason (empty_fold, no_scorable_users, reference_missing)
  - fanshelf_fold_test_users: Held-out fans per fold (gauge)

HTTP Metrics:
  - fanshelf_http_requests_total: Requests by route and status (counter)
  - fanshelf_http_request_duration_seconds: Request latency (histogram)

# Usage

	start := time.Now()
	ranking, err := pop.Rank(ctx, ratings, catalog, cohort, ref)
	metrics.RecordRanking("popularity", time.Since(start))
*/
package metrics
