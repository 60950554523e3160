// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Dataset preparation (DuckDB)
// - Ranking and cross-validation
// - The HTTP result surface

var (
	// Dataset Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanshelf_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB preparation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanshelf_duckdb_query_errors_total",
			Help: "Total number of DuckDB preparation query errors",
		},
		[]string{"operation"},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fanshelf_dataset_rows",
			Help: "Rows in the prepared dataset by table",
		},
		[]string{"table"}, // "ratings", "catalog", "users"
	)

	// Ranking Metrics
	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanshelf_ranking_duration_seconds",
			Help:    "Time to compute one ranking",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method"},
	)

	// Evaluation Metrics
	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fanshelf_sweep_duration_seconds",
			Help:    "Duration of a full alpha grid sweep",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	SweepAlphaScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fanshelf_sweep_alpha_score",
			Help: "Cross-validated satisfaction score per alpha of the last sweep",
		},
		[]string{"alpha"},
	)

	BestAlpha = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanshelf_best_alpha",
			Help: "Alpha selected by the last sweep",
		},
	)

	DegenerateFolds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanshelf_degenerate_folds_total",
			Help: "Fold evaluations that contributed a zero score",
		},
		[]string{"reason"}, // "empty_fold", "no_scorable_users", "reference_missing"
	)

	FoldTestUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fanshelf_fold_test_users",
			Help: "Held-out fans per fold of the last sweep",
		},
		[]string{"fold"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanshelf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fanshelf_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fanshelf_http_active_requests",
			Help: "HTTP requests currently being served",
		},
	)

	// APICacheLookups counts recommendation cache lookups by result (hit, miss).
	APICacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fanshelf_http_cache_lookups_total",
			Help: "Recommendation cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordDBQuery records a preparation query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// SetDatasetRows records the size of a prepared table
func SetDatasetRows(table string, rows int) {
	DatasetRows.WithLabelValues(table).Set(float64(rows))
}

// RecordRanking records how long one ranking took
func RecordRanking(method string, duration time.Duration) {
	RankingDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordDegenerateFold counts a fold that scored 0 because it could not be evaluated
func RecordDegenerateFold(reason string) {
	DegenerateFolds.WithLabelValues(reason).Inc()
}

// SetFoldTestUsers records the held-out fan count of one fold
func SetFoldTestUsers(fold, users int) {
	FoldTestUsers.WithLabelValues(strconv.Itoa(fold)).Set(float64(users))
}

// RecordSweep records the outcome of an alpha sweep.
// alphas and scores are parallel slices.
func RecordSweep(duration time.Duration, alphas, scores []float64, best float64) {
	SweepDuration.Observe(duration.Seconds())
	SweepAlphaScore.Reset()
	for i := range alphas {
		if i >= len(scores) {
			break
		}
		SweepAlphaScore.WithLabelValues(FormatAlpha(alphas[i])).Set(scores[i])
	}
	BestAlpha.Set(best)
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup counts one recommendation cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		APICacheLookups.WithLabelValues("hit").Inc()
		return
	}
	APICacheLookups.WithLabelValues("miss").Inc()
}

// FormatAlpha renders an alpha as a stable label value.
func FormatAlpha(alpha float64) string {
	return strconv.FormatFloat(alpha, 'f', 4, 64)
}
