// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package api serves the results of the last engine run over HTTP using the
// Chi router.
//
// # Endpoints
//
//	GET /api/v1/health            engine status and dataset size
//	GET /api/v1/evaluation        latest report (alpha sweep and top lists)
//	GET /api/v1/recommendations   one ranked list
//	GET /metrics                  Prometheus metrics
//
// /api/v1/recommendations accepts:
//   - method: popularity, similarity or hybrid (default hybrid)
//   - alpha: hybrid weight in [0, 1] (default: best alpha of the sweep)
//   - k: list length (default top_n, capped at max_k)
//   - diversify: true to apply the configured reranker
//
// # Response Format
//
// Every JSON endpoint answers with the same envelope:
//
//	{
//	  "status": "success",
//	  "data": { ... },
//	  "metadata": {"timestamp": "...", "request_id": "...", "query_time_ms": 3}
//	}
//
// Errors carry "status": "error" and an error object with a machine-readable
// code.
//
// # Middleware
//
// RequestID (with logging context), RealIP, Recoverer, CORS (go-chi/cors),
// per-IP rate limiting (go-chi/httprate) and Prometheus request metrics.
package api
