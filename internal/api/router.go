// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/fanshelf/internal/cache"
	"github.com/tomtom215/fanshelf/internal/recommend"
	"github.com/tomtom215/fanshelf/internal/report"
)

// Engine is the part of recommend.Engine the API serves from.
type Engine interface {
	Recommend(ctx context.Context, req recommend.Request) (recommend.Ranking, error)
	GetStats() recommend.Stats
}

// ReportSource supplies the latest evaluation report.
type ReportSource interface {
	LatestReport() *report.Report
}

// Verify interface compliance.
var (
	_ Engine       = (*recommend.Engine)(nil)
	_ ReportSource = (*report.Store)(nil)
)

// Router wires the HTTP handlers.
type Router struct {
	engine     Engine
	reports    ReportSource
	middleware *Middleware
	timeout    time.Duration
	startTime  time.Time
	cache      *cache.Cache
}

// NewRouter creates a router. A nil config uses DefaultMiddlewareConfig.
// timeout bounds each recommendation request; <= 0 uses 30s.
func NewRouter(engine Engine, reports ReportSource, config *MiddlewareConfig, timeout time.Duration) *Router {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Router{
		engine:     engine,
		reports:    reports,
		middleware: NewMiddleware(config),
		timeout:    timeout,
		startTime:  time.Now(),
	}
}

// WithCache enables caching of recommendation lists. Entries are keyed by
// the engine run they were computed from, so a new run bypasses them.
func (router *Router) WithCache(c *cache.Cache) *Router {
	router.cache = c
	return router
}

// Handler configures all HTTP routes.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied in order
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())

		r.Get("/health", router.Health)
		r.Get("/evaluation", router.Evaluation)
		r.Get("/recommendations", router.Recommendations)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusNotFound, &APIError{
			Code:    ErrCodeNotFound,
			Message: "Resource not found",
		}, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respondError(w, req, http.StatusMethodNotAllowed, &APIError{
			Code:    ErrCodeMethodNotAllowed,
			Message: "Method not allowed",
		}, nil)
	})

	return r
}
