// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/fanshelf/internal/cache"
	"github.com/tomtom215/fanshelf/internal/logging"
	"github.com/tomtom215/fanshelf/internal/metrics"
	"github.com/tomtom215/fanshelf/internal/recommend"
	"github.com/tomtom215/fanshelf/internal/validation"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	// Status is "healthy" once a run completed, "starting" before.
	Status     string    `json:"status"`
	Uptime     float64   `json:"uptime_seconds"`
	Reference  string    `json:"reference,omitempty"`
	CohortSize int       `json:"cohort_size"`
	BestAlpha  float64   `json:"best_alpha"`
	Runs       int64     `json:"runs"`
	Requests   int64     `json:"requests"`
	Errors     int64     `json:"errors"`
	LastRunAt  time.Time `json:"last_run_at,omitempty"`
}

// RecommendationsQuery holds the validated query of GET /api/v1/recommendations.
type RecommendationsQuery struct {
	Method    string   `json:"method" validate:"omitempty,oneof=popularity similarity hybrid"`
	Alpha     *float64 `json:"alpha,omitempty" validate:"omitempty,gte=0,lte=1"`
	K         int      `json:"k" validate:"gte=0,lte=10000"`
	Diversify bool     `json:"diversify"`
}

// RecommendationsResponse is the body of GET /api/v1/recommendations.
type RecommendationsResponse struct {
	Method    recommend.Method  `json:"method"`
	Alpha     *float64          `json:"alpha,omitempty"`
	Diversify bool              `json:"diversify"`
	Count     int               `json:"count"`
	Items     recommend.Ranking `json:"items"`
}

// Health handles GET /api/v1/health.
func (router *Router) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := router.engine.GetStats()

	status := "starting"
	if stats.Runs > 0 {
		status = "healthy"
	}

	respondSuccess(w, r, HealthStatus{
		Status:     status,
		Uptime:     time.Since(router.startTime).Seconds(),
		Reference:  stats.Reference,
		CohortSize: stats.CohortSize,
		BestAlpha:  stats.BestAlpha,
		Runs:       stats.Runs,
		Requests:   stats.Requests,
		Errors:     stats.Errors,
		LastRunAt:  stats.LastRunAt,
	}, start)
}

// Evaluation handles GET /api/v1/evaluation and returns the latest report.
func (router *Router) Evaluation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var rep interface{}
	if router.reports != nil {
		if latest := router.reports.LatestReport(); latest != nil {
			rep = latest
		}
	}
	if rep == nil {
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "No evaluation available yet",
		}, nil)
		return
	}

	respondSuccess(w, r, rep, start)
}

// Recommendations handles GET /api/v1/recommendations.
func (router *Router) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	query, apiErr := parseRecommendationsQuery(r)
	if apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	req := recommend.Request{
		Method:    recommend.Method(query.Method),
		Alpha:     query.Alpha,
		K:         query.K,
		Diversify: query.Diversify,
	}

	ranking, err := router.recommend(r.Context(), req)
	if err != nil {
		status, code := classifyError(err)
		respondError(w, r, status, &APIError{Code: code, Message: err.Error()}, err)
		return
	}

	method := req.Method
	if method == "" {
		method = recommend.MethodHybrid
	}
	alpha := query.Alpha
	if method == recommend.MethodHybrid && alpha == nil {
		best := router.engine.GetStats().BestAlpha
		alpha = &best
	}
	if method != recommend.MethodHybrid {
		alpha = nil
	}
	if ranking == nil {
		ranking = recommend.Ranking{}
	}

	logging.Ctx(r.Context()).Debug().
		Str("method", string(method)).
		Int("count", len(ranking)).
		Msg("Served recommendations")

	respondSuccess(w, r, RecommendationsResponse{
		Method:    method,
		Alpha:     alpha,
		Diversify: query.Diversify,
		Count:     len(ranking),
		Items:     ranking,
	}, start)
}

// recommendationKey identifies a cached list.
type recommendationKey struct {
	Request   recommend.Request `json:"request"`
	Runs      int64             `json:"runs"`
	LastRunAt time.Time         `json:"last_run_at"`
}

// recommend serves req from the cache when possible.
func (router *Router) recommend(ctx context.Context, req recommend.Request) (recommend.Ranking, error) {
	var key string
	if router.cache != nil {
		stats := router.engine.GetStats()
		key = cache.GenerateKey("recommendations", recommendationKey{
			Request:   req,
			Runs:      stats.Runs,
			LastRunAt: stats.LastRunAt,
		})
		if v, ok := router.cache.Get(key); ok {
			if ranking, ok := v.(recommend.Ranking); ok {
				metrics.RecordCacheLookup(true)
				return ranking, nil
			}
		}
		metrics.RecordCacheLookup(false)
	}

	ctx, cancel := context.WithTimeout(ctx, router.timeout)
	defer cancel()

	ranking, err := router.engine.Recommend(ctx, req)
	if err != nil {
		return nil, err
	}
	if router.cache != nil {
		router.cache.Set(key, ranking)
	}
	return ranking, nil
}

// parseRecommendationsQuery parses and validates the query string.
func parseRecommendationsQuery(r *http.Request) (*RecommendationsQuery, *APIError) {
	q := r.URL.Query()
	query := &RecommendationsQuery{Method: q.Get("method")}

	if v := q.Get("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, badParam("alpha", "alpha must be a number")
		}
		query.Alpha = &alpha
	}
	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return nil, badParam("k", "k must be an integer")
		}
		query.K = k
	}
	if v := q.Get("diversify"); v != "" {
		d, err := strconv.ParseBool(v)
		if err != nil {
			return nil, badParam("diversify", "diversify must be a boolean")
		}
		query.Diversify = d
	}

	if verr := validation.ValidateStruct(query); verr != nil {
		ve := verr.ToAPIError()
		return nil, &APIError{Code: ve.Code, Message: ve.Message, Details: ve.Details}
	}
	return query, nil
}

func badParam(field, message string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// classifyError maps engine errors to HTTP status and error code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrNotReady):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	case errors.Is(err, recommend.ErrInvalidAlpha):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, ErrCodeServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}
