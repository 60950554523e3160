// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fanshelf/internal/cache"
	"github.com/tomtom215/fanshelf/internal/recommend"
	"github.com/tomtom215/fanshelf/internal/report"
)

// mockEngine implements Engine for testing.
type mockEngine struct {
	mu      sync.Mutex
	ranking recommend.Ranking
	err     error
	stats   recommend.Stats
	lastReq recommend.Request
	calls   int
}

func (m *mockEngine) Recommend(_ context.Context, req recommend.Request) (recommend.Ranking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = req
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	k := req.K
	if k <= 0 || k > len(m.ranking) {
		k = len(m.ranking)
	}
	return m.ranking.Top(k), nil
}

func (m *mockEngine) GetStats() recommend.Stats {
	return m.stats
}

func (m *mockEngine) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockEngine) request() recommend.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

func newMockEngine() *mockEngine {
	ranking := recommend.Ranking{
		{ItemID: "0441172717", Title: "Dune", Author: "Frank Herbert", Score: 1, Rank: 1},
		{ItemID: "055321313", Title: "Mort", Author: "Terry Pratchett", Score: 2, Rank: 2},
		{ItemID: "0060853980", Title: "Good Omens", Author: "Terry Pratchett", Score: 3, Rank: 3},
	}
	return &mockEngine{
		ranking: ranking,
		stats: recommend.Stats{
			Runs:       1,
			Reference:  "0345339703",
			CohortSize: 42,
			BestAlpha:  0.25,
			LastRunAt:  time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

// decodedResponse mirrors APIResponse with a raw data payload.
type decodedResponse struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func doRequest(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, decodedResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp decodedResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v (%s)", target, err, rec.Body.String())
		}
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		runs       int64
		wantStatus string
	}{
		{"after run", 1, "healthy"},
		{"before run", 0, "starting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine()
			engine.stats.Runs = tt.runs
			h := NewRouter(engine, &report.Store{}, nil, 0).Handler()

			rec, resp := doRequest(t, h, "/api/v1/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var health HealthStatus
			if err := json.Unmarshal(resp.Data, &health); err != nil {
				t.Fatalf("decode health: %v", err)
			}
			if health.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", health.Status, tt.wantStatus)
			}
			if health.CohortSize != 42 || health.Reference != "0345339703" {
				t.Errorf("health = %+v", health)
			}
			if resp.Metadata.RequestID == "" {
				t.Error("metadata.request_id is empty")
			}
			if rec.Header().Get("X-Request-Id") == "" {
				t.Error("X-Request-Id header missing")
			}
		})
	}
}

func TestEvaluation(t *testing.T) {
	engine := newMockEngine()
	store := &report.Store{}
	h := NewRouter(engine, store, nil, 0).Handler()

	rec, resp := doRequest(t, h, "/api/v1/evaluation")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before report = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v", resp.Error)
	}

	store.Set(&report.Report{RunID: "run-1", Reference: "0345339703", BestAlpha: 0.25})

	rec, resp = doRequest(t, h, "/api/v1/evaluation")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rep report.Report
	if err := json.Unmarshal(resp.Data, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.RunID != "run-1" || rep.BestAlpha != 0.25 {
		t.Errorf("report = %+v", rep)
	}
}

func TestRecommendations(t *testing.T) {
	alpha := func(v float64) *float64 { return &v }

	tests := []struct {
		name          string
		query         string
		wantCode      int
		wantCount     int
		wantMethod    recommend.Method
		wantAlpha     *float64
		wantReq       recommend.Request
		wantErrorCode string
	}{
		{
			name:       "defaults to hybrid at best alpha",
			query:      "",
			wantCode:   http.StatusOK,
			wantCount:  3,
			wantMethod: recommend.MethodHybrid,
			wantAlpha:  alpha(0.25),
			wantReq:    recommend.Request{},
		},
		{
			name:       "explicit alpha and k",
			query:      "?method=hybrid&alpha=0.8&k=2",
			wantCode:   http.StatusOK,
			wantCount:  2,
			wantMethod: recommend.MethodHybrid,
			wantAlpha:  alpha(0.8),
			wantReq:    recommend.Request{Method: recommend.MethodHybrid, Alpha: alpha(0.8), K: 2},
		},
		{
			name:       "popularity drops alpha",
			query:      "?method=popularity&alpha=0.5&diversify=true",
			wantCode:   http.StatusOK,
			wantCount:  3,
			wantMethod: recommend.MethodPopularity,
			wantReq:    recommend.Request{Method: recommend.MethodPopularity, Alpha: alpha(0.5), Diversify: true},
		},
		{
			name:       "alpha zero is kept",
			query:      "?alpha=0",
			wantCode:   http.StatusOK,
			wantCount:  3,
			wantMethod: recommend.MethodHybrid,
			wantAlpha:  alpha(0),
			wantReq:    recommend.Request{Alpha: alpha(0)},
		},
		{name: "unknown method", query: "?method=random", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeValidationFailed},
		{name: "alpha above one", query: "?alpha=1.5", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeValidationFailed},
		{name: "alpha NaN", query: "?alpha=NaN", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeValidationFailed},
		{name: "alpha not a number", query: "?alpha=high", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeBadRequest},
		{name: "negative k", query: "?k=-1", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeValidationFailed},
		{name: "k not an integer", query: "?k=ten", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeBadRequest},
		{name: "diversify not a bool", query: "?diversify=maybe", wantCode: http.StatusBadRequest, wantErrorCode: ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine()
			h := NewRouter(engine, nil, nil, 0).Handler()

			rec, resp := doRequest(t, h, "/api/v1/recommendations"+tt.query)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}

			if tt.wantErrorCode != "" {
				if resp.Status != "error" || resp.Error == nil || resp.Error.Code != tt.wantErrorCode {
					t.Errorf("error = %+v, want code %s", resp.Error, tt.wantErrorCode)
				}
				return
			}

			var body RecommendationsResponse
			if err := json.Unmarshal(resp.Data, &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Count != tt.wantCount || len(body.Items) != tt.wantCount {
				t.Errorf("count = %d/%d, want %d", body.Count, len(body.Items), tt.wantCount)
			}
			if body.Method != tt.wantMethod {
				t.Errorf("method = %q, want %q", body.Method, tt.wantMethod)
			}
			switch {
			case tt.wantAlpha == nil && body.Alpha != nil:
				t.Errorf("alpha = %v, want none", *body.Alpha)
			case tt.wantAlpha != nil && (body.Alpha == nil || *body.Alpha != *tt.wantAlpha):
				t.Errorf("alpha = %v, want %v", body.Alpha, *tt.wantAlpha)
			}

			got := engine.request()
			if got.Method != tt.wantReq.Method || got.K != tt.wantReq.K || got.Diversify != tt.wantReq.Diversify {
				t.Errorf("engine request = %+v, want %+v", got, tt.wantReq)
			}
			if (got.Alpha == nil) != (tt.wantReq.Alpha == nil) ||
				(got.Alpha != nil && *got.Alpha != *tt.wantReq.Alpha) {
				t.Errorf("engine alpha = %v, want %v", got.Alpha, tt.wantReq.Alpha)
			}
		})
	}
}

func TestRecommendations_EngineErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
	}{
		{"not ready", recommend.ErrNotReady, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"invalid alpha", fmt.Errorf("%w: got 2", recommend.ErrInvalidAlpha), http.StatusBadRequest, ErrCodeBadRequest},
		{"timeout", context.DeadlineExceeded, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMockEngine()
			engine.err = tt.err
			h := NewRouter(engine, nil, nil, 0).Handler()

			rec, resp := doRequest(t, h, "/api/v1/recommendations")
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if resp.Error == nil || resp.Error.Code != tt.wantErr {
				t.Errorf("error = %+v, want %s", resp.Error, tt.wantErr)
			}
		})
	}
}

func TestRecommendations_Cache(t *testing.T) {
	engine := newMockEngine()
	c := cache.New(time.Minute, 16)
	router := NewRouter(engine, nil, nil, 0).WithCache(c)
	h := router.Handler()

	for i := 0; i < 3; i++ {
		if rec, _ := doRequest(t, h, "/api/v1/recommendations?k=2"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i, rec.Code)
		}
	}
	if got := engine.callCount(); got != 1 {
		t.Errorf("engine calls = %d, want 1 (cached)", got)
	}

	// A different request misses
	doRequest(t, h, "/api/v1/recommendations?k=1")
	if got := engine.callCount(); got != 2 {
		t.Errorf("engine calls = %d, want 2", got)
	}

	// A new run invalidates every cached list
	engine.stats.Runs++
	rec, resp := doRequest(t, h, "/api/v1/recommendations?k=2")
	if rec.Code != http.StatusOK || resp.Status != "success" {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := engine.callCount(); got != 3 {
		t.Errorf("engine calls = %d, want 3 after new run", got)
	}

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 3 {
		t.Errorf("cache stats = %+v, want 2 hits and 3 misses", stats)
	}
}

func TestRecommendations_ErrorsNotCached(t *testing.T) {
	engine := newMockEngine()
	engine.err = recommend.ErrNotReady
	c := cache.New(time.Minute, 16)
	h := NewRouter(engine, nil, nil, 0).WithCache(c).Handler()

	doRequest(t, h, "/api/v1/recommendations")
	doRequest(t, h, "/api/v1/recommendations")

	if got := engine.callCount(); got != 2 {
		t.Errorf("engine calls = %d, want 2", got)
	}
	if c.Len() != 0 {
		t.Errorf("cache holds %d entries after errors, want 0", c.Len())
	}
}

func TestCompression(t *testing.T) {
	engine := newMockEngine()
	h := NewRouter(engine, nil, nil, 0).Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", got)
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewRouter(newMockEngine(), nil, nil, 0).Handler()

	rec, resp := doRequest(t, h, "/api/v1/nope")
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("404 response = %d %+v", rec.Code, resp.Error)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /health = %d, want 405", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := NewRouter(newMockEngine(), nil, nil, 0).Handler()

	// One request so the route counter exists.
	doRequest(t, h, "/api/v1/health")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `fanshelf_http_requests_total{route="/api/v1/health",status="200"}`) {
		t.Error("request counter for /api/v1/health missing from /metrics")
	}
}
