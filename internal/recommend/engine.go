// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package recommend

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/metrics"
)

// Engine coordinates the rankers and the evaluator for one reference book.
// It is safe for concurrent use: Run replaces the engine state atomically
// and Recommend reads the state of the last completed run.
type Engine struct {
	// Configuration
	config *Config
	logger zerolog.Logger

	// Registered components
	popularity PopularityRanker
	similarity SimilarityRanker
	fuser      Fuser
	evaluator  Evaluator
	rerankers  []Reranker
	compMu     sync.RWMutex

	// Data provider interface
	dataProvider DataProvider

	// State of the last completed run
	stateMu   sync.RWMutex
	data      *Dataset
	reference string
	cohort    Cohort
	bestAlpha float64
	last      *Result

	// Counters
	runCount     atomic.Int64
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// Stats summarizes engine activity.
type Stats struct {
	Runs            int64         `json:"runs"`
	Requests        int64         `json:"requests"`
	Errors          int64         `json:"errors"`
	Reference       string        `json:"reference,omitempty"`
	CohortSize      int           `json:"cohort_size"`
	BestAlpha       float64       `json:"best_alpha"`
	LastRunAt       time.Time     `json:"last_run_at,omitempty"`
	LastRunDuration time.Duration `json:"last_run_duration"`
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config:    cfg,
		logger:    logger.With().Str("component", "recommend").Logger(),
		rerankers: make([]Reranker, 0),
	}, nil
}

// SetDataProvider sets the source of the cleaned dataset.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetRankers installs the popularity ranker, the similarity ranker and the fuser.
func (e *Engine) SetRankers(pop PopularityRanker, sim SimilarityRanker, fuser Fuser) {
	e.compMu.Lock()
	defer e.compMu.Unlock()

	e.popularity = pop
	e.similarity = sim
	e.fuser = fuser
}

// SetEvaluator installs the cross-validator used by Run.
func (e *Engine) SetEvaluator(ev Evaluator) {
	e.compMu.Lock()
	defer e.compMu.Unlock()

	e.evaluator = ev
}

// RegisterReranker adds a reranker to the post-processing pipeline.
func (e *Engine) RegisterReranker(rr Reranker) {
	e.compMu.Lock()
	defer e.compMu.Unlock()

	e.rerankers = append(e.rerankers, rr)
	e.logger.Info().
		Str("reranker", rr.Name()).
		Msg("registered reranker")
}

// components returns a consistent snapshot of the registered components.
func (e *Engine) components() (PopularityRanker, SimilarityRanker, Fuser, Evaluator, []Reranker) {
	e.compMu.RLock()
	defer e.compMu.RUnlock()

	rerankers := make([]Reranker, len(e.rerankers))
	copy(rerankers, e.rerankers)
	return e.popularity, e.similarity, e.fuser, e.evaluator, rerankers
}

// Run loads the dataset, selects the fans of reference, sweeps the alpha
// grid and computes the final lists at the best alpha on the full data.
func (e *Engine) Run(ctx context.Context, reference string) (*Result, error) {
	start := time.Now()
	e.runCount.Add(1)

	logger := e.logger.With().Str("reference", reference).Logger()

	pop, sim, fuser, evaluator, rerankers := e.components()
	if pop == nil || sim == nil || fuser == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("rankers: %w", ErrComponentMissing)
	}
	if evaluator == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("evaluator: %w", ErrComponentMissing)
	}
	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, ErrNoDataProvider
	}

	data, err := e.dataProvider.Load(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if err := data.Validate(); err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("validate dataset: %w", err)
	}

	cohort := SelectFans(data.Ratings, reference, e.config.Cohort.FanThreshold)
	logger.Info().
		Int("ratings", len(data.Ratings)).
		Int("books", len(data.Catalog)).
		Int("fans", cohort.Len()).
		Float64("fan_threshold", e.config.Cohort.FanThreshold).
		Msg("selected fan cohort")
	if cohort.Len() < e.config.Evaluation.Folds {
		logger.Warn().
			Int("fans", cohort.Len()).
			Int("folds", e.config.Evaluation.Folds).
			Msg("fan cohort smaller than fold count, some folds will be empty")
	}

	alphas, err := AlphaGrid(e.config.Evaluation.GridPoints)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	sweep, err := evaluator.Sweep(ctx, data, cohort, reference, alphas)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("sweep: %w", err)
	}

	popRanking, simRanking, err := e.baseRankings(ctx, pop, sim, data, cohort, reference)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	hybrid, err := e.fuse(fuser, sweep.BestAlpha, popRanking, simRanking)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	topN := e.config.Ranking.TopN
	result := &Result{
		Reference:  reference,
		CohortSize: cohort.Len(),
		Sweep:      sweep,
		Popularity: popRanking.Top(topN),
		Similarity: simRanking.Top(topN),
		Hybrid:     hybrid.Top(topN),
		StartedAt:  start,
	}
	if e.config.Ranking.Diversify && len(rerankers) > 0 {
		result.Diversified = e.applyRerankers(ctx, rerankers, hybrid, topN)
	}
	result.Duration = time.Since(start)

	e.stateMu.Lock()
	e.data = data
	e.reference = reference
	e.cohort = cohort
	e.bestAlpha = sweep.BestAlpha
	e.last = result
	e.stateMu.Unlock()

	logger.Info().
		Float64("best_alpha", sweep.BestAlpha).
		Float64("best_score", sweep.BestScore).
		Int("degenerate_folds", sweep.DegenerateFolds).
		Dur("duration", result.Duration).
		Msg("run complete")

	return result, nil
}

// Recommend returns one ranked list computed from the dataset and fan cohort
// of the last completed run.
func (e *Engine) Recommend(ctx context.Context, req Request) (Ranking, error) {
	e.requestCount.Add(1)

	e.stateMu.RLock()
	data, reference, cohort, bestAlpha := e.data, e.reference, e.cohort, e.bestAlpha
	e.stateMu.RUnlock()
	if data == nil {
		return nil, ErrNotReady
	}

	req, alpha, err := e.prepareRequest(req, bestAlpha)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	logger := e.createRequestLogger(req, reference)
	logger.Debug().Msg("processing recommendation request")

	pop, sim, fuser, _, rerankers := e.components()
	if pop == nil || sim == nil || fuser == nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("rankers: %w", ErrComponentMissing)
	}

	var ranking Ranking
	switch req.Method {
	case MethodPopularity:
		ranking, err = e.rankPopularity(ctx, pop, data, cohort, reference)
	case MethodSimilarity:
		ranking, err = e.rankSimilarity(ctx, sim, data, reference)
	default:
		var popRanking, simRanking Ranking
		popRanking, simRanking, err = e.baseRankings(ctx, pop, sim, data, cohort, reference)
		if err == nil {
			ranking, err = e.fuse(fuser, alpha, popRanking, simRanking)
		}
	}
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if req.Diversify && len(rerankers) > 0 {
		ranking = e.applyRerankers(ctx, rerankers, ranking, req.K)
	} else {
		ranking = ranking.Top(req.K)
	}

	logger.Debug().
		Int("returned", len(ranking)).
		Msg("recommendation complete")

	return ranking, nil
}

// prepareRequest applies defaults and resolves the hybrid weight.
func (e *Engine) prepareRequest(req Request, bestAlpha float64) (Request, float64, error) {
	if req.Method == "" {
		req.Method = MethodHybrid
	}
	if _, ok := ParseMethod(string(req.Method)); !ok {
		return req, 0, fmt.Errorf("unknown method %q", req.Method)
	}

	if req.K <= 0 {
		req.K = e.config.Ranking.TopN
	}
	if req.K > e.config.Limits.MaxK {
		req.K = e.config.Limits.MaxK
	}

	alpha := bestAlpha
	if req.Alpha != nil {
		alpha = *req.Alpha
	}
	if req.Method == MethodHybrid {
		if err := ValidateAlpha(alpha); err != nil {
			return req, 0, err
		}
	}

	return req, alpha, nil
}

// createRequestLogger creates a logger with request context.
func (e *Engine) createRequestLogger(req Request, reference string) zerolog.Logger {
	return e.logger.With().
		Str("reference", reference).
		Str("method", string(req.Method)).
		Int("k", req.K).
		Bool("diversify", req.Diversify).
		Logger()
}

// baseRankings computes the two rankings the fuser consumes.
func (e *Engine) baseRankings(ctx context.Context, pop PopularityRanker, sim SimilarityRanker, data *Dataset, cohort Cohort, reference string) (Ranking, Ranking, error) {
	popRanking, err := e.rankPopularity(ctx, pop, data, cohort, reference)
	if err != nil {
		return nil, nil, err
	}
	simRanking, err := e.rankSimilarity(ctx, sim, data, reference)
	if err != nil {
		return nil, nil, err
	}
	return popRanking, simRanking, nil
}

func (e *Engine) rankPopularity(ctx context.Context, pop PopularityRanker, data *Dataset, cohort Cohort, reference string) (Ranking, error) {
	start := time.Now()
	ranking, err := pop.Rank(ctx, data.Ratings, data.Catalog, cohort, reference)
	metrics.RecordRanking(string(MethodPopularity), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("popularity ranking: %w", err)
	}
	return ranking, nil
}

func (e *Engine) rankSimilarity(ctx context.Context, sim SimilarityRanker, data *Dataset, reference string) (Ranking, error) {
	start := time.Now()
	ranking, err := sim.Rank(ctx, data.Ratings, data.Catalog, reference)
	metrics.RecordRanking(string(MethodSimilarity), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("similarity ranking: %w", err)
	}
	return ranking, nil
}

func (e *Engine) fuse(fuser Fuser, alpha float64, pop, sim Ranking) (Ranking, error) {
	start := time.Now()
	ranking, err := fuser.Fuse(alpha, pop, sim)
	metrics.RecordRanking(string(MethodHybrid), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("hybrid fusion: %w", err)
	}
	return ranking, nil
}

// applyRerankers runs every reranker in registration order on a copy of
// entries. The result holds at most k entries.
func (e *Engine) applyRerankers(ctx context.Context, rerankers []Reranker, entries Ranking, k int) Ranking {
	out := entries.Top(len(entries))
	for _, rr := range rerankers {
		out = rr.Rerank(ctx, out, k)
	}
	return out.Top(k)
}

// LastResult returns the result of the last completed run, or nil.
func (e *Engine) LastResult() *Result {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.last
}

// GetStats returns engine activity counters.
func (e *Engine) GetStats() Stats {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	s := Stats{
		Runs:       e.runCount.Load(),
		Requests:   e.requestCount.Load(),
		Errors:     e.errorCount.Load(),
		Reference:  e.reference,
		CohortSize: e.cohort.Len(),
		BestAlpha:  e.bestAlpha,
	}
	if e.last != nil {
		s.LastRunAt = e.last.StartedAt
		s.LastRunDuration = e.last.Duration
	}
	return s
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}
