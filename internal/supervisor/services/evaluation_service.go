// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// Runner re-runs the full evaluation. Satisfied by *recommend.Engine.
type Runner interface {
	Run(ctx context.Context, reference string) (*recommend.Result, error)
}

var _ Runner = (*recommend.Engine)(nil)

// PublishFunc receives every successful result, typically to write the
// reports and replace the one served by the API.
type PublishFunc func(ctx context.Context, result *recommend.Result) error

// EvaluationServiceConfig holds configuration for the evaluation service.
type EvaluationServiceConfig struct {
	// Reference is the ISBN whose fans form the cohort.
	Reference string

	// Interval between re-evaluations. Default: 24h.
	Interval time.Duration

	// RunOnStartup re-evaluates as soon as the service starts instead of
	// waiting for the first tick.
	RunOnStartup bool

	// Timeout bounds a single run. Default: 30m.
	Timeout time.Duration
}

// EvaluationService re-runs the evaluation on a schedule so a long-running
// server picks up changes to the CSV inputs.
type EvaluationService struct {
	runner  Runner
	publish PublishFunc
	config  EvaluationServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewEvaluationService creates a new evaluation service. publish may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluationService(runner Runner, publish PublishFunc, cfg EvaluationServiceConfig, logger zerolog.Logger) *EvaluationService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &EvaluationService{
		runner:  runner,
		publish: publish,
		config:  cfg,
		logger:  logger.With().Str("service", "evaluation").Str("reference", cfg.Reference).Logger(),
		name:    "evaluation-service",
	}
}

// Serve implements suture.Service. A failed run is logged and retried on
// the next tick; the service itself only stops when ctx ends.
func (s *EvaluationService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("evaluation service starting")

	if s.config.RunOnStartup {
		if err := s.evaluate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("initial evaluation failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("evaluation service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.logger.Debug().Msg("scheduled evaluation triggered")
			if err := s.evaluate(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled evaluation failed")
			}
		}
	}
}

func (s *EvaluationService) evaluate(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	result, err := s.runner.Run(runCtx, s.config.Reference)
	if err != nil {
		return fmt.Errorf("run evaluation: %w", err)
	}

	if s.publish != nil {
		if err := s.publish(runCtx, result); err != nil {
			return fmt.Errorf("publish result: %w", err)
		}
	}

	var bestAlpha float64
	if result.Sweep != nil {
		bestAlpha = result.Sweep.BestAlpha
	}
	s.logger.Info().
		Int("cohort_size", result.CohortSize).
		Float64("best_alpha", bestAlpha).
		Dur("duration", time.Since(start)).
		Msg("evaluation complete")

	return nil
}

// String returns the service name suture logs with.
func (s *EvaluationService) String() string {
	return s.name
}
