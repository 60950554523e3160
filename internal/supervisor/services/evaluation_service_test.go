// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/recommend"
)

// mockRunner is a Runner that records its calls.
type mockRunner struct {
	mu         sync.Mutex
	calls      int
	references []string
	err        error
	delay      time.Duration
}

func (m *mockRunner) Run(ctx context.Context, reference string) (*recommend.Result, error) {
	m.mu.Lock()
	m.calls++
	m.references = append(m.references, reference)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &recommend.Result{
		Reference:  reference,
		CohortSize: 4,
		Sweep:      &recommend.SweepResult{BestAlpha: 0.5},
	}, nil
}

func (m *mockRunner) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestEvaluationService_Defaults(t *testing.T) {
	svc := NewEvaluationService(&mockRunner{}, nil, EvaluationServiceConfig{Reference: "0345339703"}, zerolog.Nop())

	if svc.String() != "evaluation-service" {
		t.Errorf("String() = %q, want evaluation-service", svc.String())
	}
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.config.Timeout != 30*time.Minute {
		t.Errorf("Timeout = %v, want 30m", svc.config.Timeout)
	}
}

func TestEvaluationService_RunOnStartup(t *testing.T) {
	runner := &mockRunner{}
	var (
		mu        sync.Mutex
		published []*recommend.Result
	)
	publish := func(_ context.Context, r *recommend.Result) error {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, r)
		return nil
	}

	svc := NewEvaluationService(runner, publish, EvaluationServiceConfig{
		Reference:    "0345339703",
		Interval:     time.Hour,
		RunOnStartup: true,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := runner.getCalls(); got != 1 {
		t.Errorf("Run() called %d times, want 1", got)
	}
	if runner.references[0] != "0345339703" {
		t.Errorf("reference = %q, want 0345339703", runner.references[0])
	}

	mu.Lock()
	defer mu.Unlock()
	if len(published) != 1 || published[0].Reference != "0345339703" {
		t.Errorf("published = %+v, want one result for 0345339703", published)
	}
}

func TestEvaluationService_NoRunOnStartup(t *testing.T) {
	runner := &mockRunner{}
	svc := NewEvaluationService(runner, nil, EvaluationServiceConfig{Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := runner.getCalls(); got != 0 {
		t.Errorf("Run() called %d times, want 0", got)
	}
}

func TestEvaluationService_Scheduled(t *testing.T) {
	runner := &mockRunner{}
	svc := NewEvaluationService(runner, nil, EvaluationServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for runner.getCalls() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if got := runner.getCalls(); got < 2 {
		t.Errorf("Run() called %d times, want >= 2", got)
	}
}

func TestEvaluationService_GracefulShutdown(t *testing.T) {
	runner := &mockRunner{delay: time.Second}
	svc := NewEvaluationService(runner, nil, EvaluationServiceConfig{
		Interval:     time.Hour,
		RunOnStartup: true,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve() did not return in time")
	}
}

func TestEvaluationService_Errors(t *testing.T) {
	tests := []struct {
		name       string
		runErr     error
		publishErr error
		wantErr    error
	}{
		{name: "run failure", runErr: recommend.ErrReferenceNotFound, wantErr: recommend.ErrReferenceNotFound},
		{name: "publish failure", publishErr: errors.New("disk full")},
		{name: "success"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			publish := func(context.Context, *recommend.Result) error { return tt.publishErr }
			svc := NewEvaluationService(&mockRunner{err: tt.runErr}, publish, EvaluationServiceConfig{}, zerolog.Nop())

			err := svc.evaluate(context.Background())
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("evaluate() = %v, want %v", err, tt.wantErr)
				}
			case tt.publishErr != nil:
				if !errors.Is(err, tt.publishErr) {
					t.Errorf("evaluate() = %v, want %v", err, tt.publishErr)
				}
			default:
				if err != nil {
					t.Errorf("evaluate() = %v, want nil", err)
				}
			}
		})
	}
}
