// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/fanshelf/internal/dataset"
	"github.com/tomtom215/fanshelf/internal/recommend"
)

// ErrNoSweep is returned when a result carries no sweep to report.
var ErrNoSweep = errors.New("result has no sweep")

// Report is the persisted outcome of one engine run.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Reference  string `json:"reference"`
	CohortSize int    `json:"cohort_size"`

	Folds     int   `json:"folds"`
	FoldSizes []int `json:"fold_sizes"`
	Seed      int64 `json:"seed"`

	Alphas          []recommend.AlphaScore `json:"alphas"`
	BestAlpha       float64                `json:"best_alpha"`
	BestScore       float64                `json:"best_score"`
	DegenerateFolds int                    `json:"degenerate_folds"`

	Popularity  recommend.Ranking `json:"popularity"`
	Similarity  recommend.Ranking `json:"similarity"`
	Hybrid      recommend.Ranking `json:"hybrid"`
	Diversified recommend.Ranking `json:"diversified,omitempty"`

	Dataset *dataset.Stats `json:"dataset,omitempty"`

	Duration time.Duration `json:"duration_ns"`
}

// New builds a report from a finished run. stats may be nil.
func New(result *recommend.Result, stats *dataset.Stats) (*Report, error) {
	if result == nil {
		return nil, fmt.Errorf("result is nil")
	}
	if result.Sweep == nil {
		return nil, ErrNoSweep
	}

	sweep := result.Sweep
	r := &Report{
		RunID:           uuid.New().String(),
		GeneratedAt:     time.Now().UTC(),
		Reference:       result.Reference,
		CohortSize:      result.CohortSize,
		Alphas:          sweep.Scores,
		BestAlpha:       sweep.BestAlpha,
		BestScore:       sweep.BestScore,
		DegenerateFolds: sweep.DegenerateFolds,
		Popularity:      result.Popularity,
		Similarity:      result.Similarity,
		Hybrid:          result.Hybrid,
		Diversified:     result.Diversified,
		Dataset:         stats,
		Duration:        result.Duration,
	}
	if sweep.Folds != nil {
		r.Folds = sweep.Folds.K
		r.FoldSizes = sweep.Folds.Sizes()
		r.Seed = sweep.Folds.Seed
	}

	return r, nil
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteSweepCSV writes one alpha,score row per evaluated alpha in grid order.
func (r *Report) WriteSweepCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"alpha", "score"}); err != nil {
		return fmt.Errorf("write sweep header: %w", err)
	}
	for _, s := range r.Alphas {
		row := []string{
			strconv.FormatFloat(s.Alpha, 'f', -1, 64),
			strconv.FormatFloat(s.Score, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write sweep row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadJSON decodes a report written by WriteJSON.
func ReadJSON(rd io.Reader) (*Report, error) {
	var r Report
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

// Save writes the JSON report to jsonPath and the sweep CSV to csvPath.
// An empty path skips that output.
func (r *Report) Save(jsonPath, csvPath string) error {
	if jsonPath != "" {
		if err := writeFile(jsonPath, r.WriteJSON); err != nil {
			return err
		}
	}
	if csvPath != "" {
		if err := writeFile(csvPath, r.WriteSweepCSV); err != nil {
			return err
		}
	}
	return nil
}

// writeFile writes through a temporary file in the target directory and
// renames it into place.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create report directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
