// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fanshelf/internal/config"
	"github.com/tomtom215/fanshelf/internal/database"
	"github.com/tomtom215/fanshelf/internal/metrics"
	"github.com/tomtom215/fanshelf/internal/recommend"
)

// ErrEmptyDataset is returned when no rating survives preparation.
var ErrEmptyDataset = errors.New("no ratings survived preparation")

// Table names of the preparation pipeline, in order.
const (
	tableRawBooks       = "raw_books"
	tableRawRatings     = "raw_ratings"
	tableBooks          = "books_clean"
	tableCanonicalBooks = "books_canonical"
	tableMergedRatings  = "ratings_merged"
	tableTitledRatings  = "ratings_titled"
	tableRatings        = "ratings_final"
	tableCatalog        = "catalog_final"
)

// Stats counts the rows left after each preparation step.
type Stats struct {
	RawRatings    int           `json:"raw_ratings"`
	RawBooks      int           `json:"raw_books"`
	CleanBooks    int           `json:"clean_books"`
	MergedRatings int           `json:"merged_ratings"`
	TitledRatings int           `json:"titled_ratings"`
	Ratings       int           `json:"ratings"`
	Users         int           `json:"users"`
	Books         int           `json:"books"`
	Duration      time.Duration `json:"duration"`
}

// Loader prepares the dataset in DuckDB.
type Loader struct {
	db     *database.DB
	cfg    config.DatasetConfig
	logger zerolog.Logger

	mu    sync.RWMutex
	stats *Stats
}

// Verify interface compliance.
var _ recommend.DataProvider = (*Loader)(nil)

// NewLoader creates a Loader reading the files named in cfg.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLoader(db *database.DB, cfg config.DatasetConfig, logger zerolog.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if cfg.ReferenceISBN == "" {
		return nil, fmt.Errorf("reference ISBN is required")
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ";"
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "utf-8"
	}
	cfg.MergeTitles = append([]string(nil), cfg.MergeTitles...)

	return &Loader{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "dataset").Logger(),
	}, nil
}

// Load runs the preparation pipeline and returns the cleaned dataset.
func (l *Loader) Load(ctx context.Context) (*recommend.Dataset, error) {
	start := time.Now()

	for _, path := range []string{l.cfg.RatingsPath, l.cfg.BooksPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("dataset file: %w", err)
		}
	}

	steps := []struct {
		operation string
		query     string
		args      []any
	}{
		{"load_books", l.rawBooksQuery(), nil},
		{"load_ratings", l.rawRatingsQuery(), nil},
		{"clean_books", cleanBooksQuery, nil},
		{"canonical_books", canonicalBooksQuery, []any{l.cfg.ReferenceISBN}},
		{"merge_series", l.mergeQuery(), l.mergeArgs()},
		{"dedup_titles", titledRatingsQuery, nil},
		{"filter_reliability", reliabilityQuery, []any{l.cfg.MinUserRatings, l.cfg.MinBookRatings}},
		{"build_catalog", catalogQuery, nil},
	}

	for _, step := range steps {
		if err := l.db.Exec(ctx, step.operation, step.query, step.args...); err != nil {
			return nil, fmt.Errorf("prepare dataset: %w", err)
		}
	}

	stats, err := l.collectStats(ctx)
	if err != nil {
		return nil, err
	}
	if stats.Ratings == 0 {
		return nil, ErrEmptyDataset
	}

	ds, err := l.scan(ctx)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("prepared dataset: %w", err)
	}

	stats.Users = ds.UserCount()
	stats.Duration = time.Since(start)
	l.mu.Lock()
	l.stats = stats
	l.mu.Unlock()

	l.logger.Info().
		Int("raw_ratings", stats.RawRatings).
		Int("raw_books", stats.RawBooks).
		Int("ratings", stats.Ratings).
		Int("users", stats.Users).
		Int("books", stats.Books).
		Dur("duration", stats.Duration).
		Msg("Dataset prepared")

	return ds, nil
}

// Stats returns the row counts of the last successful Load, or nil.
func (l *Loader) Stats() *Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.stats == nil {
		return nil
	}
	s := *l.stats
	return &s
}

// collectStats counts every pipeline table and publishes the counts as
// fanshelf_dataset_rows.
func (l *Loader) collectStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	targets := []struct {
		table string
		dst   *int
	}{
		{tableRawRatings, &stats.RawRatings},
		{tableRawBooks, &stats.RawBooks},
		{tableBooks, &stats.CleanBooks},
		{tableMergedRatings, &stats.MergedRatings},
		{tableTitledRatings, &stats.TitledRatings},
		{tableRatings, &stats.Ratings},
		{tableCatalog, &stats.Books},
	}

	for _, t := range targets {
		n, err := l.db.TableRowCount(ctx, t.table)
		if err != nil {
			return nil, err
		}
		*t.dst = n
		metrics.SetDatasetRows(t.table, n)
	}
	return stats, nil
}

// scan reads the final tables into memory in a stable order.
func (l *Loader) scan(ctx context.Context) (*recommend.Dataset, error) {
	ds := &recommend.Dataset{}

	err := l.db.Query(ctx, "scan_catalog",
		"SELECT isbn, title, author FROM "+tableCatalog+" ORDER BY isbn",
		func(rows *sql.Rows) error {
			var b recommend.Book
			if err := rows.Scan(&b.ItemID, &b.Title, &b.Author); err != nil {
				return err
			}
			ds.Catalog = append(ds.Catalog, b)
			return nil
		})
	if err != nil {
		return nil, err
	}

	err = l.db.Query(ctx, "scan_ratings",
		"SELECT user_id, isbn, rating FROM "+tableRatings+" ORDER BY user_id, isbn",
		func(rows *sql.Rows) error {
			var (
				userID int64
				r      recommend.Rating
			)
			if err := rows.Scan(&userID, &r.ItemID, &r.Value); err != nil {
				return err
			}
			r.UserID = int(userID)
			ds.Ratings = append(ds.Ratings, r)
			return nil
		})
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// mergeArgs returns the uppercased merge titles bound into mergeQuery.
func (l *Loader) mergeArgs() []any {
	args := make([]any, 0, len(l.cfg.MergeTitles)+1)
	args = append(args, l.cfg.ReferenceISBN)
	for _, title := range l.cfg.MergeTitles {
		args = append(args, strings.ToUpper(title))
	}
	return args
}
