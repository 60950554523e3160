// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/tomtom215/fanshelf/internal/logging"
	"github.com/tomtom215/fanshelf/internal/metrics"
)

// defaultQueryTimeout bounds statements issued without a deadline.
const defaultQueryTimeout = 5 * time.Minute

// identifierPattern restricts table names that are interpolated into SQL.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ensureContext applies defaultQueryTimeout when ctx has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}

	return ctx, func() {}
}

// Exec runs one statement and records it under operation in
// fanshelf_db_query_duration_seconds.
func (db *DB) Exec(ctx context.Context, operation, query string, args ...any) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, args...)
	duration := time.Since(start)
	metrics.RecordDBQuery(operation, duration, err)

	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	logging.Debug().
		Str("operation", operation).
		Dur("duration", duration).
		Msg("Statement executed")
	return nil
}

// Query runs a query and hands every row to scan. Rows are closed before
// Query returns; the first scan error stops the iteration.
func (db *DB) Query(ctx context.Context, operation, query string, scan func(*sql.Rows) error, args ...any) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	err := db.query(ctx, query, scan, args...)
	metrics.RecordDBQuery(operation, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return nil
}

func (db *DB) query(ctx context.Context, query string, scan func(*sql.Rows) error, args ...any) error {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer closeWithLog(rows, nil, "rows")

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// TableRowCount returns the number of rows in table.
func (db *DB) TableRowCount(ctx context.Context, table string) (int, error) {
	if !identifierPattern.MatchString(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	//nolint:gosec // table is checked against identifierPattern
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", table, err)
	}
	return n, nil
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}
