// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package database

import (
	"runtime"
	"time"
)

// configureConnectionPool sets connection pool parameters.
//
// All connections of one *sql.DB share a single DuckDB instance, so tables
// created on one connection are visible on the others. TEMP tables are not,
// which is why preparation uses ordinary tables.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}
