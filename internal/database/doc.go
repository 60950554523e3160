// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package database wraps the DuckDB connection Fanshelf prepares its rating
// data in.
//
// DuckDB reads the raw CSV exports directly (read_csv) and runs the cleaning
// pipeline as SQL, so the prepared tables never leave the database until the
// dataset package scans them into memory.
//
// # Configuration
//
//   - Path: file path, or ":memory:" (default) for an in-memory database
//   - MaxMemory: DuckDB memory limit, e.g. "2GB"
//   - Threads: DuckDB worker threads, 0 uses runtime.NumCPU()
//   - PreserveInsertionOrder: must stay true for file-order deduplication
//
// # Usage
//
//	db, err := database.New(&cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	err = db.Exec(ctx, "load_ratings", "CREATE TABLE ...")
//
// Every Exec is timed into fanshelf_db_query_duration_seconds under its
// operation label.
package database
