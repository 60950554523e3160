// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults reproducing the reference study
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Input:
//     - Dataset: ratings/books CSV paths, reference book, reliability filters
//     - Database: DuckDB connection used by the preparation stage
//
//  2. Recommendation:
//     - Recommend: ranking and cohort parameters
//     - Evaluation: cross-validation parameters and report outputs
//
//  3. Serving & Observability:
//     - Server: optional read-only HTTP result surface
//     - Logging: log level and output format
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	loader, err := dataset.NewLoader(db, cfg.Dataset, logger)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Dataset    DatasetConfig    `koanf:"dataset"`
	Database   DatabaseConfig   `koanf:"database"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// DatasetConfig describes the raw Book-Crossing style CSV dump and how the
// preparation stage cleans it.
//
// Environment Variables:
//   - FANSHELF_RATINGS_PATH: ratings CSV (User-ID;ISBN;Book-Rating)
//   - FANSHELF_BOOKS_PATH: books CSV (ISBN;Book-Title;Book-Author;...)
//   - FANSHELF_REFERENCE_ISBN: canonical ISBN of the reference book
//   - FANSHELF_MERGE_TITLES: comma-separated titles merged onto the reference
//   - FANSHELF_MIN_USER_RATINGS: minimum ratings per user (default: 5)
//   - FANSHELF_MIN_BOOK_RATINGS: minimum ratings per book (default: 20)
type DatasetConfig struct {
	RatingsPath string `koanf:"ratings_path" validate:"required"`
	BooksPath   string `koanf:"books_path" validate:"required"`

	// ReferenceISBN is the cleaned ISBN of the book whose fans form the cohort.
	// Default: 0345339703
	ReferenceISBN string `koanf:"reference_isbn" validate:"required,isbn"`

	// MergeTitles lists titles (compared case-insensitively) whose ratings are
	// remapped onto ReferenceISBN before deduplication, e.g. the volumes of a
	// series. Duplicate (user, book) pairs produced by the merge are averaged.
	MergeTitles []string `koanf:"merge_titles"`

	MinUserRatings int `koanf:"min_user_ratings" validate:"gte=1"`
	MinBookRatings int `koanf:"min_book_ratings" validate:"gte=1"`

	// Delimiter is the CSV field separator.
	// Default: ;
	Delimiter string `koanf:"delimiter" validate:"len=1"`

	// Encoding of both CSV files.
	// Default: latin-1
	Encoding string `koanf:"encoding" validate:"oneof=utf-8 latin-1"`
}

// DatabaseConfig holds DuckDB settings for the preparation stage.
type DatabaseConfig struct {
	// Path is the DuckDB database. Empty or ":memory:" keeps it in memory.
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory" validate:"required"`
	Threads                int    `koanf:"threads" validate:"gte=0"` // Number of DuckDB threads (0 = use NumCPU)
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"` // Required for first-edition title dedup
}

// RecommendConfig holds recommendation engine settings.
// cmd/fanshelf converts it into recommend.Config.
//
// Environment Variables:
//   - FANSHELF_MIN_SUPPORT, FANSHELF_TOP_N, FANSHELF_FAN_THRESHOLD
//   - FANSHELF_TIE_BREAK: title_desc or title_asc
//   - FANSHELF_DIVERSIFY, FANSHELF_RERANKER, FANSHELF_MMR_LAMBDA
//   - FANSHELF_MAX_K
type RecommendConfig struct {
	// MinSupport is the minimum number of fan ratings before a book's mean
	// counts toward popularity.
	// Default: 5
	MinSupport int `koanf:"min_support" validate:"gte=0"`

	// TopN is the recommended list length.
	// Default: 10
	TopN int `koanf:"top_n" validate:"gte=1"`

	// FanThreshold is the rating a user must strictly exceed on the
	// reference book to count as a fan.
	// Default: 8
	FanThreshold float64 `koanf:"fan_threshold" validate:"gte=0,lte=10"`

	TieBreak  string  `koanf:"tie_break" validate:"oneof=title_desc title_asc"`
	Diversify bool    `koanf:"diversify"`
	Reranker  string  `koanf:"reranker" validate:"oneof=author mmr"`
	MMRLambda float64 `koanf:"mmr_lambda" validate:"gte=0,lte=1"`

	// MaxK caps the list length of API requests.
	// Default: 100
	MaxK int `koanf:"max_k" validate:"gte=1"`
}

// EvaluationConfig holds cross-validation settings and report outputs.
//
// Environment Variables:
//   - FANSHELF_FOLDS: number of folds (default: 4)
//   - FANSHELF_GRID_POINTS: alpha grid size (default: 20)
//   - FANSHELF_WORKERS: parallel (alpha, fold) evaluations (default: 1)
//   - FANSHELF_SEED: fold shuffle seed (default: 444)
//   - FANSHELF_REPORT_PATH: JSON report file (empty disables)
//   - FANSHELF_SWEEP_CSV_PATH: alpha/score CSV file (empty disables)
//   - FANSHELF_RERUN_INTERVAL: re-evaluation period in serve mode (0 disables)
type EvaluationConfig struct {
	Folds      int   `koanf:"folds" validate:"gte=2"`
	GridPoints int   `koanf:"grid_points" validate:"gte=2"`
	Workers    int   `koanf:"workers" validate:"gte=1"`
	Seed       int64 `koanf:"seed"`

	ReportPath   string `koanf:"report_path"`
	SweepCSVPath string `koanf:"sweep_csv_path"`

	// RerunInterval re-runs the evaluation while serving so edits to the CSV
	// inputs reach the API without a restart. Only used when server.enabled.
	// Default: 0 (disabled)
	RerunInterval time.Duration `koanf:"rerun_interval" validate:"gte=0"`
}

// ServerConfig holds the optional HTTP result surface settings.
//
// Environment Variables:
//   - HTTP_ENABLED: serve results after the run (default: false)
//   - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT
//   - HTTP_CORS_ORIGINS: comma-separated allowed origins (default: *)
//   - HTTP_RATE_LIMIT_REQUESTS, HTTP_RATE_LIMIT_WINDOW
//   - HTTP_CACHE_TTL: lifetime of cached recommendation lists (0 disables)
type ServerConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. 0 disables.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	CacheTTL time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Addr returns the listen address of the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Load reads configuration with the following precedence (highest last):
//  1. Built-in defaults
//  2. Config file (CONFIG_PATH or config.yaml if it exists)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
