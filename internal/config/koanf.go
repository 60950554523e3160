// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fanshelf/config.yaml",
	"/etc/fanshelf/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultReferenceISBN is the canonical ISBN of The Fellowship of the Ring
// in the Book-Crossing dump.
const DefaultReferenceISBN = "0345339703"

// DefaultMergeTitles are the three volumes of The Lord of the Rings as
// spelled in the Book-Crossing dump.
var DefaultMergeTitles = []string{
	"The Fellowship of the Ring (The Lord of the Rings, Part 1)",
	"The Two Towers (The Lord of the Rings, Part 2)",
	"The Return of the King (The Lord of the Rings, Part 3)",
}

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			RatingsPath:    "data/BX-Book-Ratings.csv",
			BooksPath:      "data/BX-Books.csv",
			ReferenceISBN:  DefaultReferenceISBN,
			MergeTitles:    append([]string(nil), DefaultMergeTitles...),
			MinUserRatings: 5,
			MinBookRatings: 20,
			Delimiter:      ";",
			Encoding:       "latin-1",
		},
		Database: DatabaseConfig{
			Path:                   ":memory:",
			MaxMemory:              "2GB",
			Threads:                0,    // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true, // DuckDB default
		},
		Recommend: RecommendConfig{
			MinSupport:   5,
			TopN:         10,
			FanThreshold: 8,
			TieBreak:     "title_desc",
			Diversify:    true,
			Reranker:     "author",
			MMRLambda:    0.7,
			MaxK:         100,
		},
		Evaluation: EvaluationConfig{
			Folds:        4,
			GridPoints:   20,
			Workers:      1,
			Seed:         444,
			ReportPath:   "fanshelf-report.json",
			SweepCSVPath: "fanshelf-sweep.csv",
		},
		Server: ServerConfig{
			Enabled:           false,
			Host:              "0.0.0.0",
			Port:              8419,
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CacheTTL:          5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// FANSHELF_TOP_N -> recommend.top_n
	// HTTP_PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"dataset.merge_titles",
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file or defaults), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Dataset
	"fanshelf_ratings_path":     "dataset.ratings_path",
	"fanshelf_books_path":       "dataset.books_path",
	"fanshelf_reference_isbn":   "dataset.reference_isbn",
	"fanshelf_merge_titles":     "dataset.merge_titles",
	"fanshelf_min_user_ratings": "dataset.min_user_ratings",
	"fanshelf_min_book_ratings": "dataset.min_book_ratings",
	"fanshelf_csv_delimiter":    "dataset.delimiter",
	"fanshelf_csv_encoding":     "dataset.encoding",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Recommend
	"fanshelf_min_support":   "recommend.min_support",
	"fanshelf_top_n":         "recommend.top_n",
	"fanshelf_fan_threshold": "recommend.fan_threshold",
	"fanshelf_tie_break":     "recommend.tie_break",
	"fanshelf_diversify":     "recommend.diversify",
	"fanshelf_reranker":      "recommend.reranker",
	"fanshelf_mmr_lambda":    "recommend.mmr_lambda",
	"fanshelf_max_k":         "recommend.max_k",

	// Evaluation
	"fanshelf_folds":          "evaluation.folds",
	"fanshelf_grid_points":    "evaluation.grid_points",
	"fanshelf_workers":        "evaluation.workers",
	"fanshelf_seed":           "evaluation.seed",
	"fanshelf_report_path":    "evaluation.report_path",
	"fanshelf_sweep_csv_path": "evaluation.sweep_csv_path",
	"fanshelf_rerun_interval": "evaluation.rerun_interval",

	// Server
	"http_enabled":             "server.enabled",
	"http_host":                "server.host",
	"http_port":                "server.port",
	"http_timeout":             "server.timeout",
	"http_shutdown_timeout":    "server.shutdown_timeout",
	"http_cors_origins":        "server.cors_origins",
	"http_rate_limit_requests": "server.rate_limit_requests",
	"http_rate_limit_window":   "server.rate_limit_window",
	"http_cache_ttl":           "server.cache_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - FANSHELF_TOP_N -> recommend.top_n
//   - DUCKDB_MAX_MEMORY -> database.max_memory
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
