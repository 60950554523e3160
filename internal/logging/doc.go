// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package logging provides centralized zerolog-based structured logging for Fanshelf.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from config.LoggingConfig
//   - JSON output for batch runs and log shipping, console output for humans
//   - Request-scoped loggers carried in context.Context
//   - An slog.Handler adapter so that sutureslog writes through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	    Caller: cfg.Logging.Caller,
//	})
//
//	logging.Info().Str("reference", isbn).Msg("run starting")
//
// Components receive a zerolog.Logger and derive their own child logger:
//
//	engine, err := recommend.NewEngine(cfg, logging.WithComponent("engine"))
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Int("fans", n).Msg("selected fan cohort") // Correct
//	logging.Info().Int("fans", n)                            // WRONG - log not emitted
package logging
