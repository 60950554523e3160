// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

/*
Package supervisor runs the serve-mode services of fanshelf under suture v4.

The batch evaluation in cmd/fanshelf is not supervised: it runs once, writes
its reports and returns. When the HTTP surface is enabled the process keeps
running, and the long-lived pieces are organized into a small tree:

	RootSupervisor ("fanshelf")
	├── ComputeSupervisor ("compute-layer")
	│   └── EvaluationService (if evaluation.rerun_interval > 0)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Failure Handling

Each layer counts failures on its own. A service error increments the
counter, which decays over FailureDecay seconds; above FailureThreshold the
layer waits FailureBackoff before the next restart. Returning nil or
suture.ErrDoNotRestart stops a service for good.

Supervisor events (restarts, backoff, stop timeouts) are logged through
sutureslog, which writes to the zerolog global logger via the slog adapter
in internal/logging.

# What Is NOT Supervised

DuckDB is an embedded library and is closed by cmd/fanshelf after the batch
run; the HTTP surface only reads in-memory state.
*/
package supervisor
