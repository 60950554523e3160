// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package report turns an engine run into its written outputs: a JSON
// report of the whole run and a two-column alpha,score CSV of the sweep for
// plotting.
package report
