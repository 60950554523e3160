// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package report

import "sync"

// Store holds the most recent report for concurrent readers.
type Store struct {
	mu     sync.RWMutex
	latest *Report
}

// Set replaces the latest report.
func (s *Store) Set(r *Report) {
	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()
}

// LatestReport returns the latest report, or nil before the first Set.
func (s *Store) LatestReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}
