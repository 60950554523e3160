// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

/*
Package cache provides a thread-safe in-memory cache with TTL expiration.

The API caches computed recommendation lists here. Keys are built with
GenerateKey from the request parameters and the engine run they were
computed from, so a new run never serves a stale list:

	c := cache.New(5*time.Minute, 1024)

	key := cache.GenerateKey("recommendations", params)
	if v, ok := c.Get(key); ok {
	    return v.(recommend.Ranking)
	}
	c.Set(key, ranking)

Expiration is lazy. A full cache purges expired entries on the next Set and
otherwise evicts an arbitrary entry.
*/
package cache
