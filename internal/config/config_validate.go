// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package config

import (
	"fmt"

	"github.com/tomtom215/fanshelf/internal/validation"
)

// Validate checks struct tags first, then the rules that span fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateDataset() error {
	if c.Dataset.RatingsPath == c.Dataset.BooksPath {
		return fmt.Errorf("dataset.ratings_path and dataset.books_path must differ, both are %q", c.Dataset.RatingsPath)
	}
	for i, title := range c.Dataset.MergeTitles {
		if title == "" {
			return fmt.Errorf("dataset.merge_titles[%d] is empty", i)
		}
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.MaxK < c.Recommend.TopN {
		return fmt.Errorf("recommend.max_k (%d) must be >= recommend.top_n (%d)", c.Recommend.MaxK, c.Recommend.TopN)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.Enabled {
		return nil
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive when rate limiting is enabled")
	}
	return nil
}
