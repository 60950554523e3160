// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

/*
Package config provides centralized configuration management for Fanshelf.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The result is checked with
go-playground/validator struct tags (see internal/validation) and a few
cross-field rules.

# Configuration Sources

  - Defaults reproduce the reference study: The Lord of the Rings fans
    (ISBN 0345339703, rating > 8), 4 folds, 20 alpha points, seed 444
  - CONFIG_PATH, or config.yaml / /etc/fanshelf/config.yaml
  - Environment variables (listed per section on each struct)

# Example config.yaml

	dataset:
	  ratings_path: /data/BX-Book-Ratings.csv
	  books_path: /data/BX-Books.csv
	  reference_isbn: "0345339703"
	recommend:
	  top_n: 10
	  reranker: mmr
	evaluation:
	  workers: 4
	server:
	  enabled: true
	  port: 8419

Unknown environment variables are ignored.
*/
package config
