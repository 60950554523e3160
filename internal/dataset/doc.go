// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package dataset prepares the Book-Crossing rating export for the
// recommendation core.
//
// The Loader reads the ratings and books CSV files straight into DuckDB with
// read_csv and runs the cleaning pipeline as SQL:
//
//  1. ISBN cleaning: a trailing X check digit is stripped, ISBNs that still
//     contain a non-digit are dropped.
//  2. Series merge: books whose title matches one of the configured merge
//     titles (case-insensitive) have their ratings moved onto the reference
//     ISBN. A user's ratings that collide on one book are averaged.
//  3. Ratings without a catalog entry are dropped.
//  4. Title dedup: every title keeps one ISBN, the first in file order (the
//     reference ISBN always keeps its title). Ratings of the other editions
//     move onto it and are averaged per user.
//  5. Reliability filters: users with fewer than min_user_ratings ratings are
//     dropped, then books with fewer than min_book_ratings.
//
// The surviving ratings and the catalog entries they reference are scanned
// into a recommend.Dataset, which satisfies the core's data contract: one
// rating per (user, book), unique titles, values in [0, 10], every rated
// book in the catalog.
//
// Loader implements recommend.DataProvider.
package dataset
