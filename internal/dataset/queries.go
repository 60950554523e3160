// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package dataset

import (
	"fmt"
	"strings"
)

// cleanBooksQuery drops malformed ISBNs and keeps the first row per ISBN.
// Only an uppercase X is a check digit; lowercase x leaves the ISBN to be
// dropped as non-numeric.
const cleanBooksQuery = `CREATE OR REPLACE TABLE books_clean AS
SELECT isbn, title, author, pos
FROM (
    SELECT
        regexp_replace(isbn, 'X$', '') AS isbn,
        title,
        coalesce(author, '') AS author,
        pos,
        row_number() OVER (PARTITION BY regexp_replace(isbn, 'X$', '') ORDER BY pos) AS isbn_rn
    FROM raw_books
    WHERE isbn IS NOT NULL AND title IS NOT NULL
)
WHERE isbn_rn = 1 AND regexp_full_match(isbn, '[0-9]+')`

// canonicalBooksQuery keeps one ISBN per title: the reference ISBN when it
// carries the title, otherwise the first in file order.
const canonicalBooksQuery = `CREATE OR REPLACE TABLE books_canonical AS
SELECT isbn, title, author
FROM (
    SELECT
        isbn, title, author,
        row_number() OVER (PARTITION BY title ORDER BY (isbn = ?) DESC, pos) AS rn
    FROM books_clean
)
WHERE rn = 1`

// titledRatingsQuery drops ratings without a catalog entry and moves the
// rest onto their title's canonical ISBN.
const titledRatingsQuery = `CREATE OR REPLACE TABLE ratings_titled AS
SELECT r.user_id, c.isbn, avg(r.rating) AS rating
FROM ratings_merged r
JOIN books_clean b ON b.isbn = r.isbn
JOIN books_canonical c ON c.title = b.title
GROUP BY r.user_id, c.isbn`

// reliabilityQuery applies the user filter first, then the book filter on
// what the user filter left.
const reliabilityQuery = `CREATE OR REPLACE TABLE ratings_final AS
WITH reliable_users AS (
    SELECT user_id, isbn, rating
    FROM ratings_titled
    WHERE user_id IN (
        SELECT user_id FROM ratings_titled GROUP BY user_id HAVING count(*) >= ?
    )
)
SELECT user_id, isbn, rating
FROM reliable_users
WHERE isbn IN (
    SELECT isbn FROM reliable_users GROUP BY isbn HAVING count(*) >= ?
)`

const catalogQuery = `CREATE OR REPLACE TABLE catalog_final AS
SELECT isbn, title, author
FROM books_canonical
WHERE isbn IN (SELECT DISTINCT isbn FROM ratings_final)`

// rawBooksQuery loads the first three columns of the books export. pos is
// the row's position in the file; it relies on preserve_insertion_order.
func (l *Loader) rawBooksQuery() string {
	return `CREATE OR REPLACE TABLE raw_books AS
SELECT row_number() OVER () AS pos, isbn, title, author
FROM read_csv(` + l.csvSource(l.cfg.BooksPath, "'isbn', 'title', 'author'") + `)`
}

func (l *Loader) rawRatingsQuery() string {
	return `CREATE OR REPLACE TABLE raw_ratings AS
SELECT user_id, isbn, rating
FROM read_csv(` + l.csvSource(l.cfg.RatingsPath, "'user_id', 'isbn', 'rating'") + `)`
}

// csvSource renders the read_csv arguments. Every column is read as text so
// a malformed value is dropped by TRY_CAST instead of failing the load.
func (l *Loader) csvSource(path, names string) string {
	return fmt.Sprintf(
		"%s, header = true, delim = %s, quote = '\"', encoding = %s, all_varchar = true, ignore_errors = true, null_padding = true, names = [%s]",
		sqlLiteral(path), sqlLiteral(l.cfg.Delimiter), sqlLiteral(l.cfg.Encoding), names,
	)
}

// mergeQuery parses the raw ratings and moves every rating of a merge title
// onto the reference ISBN ($1), averaging per (user, book). Merge titles are
// bound as $2..$n in uppercase.
func (l *Loader) mergeQuery() string {
	match := "false"
	if n := len(l.cfg.MergeTitles); n > 0 {
		placeholders := make([]string, n)
		for i := range placeholders {
			placeholders[i] = fmt.Sprintf("$%d", i+2)
		}
		match = "r.isbn IN (SELECT isbn FROM books_clean WHERE upper(title) IN (" + strings.Join(placeholders, ", ") + "))"
	}

	return `CREATE OR REPLACE TABLE ratings_merged AS
SELECT
    r.user_id,
    CASE WHEN ` + match + ` THEN $1 ELSE r.isbn END AS isbn,
    avg(r.rating) AS rating
FROM (
    SELECT
        TRY_CAST(user_id AS BIGINT) AS user_id,
        regexp_replace(isbn, 'X$', '') AS isbn,
        TRY_CAST(rating AS DOUBLE) AS rating
    FROM raw_ratings
) r
WHERE r.user_id IS NOT NULL
  AND r.rating BETWEEN 0 AND 10
  AND regexp_full_match(r.isbn, '[0-9]+')
GROUP BY ALL`
}

// sqlLiteral quotes s as a SQL string literal.
func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
