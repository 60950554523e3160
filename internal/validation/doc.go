// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps the library in a thread-safe singleton with one custom tag and
// human-readable messages. Both the configuration loader and the HTTP query
// parsing validate through it.
//
// # Custom Tags
//
//   - isbn: a cleaned ISBN, digits only (empty passes, pair with required)
//
// # Example
//
//	type RecommendationsQuery struct {
//	    Method string   `validate:"omitempty,oneof=popularity similarity hybrid"`
//	    Alpha  *float64 `validate:"omitempty,gte=0,lte=1"`
//	    K      int      `validate:"gte=0,lte=1000"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Error Message Translation
//
//	required   -> "K is required"
//	isbn       -> "ReferenceISBN must be a cleaned ISBN (digits only)"
//	gte=0      -> "Alpha must be greater than or equal to 0"
//	oneof=a b  -> "Method must be one of: a b"
//	len=1      -> "Delimiter must have length 1"
//
// # Thread Safety
//
// The singleton validator is initialized once and safe for concurrent use.
package validation
