// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAlpha is returned when a blending weight lies outside [0, 1].
	ErrInvalidAlpha = errors.New("alpha must be in [0, 1]")

	// ErrReferenceNotFound is returned when the reference book has no column
	// in the rating matrix.
	ErrReferenceNotFound = errors.New("reference item not found")

	// ErrDataContract is the sentinel matched by every DataContractError.
	ErrDataContract = errors.New("data contract violation")

	// ErrNoDataProvider is returned by Engine operations that need data.
	ErrNoDataProvider = errors.New("data provider not set")

	// ErrNotReady is returned by Recommend before the first successful Run.
	ErrNotReady = errors.New("engine has not completed a run")

	// ErrComponentMissing is returned when a ranker or evaluator is not set.
	ErrComponentMissing = errors.New("engine component not set")
)

// DataContractError reports input that breaks a guarantee the preparation
// stage is supposed to provide.
type DataContractError struct {
	Field  string
	Value  string
	Reason string
}

func (e *DataContractError) Error() string {
	return fmt.Sprintf("data contract violation: %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrDataContract) match any DataContractError.
func (e *DataContractError) Is(target error) bool {
	return target == ErrDataContract
}

// ValidateAlpha rejects weights outside [0, 1], including NaN.
func ValidateAlpha(alpha float64) error {
	if !(alpha >= 0 && alpha <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, alpha)
	}
	return nil
}
