// Fanshelf - Fan-Group Book Recommendation and Evaluation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fanshelf

// Package evaluation cross-validates the hybrid blending weight.
//
// The fan cohort is split into k folds once per sweep (AssignFolds). For
// each fold the held-out fans lose every rating from the training data, the
// rankers run on what is left, and the hybrid top-N list is scored by the
// mean rating the held-out fans gave the recommended books they had read.
//
// A fold that cannot be scored (no held-out fans, none of them rated a
// recommended book, or the reference book vanished from the training data)
// contributes 0, logs a warning and increments
// fanshelf_degenerate_folds_total. The sweep never aborts on such a fold.
package evaluation
