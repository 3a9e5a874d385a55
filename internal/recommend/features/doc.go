// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package features fits the multi-modal feature representation of a wine
// catalog snapshot.
//
// # Modalities
//
//   - Text: the configured text fields of each record are joined into one
//     document and weighted with smoothed TF-IDF. Rows are L2-normalized so the
//     cosine similarity of two rows is their dot product.
//   - Categorical: every configured label field gets a dense code table. Absent
//     values are coded as "Unknown"; labels first seen at query time map to
//     UnseenCode.
//   - Ordinal: every configured intensity field stores its catalog mean (used
//     for imputation) and min-max bounds for 0-1 normalization.
//
// # Immutability
//
// Fit returns a *Space that is never modified afterwards. All accessors return
// copies or values, so a Space can be shared by any number of goroutines
// without locking. Refitting produces a new Space.
//
// # Persistence
//
// Space has only unexported fields. State is its exported, gob-friendly mirror;
// use Space.State and FromState to move between the two.
package features
