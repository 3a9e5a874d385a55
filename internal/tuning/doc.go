// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package tuning searches fusion weights and the diversity factor for the
combination whose offline metrics land closest to a target.

The grid is the cross product of text weights and diversity factors. The
ordinal weight of each point is Budget minus its text weight so the two
always sum to the budget; the categorical weight and the diversification
formula come from the engine defaults and stay fixed.

Every grid point is scored as

	|MeanJaccard − targetJaccard| + |Coverage − targetCoverage|

and the lowest score wins. The search is exhaustive. Ties keep grid order:
text weights in the outer loop and diversity factors in the inner one.

Trials run concurrently on an errgroup bounded by Parallelism. Each trial
owns a recommend.Params value and results are written by grid index, so the
outcome does not depend on scheduling. All trials evaluate the same pinned
engine snapshot and never modify it.
*/
package tuning
