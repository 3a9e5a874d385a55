// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package evaluation audits recommendation quality offline.

The audit measure is a weighted Jaccard similarity computed directly on the
catalog records. It never touches the TF-IDF vectors or ordinal distances the
engine ranks with, so a run does not grade the engine against its own math.

# Weighted Jaccard

For two records, every audit field present on both sides adds its weight to
the union. Label fields add the weight to the intersection when the values
match case-insensitively. The pairing field (harmonizes_with) is split on
commas and adds weight times the token overlap ratio. Ordinal fields add
weight × (1 − |v1 − v2| / 10). The result is intersection / union, or 0 when
no audit field is shared.

Default weights:

	technical_sheet_wine_type   1.5
	technical_sheet_region      1.2
	technical_sheet_country     1.2
	harmonizes_with             1.2
	technical_sheet_grapes      1.0
	fruit/sugar/acidity/tannin  1.0

# Runs

Evaluate shuffles the catalog with a seeded RNG, holds out
ceil(HoldoutFraction × N) records and samples up to Samples of them. Each
sampled record becomes a query built from its own fields. The run reports:

  - MeanJaccard / StdJaccard: mean and population deviation of the per-sample
    mean Jaccard between the source and its recommendations
  - Coverage: distinct recommended IDs divided by catalog size
  - InternalDiversity: mean of 1 − mean pairwise Jaccard inside each
    recommendation set of two or more wines

Samples with an empty query or an empty recommendation list are skipped and
logged. Recommend errors are counted in Errors and do not abort the run;
context cancellation does.

EvaluateByCategory repeats the sampling inside each stratum of a label field,
skipping strata with fewer than five members.

# Thread Safety

An Evaluator holds no per-run state and may be shared. Each run pins one
engine snapshot so a concurrent refit cannot mix catalog generations.
*/
package evaluation
