// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/wine"
)

func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	var (
		samples   int
		topN      int
		holdout   float64
		seed      int64
		perValue  int
		byField   string
		values    []string
		refit     bool
		diversity float64
	)

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Audit recommendations with the weighted Jaccard score",
		Long: `Evaluate samples held-out catalog records, recommends for each and scores
the weighted Jaccard agreement between query and recommendations.

With --by the audit is run once per label of that field.`,
		Example: `  sommelier evaluate --samples 200
  sommelier evaluate --by technical_sheet_wine_type --values Tinto,Branco`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			evalOpts := opts.cfg.Evaluation.Options()
			flags := cmd.Flags()
			if flags.Changed("samples") {
				evalOpts.Samples = samples
			}
			if flags.Changed("top-n") {
				evalOpts.TopN = topN
			}
			if flags.Changed("holdout") {
				evalOpts.HoldoutFraction = holdout
			}
			if flags.Changed("seed") {
				evalOpts.Seed = seed
			}
			if flags.Changed("per-category") {
				evalOpts.PerCategorySamples = perValue
			}
			if err := evalOpts.Validate(); err != nil {
				return &configError{err: err}
			}

			var field wine.Field
			if byField != "" {
				var err error
				if field, err = wine.ParseField(byField); err != nil {
					return &configError{err: fmt.Errorf("--by: %w", err)}
				}
			}

			c, err := opts.components()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			if err := c.ensureFitted(cmd.Context(), refit); err != nil {
				return err
			}
			if flags.Changed("diversity") {
				params := c.engine.DefaultParams()
				params.Diversity = diversity
				evalOpts.Params = &params
			}

			if field == "" {
				result, err := c.evaluator.Evaluate(cmd.Context(), evalOpts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			result, err := c.evaluator.EvaluateByCategory(cmd.Context(), field, values, evalOpts)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"field":      field,
				"categories": result,
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&samples, "samples", 0, "Maximum held-out queries (default: evaluation.samples)")
	f.IntVar(&topN, "top-n", 0, "Recommendations per query (default: evaluation.top_n)")
	f.Float64Var(&holdout, "holdout", 0, "Held-out share of the catalog (default: evaluation.holdout_fraction)")
	f.Int64Var(&seed, "seed", 0, "Sampling seed (default: evaluation.seed)")
	f.IntVar(&perValue, "per-category", 0, "Samples per label with --by (default: evaluation.per_category_samples)")
	f.StringVar(&byField, "by", "", "Stratify by this label field")
	f.StringSliceVar(&values, "values", nil, "Labels to evaluate with --by (default: all)")
	f.Float64Var(&diversity, "diversity", 0, "Diversity factor for every query")
	f.BoolVar(&refit, "refit", false, "Fit from the catalog instead of loading the newest artifact")

	return cmd
}
