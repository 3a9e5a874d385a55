// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOptimizeCommand(opts *rootOptions) *cobra.Command {
	var (
		targetJaccard  float64
		targetCoverage float64
		strict         bool
		refit          bool
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Grid search fusion weights and diversity",
		Long: `Optimize evaluates every point of the tuning grid and prints the parameters
whose mean Jaccard and coverage are closest to the targets.

With --strict the command exits with status 2 when the best point misses
either target.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("target-jaccard") {
				targetJaccard = opts.cfg.Tuning.TargetJaccard
			}
			if !cmd.Flags().Changed("target-coverage") {
				targetCoverage = opts.cfg.Tuning.TargetCoverage
			}
			if targetJaccard < 0 || targetJaccard > 1 || targetCoverage < 0 || targetCoverage > 1 {
				return &configError{err: fmt.Errorf("targets must be within [0, 1]")}
			}

			c, err := opts.components()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			if err := c.ensureFitted(cmd.Context(), refit); err != nil {
				return err
			}

			result, err := c.tuner.Optimize(cmd.Context(), targetJaccard, targetCoverage)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			if strict && (result.Metrics.MeanJaccard < targetJaccard || result.Metrics.Coverage < targetCoverage) {
				return &targetMissError{Message: fmt.Sprintf(
					"best point reached jaccard %.3f and coverage %.3f, targets %.3f and %.3f",
					result.Metrics.MeanJaccard, result.Metrics.Coverage, targetJaccard, targetCoverage)}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Float64Var(&targetJaccard, "target-jaccard", 0, "Target mean Jaccard (default: tuning.target_jaccard)")
	f.Float64Var(&targetCoverage, "target-coverage", 0, "Target coverage (default: tuning.target_coverage)")
	f.BoolVar(&strict, "strict", false, "Fail when the best point misses a target")
	f.BoolVar(&refit, "refit", false, "Fit from the catalog instead of loading the newest artifact")

	return cmd
}
