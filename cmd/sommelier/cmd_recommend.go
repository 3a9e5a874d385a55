// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/logging"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/wine"
)

type recommendFlags struct {
	wineID    string
	queryJSON string
	fields    []string
	topN      int
	diversity float64
	seed      int64
	detailed  bool
	refit     bool
}

func newRecommendCommand(opts *rootOptions) *cobra.Command {
	flags := &recommendFlags{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend wines for a query or a catalog record",
		Long: `Recommend builds a query from --wine-id, --query or repeated --field
name=value flags and prints the recommended wines.

The newest stored artifact is used when present; otherwise the catalog is
fitted first.`,
		Example: `  sommelier recommend --wine-id 1042 --top-n 3
  sommelier recommend --field technical_sheet_wine_type=Tinto --field tannin_tasting=4
  sommelier recommend --query '{"harmonizes_with": "Queijos"}' --diversity 0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := flags.query()
			if err != nil {
				return &configError{err: err}
			}

			c, err := opts.components()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			if err := c.ensureFitted(cmd.Context(), flags.refit); err != nil {
				return err
			}
			view, err := c.engine.View()
			if err != nil {
				return err
			}
			if flags.wineID != "" {
				source, ok := view.Wine(flags.wineID)
				if !ok {
					return fmt.Errorf("wine %q not found", flags.wineID)
				}
				query = source.Features
			}

			req := recommend.Request{
				Query:     wine.QueryFrom(query),
				TopN:      flags.topN,
				RequestID: logging.RequestIDFromContext(cmd.Context()),
			}
			if cmd.Flags().Changed("diversity") {
				req.Diversity = &flags.diversity
			}
			if cmd.Flags().Changed("seed") {
				req.Seed = &flags.seed
			}

			resp, err := view.RecommendDetailed(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := models.RecommendResponse{IDs: resp.IDs(), Metadata: resp.Metadata}
			if flags.detailed {
				out.Items = resp.Items
				for _, id := range out.IDs {
					if rec, ok := view.Wine(id); ok {
						out.Wines = append(out.Wines, rec)
					}
				}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.wineID, "wine-id", "", "Use the features of this catalog record as the query")
	f.StringVar(&flags.queryJSON, "query", "", "Query as a JSON object of wine fields")
	f.StringArrayVar(&flags.fields, "field", nil, "Query field as name=value (repeatable)")
	f.IntVar(&flags.topN, "top-n", 0, "Number of wines (default: recommend.default_top_n)")
	f.Float64Var(&flags.diversity, "diversity", 0, "Diversity factor in [0, 1] (default: recommend.diversity)")
	f.Int64Var(&flags.seed, "seed", 0, "Tie-break seed")
	f.BoolVar(&flags.detailed, "detailed", false, "Include scores and full records")
	f.BoolVar(&flags.refit, "refit", false, "Fit from the catalog instead of loading the newest artifact")
	cmd.MarkFlagsMutuallyExclusive("wine-id", "query")
	cmd.MarkFlagsMutuallyExclusive("wine-id", "field")

	return cmd
}

// query assembles the inline query. With --wine-id the query is resolved
// after fitting.
func (f *recommendFlags) query() (wine.Features, error) {
	var q wine.Features
	if f.queryJSON != "" {
		if err := json.Unmarshal([]byte(f.queryJSON), &q); err != nil {
			return q, fmt.Errorf("--query: %w", err)
		}
	}
	for _, kv := range f.fields {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return q, fmt.Errorf("--field %q: want name=value", kv)
		}
		field, err := wine.ParseField(name)
		if err != nil {
			return q, fmt.Errorf("--field: %w", err)
		}
		if err := q.Set(field, value); err != nil {
			return q, fmt.Errorf("--field %s: %w", field, err)
		}
	}
	if f.wineID == "" && q.IsEmpty() {
		return q, fmt.Errorf("one of --wine-id, --query or --field is required")
	}
	return q, nil
}
