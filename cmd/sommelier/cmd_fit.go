// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/recommend/storage"
	"github.com/tomtom215/sommelier/internal/supervisor/services"
)

// fitOutput is printed by the fit command.
type fitOutput struct {
	Status   recommend.Status  `json:"status"`
	Artifact *storage.Metadata `json:"artifact,omitempty"`
}

func newFitCommand(opts *rootOptions) *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the catalog and save a versioned artifact",
		Long: `Fit reads the configured catalog, builds the feature space and saves it
as the next artifact version. Old versions beyond storage.keep are pruned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.components()
			if err != nil {
				return err
			}
			defer c.Close() //nolint:errcheck

			var (
				store      services.ArtifactStore
				refreshCfg services.RefreshServiceConfig
			)
			if !noSave {
				store = c.store
				refreshCfg.ArtifactName = opts.cfg.Storage.Name
				refreshCfg.Keep = opts.cfg.Storage.Keep
			}

			refresh := services.NewRefreshService(c.engine, c.provider, store, refreshCfg, c.logger)
			if err := refresh.Refresh(cmd.Context()); err != nil {
				return err
			}

			out := fitOutput{Status: c.engine.Status()}
			if !noSave {
				// Newest first.
				artifacts, err := c.store.ListArtifacts(cmd.Context(), opts.cfg.Storage.Name)
				if err != nil {
					return err
				}
				if len(artifacts) > 0 {
					out.Artifact = &artifacts[0]
				}
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "Fit without writing an artifact")
	return cmd
}
