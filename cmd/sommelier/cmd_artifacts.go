// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/recommend/storage"
)

func newArtifactsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "List or prune stored artifacts",
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List stored artifact versions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStore(opts.cfg.Storage.Dir)
			if err != nil {
				return err
			}
			name := opts.cfg.Storage.Name
			if all {
				name = ""
			}
			artifacts, err := store.ListArtifacts(cmd.Context(), name)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), artifacts)
		},
	}
	list.Flags().BoolVar(&all, "all", false, "List every artifact name")

	var keep int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := storage.NewStore(opts.cfg.Storage.Dir)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("keep") {
				keep = opts.cfg.Storage.Keep
			}
			removed, err := store.Prune(cmd.Context(), opts.cfg.Storage.Name, keep)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"removed": removed, "kept": keep})
		},
	}
	prune.Flags().IntVar(&keep, "keep", 0, "Versions to keep (default: storage.keep)")

	cmd.AddCommand(list, prune)
	return cmd
}
