// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/catalog"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a catalog file into the badger catalog store",
		Long: `Import replaces the contents of the badger catalog store (catalog.badger_path)
with the records of a JSON or JSON Lines file. Records repeating an id keep
the first occurrence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				source = opts.cfg.Catalog.Path
			}

			dst, err := catalog.OpenBadgerStore(catalog.BadgerConfig{
				Path:       opts.cfg.Catalog.BadgerPath,
				SyncWrites: opts.cfg.Catalog.SyncWrites,
			}, opts.logger)
			if err != nil {
				return err
			}
			defer dst.Close() //nolint:errcheck

			stats, err := catalog.Import(cmd.Context(), catalog.NewFileProvider(source, opts.logger), dst, opts.logger)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}

	cmd.Flags().StringVar(&source, "from", "", "Catalog file (default: catalog.path)")
	return cmd
}
