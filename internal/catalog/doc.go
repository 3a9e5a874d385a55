// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package catalog supplies wine catalog snapshots to the recommendation engine.

A Provider returns the full catalog in a stable row order. Two providers are
available:

  - FileProvider reads a JSON array or JSON Lines export of the wine table
  - BadgerStore keeps the catalog in BadgerDB so a server can refit after a
    restart without the original export

Decoding is lenient in the same way as the record type: numeric fields accept
numeric strings, and "None" or blank values decode as absent. Records whose
id is missing are skipped and counted. Numeric ids are kept as their decimal
text.

# Import

Import copies a provider snapshot into a BadgerStore, replacing its previous
contents in one pass:

	src := catalog.NewFileProvider("wines.json", logger)
	store, _ := catalog.OpenBadgerStore(catalog.BadgerConfig{Path: "data/catalog"}, logger)
	defer store.Close()
	stats, err := catalog.Import(ctx, src, store, logger)

# Ordering

FileProvider preserves file order. BadgerStore returns records in ascending
id order because that is the key order of the store.
*/
package catalog
