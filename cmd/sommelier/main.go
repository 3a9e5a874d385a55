// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package main is the sommelier command line.
//
// Sommelier recommends wines from a catalog by content similarity: TF-IDF over
// the descriptive text, exact label matches and the 1-5 tasting scales, fused
// with configurable weights and diversified by a greedy reranker.
//
// # Commands
//
//	sommelier fit        fit the catalog and save a versioned artifact
//	sommelier recommend  recommend wines for a query or a catalog record
//	sommelier evaluate   weighted Jaccard audit, overall or per category
//	sommelier optimize   grid search over fusion weights and diversity
//	sommelier serve      run the HTTP API with periodic catalog refresh
//	sommelier import     copy a catalog file into the badger catalog store
//	sommelier artifacts  list or prune stored artifacts
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (a .env file is loaded first when present)
//   - Config file (config.yaml, or --config / CONFIG_PATH)
//   - Built-in defaults
//
// # Example Usage
//
//	export CATALOG_PATH=data/wines.json
//	sommelier fit
//	sommelier recommend --field technical_sheet_grapes=Malbec --field tannin_tasting=4 --top-n 5
//	sommelier serve
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess     = 0
	ExitError       = 1 // runtime failure
	ExitTargetMiss  = 2 // optimize finished but missed its targets
	ExitConfigError = 3 // invalid configuration or flags
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var cfgErr *configError
	var missErr *targetMissError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &missErr):
		return ExitTargetMiss
	case errors.As(err, &cfgErr):
		return ExitConfigError
	default:
		return ExitError
	}
}

// configError marks configuration and flag failures.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return fmt.Sprintf("configuration: %v", e.err)
}

func (e *configError) Unwrap() error {
	return e.err
}

// targetMissError indicates that optimize ran successfully but no grid point
// met the requested targets.
type targetMissError struct {
	Message string
}

func (e *targetMissError) Error() string {
	return e.Message
}
