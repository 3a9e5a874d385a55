// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/wine"
)

// ImportStats summarizes one Import call.
type ImportStats struct {
	Source     string        `json:"source"`
	Read       int           `json:"read"`
	Written    int           `json:"written"`
	Duplicates int           `json:"duplicates"`
	Duration   time.Duration `json:"duration_ns"`
}

// Import replaces the contents of dst with a snapshot of src. Records that
// repeat an id keep the first occurrence.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Import(ctx context.Context, src Provider, dst *BadgerStore, logger zerolog.Logger) (ImportStats, error) {
	start := time.Now()
	stats := ImportStats{Source: src.Name()}

	wines, err := src.Snapshot(ctx)
	if err != nil {
		return stats, fmt.Errorf("read source catalog: %w", err)
	}
	stats.Read = len(wines)

	seen := make(map[string]struct{}, len(wines))
	unique := make([]wine.Wine, 0, len(wines))
	for i := range wines {
		if _, dup := seen[wines[i].ID]; dup {
			stats.Duplicates++
			continue
		}
		seen[wines[i].ID] = struct{}{}
		unique = append(unique, wines[i])
	}

	if err := dst.Replace(ctx, unique); err != nil {
		return stats, fmt.Errorf("write catalog store: %w", err)
	}
	stats.Written = len(unique)
	stats.Duration = time.Since(start)

	logger.Info().
		Str("component", "catalog").
		Str("source", stats.Source).
		Int("read", stats.Read).
		Int("written", stats.Written).
		Int("duplicates", stats.Duplicates).
		Dur("duration", stats.Duration).
		Msg("catalog import complete")

	return stats, nil
}
