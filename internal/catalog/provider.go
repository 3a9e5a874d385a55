// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package catalog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/wine"
)

// ErrUnsupportedFormat is returned for catalog files that are neither a JSON
// array nor JSON Lines.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

// Provider returns the current catalog.
type Provider interface {
	// Snapshot returns every record in a stable order.
	Snapshot(ctx context.Context) ([]wine.Wine, error)

	// Name identifies the provider in logs.
	Name() string
}

// DecodeStats counts what a decode pass kept and dropped.
type DecodeStats struct {
	Records    int `json:"records"`
	MissingIDs int `json:"missing_ids"`
}

// record is the wire shape of one catalog row. The id may be a string or a
// number.
type record struct {
	ID wine.Optional[string] `json:"id"`
	wine.Features
}

func (r *record) toWine() (wine.Wine, bool) {
	id, ok := r.ID.Get()
	if !ok {
		return wine.Wine{}, false
	}
	return wine.Wine{ID: id, Features: r.Features}, true
}

// DecodeJSON decodes a JSON array of records.
func DecodeJSON(r io.Reader) ([]wine.Wine, DecodeStats, error) {
	var rows []record
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, DecodeStats{}, fmt.Errorf("decode catalog array: %w", err)
	}

	var stats DecodeStats
	out := make([]wine.Wine, 0, len(rows))
	for i := range rows {
		w, ok := rows[i].toWine()
		if !ok {
			stats.MissingIDs++
			continue
		}
		out = append(out, w)
	}
	stats.Records = len(out)
	return out, stats, nil
}

// DecodeJSONLines decodes one record per line. Blank lines are ignored.
func DecodeJSONLines(r io.Reader) ([]wine.Wine, DecodeStats, error) {
	var stats DecodeStats
	var out []wine.Wine

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		var row record
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, stats, fmt.Errorf("decode catalog line %d: %w", line, err)
		}
		w, ok := row.toWine()
		if !ok {
			stats.MissingIDs++
			continue
		}
		out = append(out, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read catalog lines: %w", err)
	}
	stats.Records = len(out)
	return out, stats, nil
}

// FileProvider reads the catalog from a JSON export on every Snapshot call,
// so a refresh picks up a replaced file.
type FileProvider struct {
	path   string
	logger zerolog.Logger
}

// NewFileProvider creates a provider for path. Files ending in .jsonl or
// .ndjson are read as JSON Lines; everything else as a JSON array.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFileProvider(path string, logger zerolog.Logger) *FileProvider {
	return &FileProvider{
		path:   path,
		logger: logger.With().Str("component", "catalog").Str("source", "file").Logger(),
	}
}

// Name implements Provider.
func (p *FileProvider) Name() string {
	return "file:" + p.path
}

// Path returns the catalog file path.
func (p *FileProvider) Path() string {
	return p.path
}

// Snapshot implements Provider.
func (p *FileProvider) Snapshot(ctx context.Context) ([]wine.Wine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	var (
		wines []wine.Wine
		stats DecodeStats
	)
	switch strings.ToLower(filepath.Ext(p.path)) {
	case ".jsonl", ".ndjson":
		wines, stats, err = DecodeJSONLines(f)
	case ".json", "":
		wines, stats, err = DecodeJSON(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(p.path))
	}
	if err != nil {
		return nil, err
	}

	if stats.MissingIDs > 0 {
		p.logger.Warn().Int("skipped", stats.MissingIDs).Msg("catalog records without id skipped")
	}
	p.logger.Debug().Str("path", p.path).Int("records", stats.Records).Msg("catalog file read")
	return wines, nil
}
