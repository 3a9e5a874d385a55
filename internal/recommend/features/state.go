// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"fmt"
	"time"

	"github.com/tomtom215/sommelier/internal/wine"
)

// State is the serializable form of a Space.
type State struct {
	Config   Config
	IDs      []string
	FittedAt time.Time

	// Terms and IDF describe the text model; TextRows are the fitted rows.
	Terms    []string
	IDF      []float64
	TextRows []SparseVector

	Categories    []CategoryState
	CategoryCodes [][]int

	Scales  []OrdinalScale
	Ordinal [][]float64
}

// CategoryState is the label table of one categorical field.
type CategoryState struct {
	Field  wine.Field
	Labels []string
}

// State returns a deep copy of the space in serializable form.
func (s *Space) State() State {
	st := State{
		Config:        s.cfg.Clone(),
		IDs:           append([]string(nil), s.ids...),
		FittedAt:      s.fittedAt,
		Terms:         append([]string(nil), s.text.terms...),
		IDF:           append([]float64(nil), s.text.idf...),
		TextRows:      make([]SparseVector, len(s.textRows)),
		Categories:    make([]CategoryState, len(s.categories)),
		CategoryCodes: make([][]int, len(s.catCodes)),
		Scales:        append([]OrdinalScale(nil), s.scales...),
		Ordinal:       make([][]float64, len(s.ordinal)),
	}
	for i, row := range s.textRows {
		st.TextRows[i] = row.clone()
	}
	for k, t := range s.categories {
		st.Categories[k] = CategoryState{Field: t.field, Labels: append([]string(nil), t.labels...)}
	}
	for i, row := range s.catCodes {
		st.CategoryCodes[i] = append([]int(nil), row...)
	}
	for i, row := range s.ordinal {
		st.Ordinal[i] = append([]float64(nil), row...)
	}
	return st
}

// FromState rebuilds a Space, checking that every structure is row-aligned
// and internally consistent.
//
//nolint:gocritic // hugeParam: st is copied into the new space
func FromState(st State) (*Space, error) {
	if err := st.Config.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	n := len(st.IDs)
	if n == 0 {
		return nil, fmt.Errorf("state has no records")
	}
	if len(st.TextRows) != n || len(st.CategoryCodes) != n || len(st.Ordinal) != n {
		return nil, fmt.Errorf("state rows are not aligned: ids=%d text=%d categorical=%d ordinal=%d",
			n, len(st.TextRows), len(st.CategoryCodes), len(st.Ordinal))
	}
	if len(st.Terms) != len(st.IDF) {
		return nil, fmt.Errorf("vocabulary has %d terms but %d idf weights", len(st.Terms), len(st.IDF))
	}
	if len(st.Categories) != len(st.Config.CategoricalFields) {
		return nil, fmt.Errorf("state has %d category tables for %d categorical fields",
			len(st.Categories), len(st.Config.CategoricalFields))
	}
	if len(st.Scales) != len(st.Config.OrdinalFields) {
		return nil, fmt.Errorf("state has %d ordinal scales for %d ordinal fields",
			len(st.Scales), len(st.Config.OrdinalFields))
	}

	s := &Space{
		cfg:        st.Config.Clone(),
		ids:        append([]string(nil), st.IDs...),
		index:      make(map[string]int, n),
		fittedAt:   st.FittedAt,
		text:       restoreTextModel(st.Terms, st.IDF, st.Config.Text),
		textRows:   make([]SparseVector, n),
		categories: make([]*categoryTable, len(st.Categories)),
		catCodes:   make([][]int, n),
		scales:     append([]OrdinalScale(nil), st.Scales...),
		ordinal:    make([][]float64, n),
	}

	for i, id := range s.ids {
		if _, dup := s.index[id]; dup {
			return nil, fmt.Errorf("record %q appears more than once", id)
		}
		s.index[id] = i
	}

	for i, row := range st.TextRows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("text row %d has %d indices and %d values", i, len(row.Indices), len(row.Values))
		}
		for j, idx := range row.Indices {
			if int(idx) < 0 || int(idx) >= len(st.Terms) || (j > 0 && idx <= row.Indices[j-1]) {
				return nil, fmt.Errorf("text row %d has invalid term index %d", i, idx)
			}
		}
		s.textRows[i] = row.clone()
	}

	for k, cs := range st.Categories {
		if cs.Field != st.Config.CategoricalFields[k] {
			return nil, fmt.Errorf("category table %d is for %s, want %s", k, cs.Field, st.Config.CategoricalFields[k])
		}
		s.categories[k] = restoreCategoryTable(cs.Field, cs.Labels)
	}
	for i, row := range st.CategoryCodes {
		if len(row) != len(s.categories) {
			return nil, fmt.Errorf("categorical row %d has %d codes, want %d", i, len(row), len(s.categories))
		}
		for k, code := range row {
			if code < 0 || code >= len(s.categories[k].labels) {
				return nil, fmt.Errorf("categorical row %d has invalid code %d for %s", i, code, s.categories[k].field)
			}
		}
		s.catCodes[i] = append([]int(nil), row...)
	}

	for i, row := range st.Ordinal {
		if len(row) != len(s.scales) {
			return nil, fmt.Errorf("ordinal row %d has %d values, want %d", i, len(row), len(s.scales))
		}
		s.ordinal[i] = append([]float64(nil), row...)
	}

	return s, nil
}
