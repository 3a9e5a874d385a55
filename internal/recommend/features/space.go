// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/sommelier/internal/wine"
)

// Space is the fitted, immutable feature representation of one catalog
// snapshot. Every per-record structure is row-aligned with IDs.
type Space struct {
	cfg      Config
	ids      []string
	index    map[string]int
	fittedAt time.Time

	text     *textModel
	textRows []SparseVector

	categories []*categoryTable
	catCodes   [][]int

	scales  []OrdinalScale
	ordinal [][]float64
}

// Fit builds a Space over catalog.
//
// Fit returns a *DataError when the catalog is empty, contains duplicate
// IDs, or none of the configured fields is present on any record. Missing
// values on individual records never cause an error.
//
//nolint:gocritic // hugeParam: cfg is cloned into the space
func Fit(catalog []wine.Wine, cfg Config) (*Space, error) {
	if err := cfg.Validate(); err != nil {
		return nil, newDataError(err.Error(), ErrInvalidConfig)
	}
	if len(catalog) == 0 {
		return nil, newDataError("fit feature space", ErrEmptyCatalog)
	}

	s := &Space{
		cfg:      cfg.Clone(),
		ids:      make([]string, len(catalog)),
		index:    make(map[string]int, len(catalog)),
		fittedAt: time.Now(),
	}
	for i := range catalog {
		id := catalog[i].ID
		if _, dup := s.index[id]; dup {
			return nil, newDataError(fmt.Sprintf("record %q appears more than once", id), ErrDuplicateID)
		}
		s.ids[i] = id
		s.index[id] = i
	}

	if !anyFieldPresent(catalog, &s.cfg) {
		return nil, newDataError("fit feature space", ErrNoUsableField)
	}

	docs := make([]string, len(catalog))
	for i := range catalog {
		docs[i], _ = joinText(catalog[i].Features, s.cfg.TextFields)
	}
	s.text, s.textRows = fitTextModel(docs, s.cfg.Text)

	s.categories = make([]*categoryTable, len(s.cfg.CategoricalFields))
	for k, field := range s.cfg.CategoricalFields {
		s.categories[k] = newCategoryTable(field)
	}
	s.catCodes = make([][]int, len(catalog))
	for i := range catalog {
		row := make([]int, len(s.categories))
		for k, table := range s.categories {
			label, ok := catalog[i].Text(table.field)
			row[k] = table.add(label, ok)
		}
		s.catCodes[i] = row
	}

	s.scales = make([]OrdinalScale, len(s.cfg.OrdinalFields))
	for k, field := range s.cfg.OrdinalFields {
		s.scales[k] = fitOrdinalScale(field, catalog)
	}
	s.ordinal = make([][]float64, len(catalog))
	for i := range catalog {
		row := make([]float64, len(s.scales))
		for k, scale := range s.scales {
			v, ok := catalog[i].Number(scale.Field)
			if !ok {
				v = scale.Mean
			}
			row[k] = scale.Normalize(v)
		}
		s.ordinal[i] = row
	}

	return s, nil
}

func anyFieldPresent(catalog []wine.Wine, cfg *Config) bool {
	fields := make([]wine.Field, 0, len(cfg.TextFields)+len(cfg.CategoricalFields)+len(cfg.OrdinalFields))
	fields = append(fields, cfg.TextFields...)
	fields = append(fields, cfg.CategoricalFields...)
	fields = append(fields, cfg.OrdinalFields...)
	for i := range catalog {
		for _, f := range fields {
			if catalog[i].Has(f) {
				return true
			}
		}
	}
	return false
}

// joinText concatenates the present text fields with single spaces and
// reports whether any field was present.
//
//nolint:gocritic // hugeParam: Features is read only
func joinText(f wine.Features, fields []wine.Field) (string, bool) {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if v, ok := f.Text(field); ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " "), len(parts) > 0
}

// Len returns the number of catalog records.
func (s *Space) Len() int {
	return len(s.ids)
}

// ID returns the record ID of row i.
func (s *Space) ID(i int) string {
	return s.ids[i]
}

// IDs returns a copy of the record IDs in row order.
func (s *Space) IDs() []string {
	return append([]string(nil), s.ids...)
}

// Row returns the row of a record ID.
func (s *Space) Row(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Config returns a copy of the configuration the space was fitted with.
func (s *Space) Config() Config {
	return s.cfg.Clone()
}

// Weights returns the default fusion weights.
func (s *Space) Weights() Weights {
	return s.cfg.Weights
}

// FittedAt returns when the space was built.
func (s *Space) FittedAt() time.Time {
	return s.fittedAt
}

// VocabularySize returns the number of terms in the text model.
func (s *Space) VocabularySize() int {
	return len(s.text.terms)
}

// Scales returns a copy of the ordinal scales.
func (s *Space) Scales() []OrdinalScale {
	return append([]OrdinalScale(nil), s.scales...)
}

// CategoryLabels returns the labels of a categorical field in code order.
func (s *Space) CategoryLabels(field wine.Field) []string {
	for _, t := range s.categories {
		if t.field == field {
			return append([]string(nil), t.labels...)
		}
	}
	return nil
}

// TransformText vectorizes a raw document with the fitted text model.
func (s *Space) TransformText(doc string) SparseVector {
	return s.text.transform(doc)
}

// TextCosine returns the cosine similarity between q and row i.
func (s *Space) TextCosine(q SparseVector, i int) float64 {
	return Cosine(q, s.textRows[i])
}

// TextSimilarity returns the cosine similarity between rows i and j.
func (s *Space) TextSimilarity(i, j int) float64 {
	return Cosine(s.textRows[i], s.textRows[j])
}

// OrdinalDistance returns the Euclidean distance between a normalized
// ordinal vector and row i.
func (s *Space) OrdinalDistance(q []float64, i int) float64 {
	row := s.ordinal[i]
	var sum float64
	for k := range row {
		d := row[k] - q[k]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CategoryCode returns the code of categorical field k on row i.
func (s *Space) CategoryCode(i, k int) int {
	return s.catCodes[i][k]
}

// EncodedQuery is a query projected into the fitted space. Each Has flag
// reports whether the query supplied at least one field of that modality.
type EncodedQuery struct {
	Text    SparseVector
	HasText bool

	// Ordinal has one normalized value per configured ordinal field; fields
	// the query omits carry the catalog mean.
	Ordinal    []float64
	HasOrdinal bool

	// Categorical has one entry per configured categorical field: the label
	// code, UnseenCode, or -2 when the query omits the field.
	Categorical    []int
	HasCategorical bool
}

// AbsentCode marks a categorical field the query does not supply.
const AbsentCode = -2

// Encode projects a query into the space. Encoding never fails: missing
// fields are imputed and unseen labels become UnseenCode.
//
//nolint:gocritic // hugeParam: Query is read only
func (s *Space) Encode(q wine.Query) EncodedQuery {
	var eq EncodedQuery

	if doc, ok := joinText(q.Features, s.cfg.TextFields); ok {
		eq.HasText = true
		eq.Text = s.text.transform(doc)
	}

	eq.Ordinal = make([]float64, len(s.scales))
	for k, scale := range s.scales {
		v, ok := q.Number(scale.Field)
		if ok {
			eq.HasOrdinal = true
		} else {
			v = scale.Mean
		}
		eq.Ordinal[k] = scale.Normalize(v)
	}

	eq.Categorical = make([]int, len(s.categories))
	for k, table := range s.categories {
		label, ok := q.Text(table.field)
		if !ok {
			eq.Categorical[k] = AbsentCode
			continue
		}
		eq.HasCategorical = true
		eq.Categorical[k] = table.code(label)
	}

	return eq
}
