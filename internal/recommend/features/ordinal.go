// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"math"

	"github.com/tomtom215/sommelier/internal/wine"
)

// OrdinalScale holds the imputation value and min-max bounds of one ordinal
// field.
type OrdinalScale struct {
	Field wine.Field
	Mean  float64
	Min   float64
	Max   float64
}

// Normalize maps v into the fitted [0, 1] range. A degenerate scale
// (Min == Max) maps everything to 0. Values outside the fitted bounds are
// not clipped.
func (s OrdinalScale) Normalize(v float64) float64 {
	span := s.Max - s.Min
	if span == 0 {
		return 0
	}
	return (v - s.Min) / span
}

// fitOrdinalScale computes the mean of the present values and the bounds of
// the mean-filled column. A fully missing column gets mean 0, which leaves
// every row at the same value.
func fitOrdinalScale(field wine.Field, catalog []wine.Wine) OrdinalScale {
	var sum float64
	var n int
	for i := range catalog {
		if v, ok := catalog[i].Number(field); ok {
			sum += v
			n++
		}
	}

	scale := OrdinalScale{Field: field}
	if n > 0 {
		scale.Mean = sum / float64(n)
	}

	scale.Min = math.Inf(1)
	scale.Max = math.Inf(-1)
	for i := range catalog {
		v, ok := catalog[i].Number(field)
		if !ok {
			v = scale.Mean
		}
		scale.Min = math.Min(scale.Min, v)
		scale.Max = math.Max(scale.Max, v)
	}
	if len(catalog) == 0 {
		scale.Min, scale.Max = 0, 0
	}
	return scale
}
