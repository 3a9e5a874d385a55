// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package evaluation

import (
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/sommelier/internal/wine"
)

// OrdinalSpan is the assumed width of an ordinal scale when turning a
// difference into agreement.
const OrdinalSpan = 10.0

// JaccardWeights maps each audit field to its weight. Fields without an entry
// are not audited.
type JaccardWeights map[wine.Field]float64

// DefaultJaccardWeights returns the audit weights used by the evaluator.
func DefaultJaccardWeights() JaccardWeights {
	return JaccardWeights{
		wine.FieldWineType:       1.5,
		wine.FieldRegion:         1.2,
		wine.FieldCountry:        1.2,
		wine.FieldHarmonizesWith: 1.2,
		wine.FieldGrapes:         1.0,
		wine.FieldFruit:          1.0,
		wine.FieldSugar:          1.0,
		wine.FieldAcidity:        1.0,
		wine.FieldTannin:         1.0,
	}
}

// Validate rejects negative or non-finite weights.
func (w JaccardWeights) Validate() error {
	for field, v := range w {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("jaccard weight for %s must be a non-negative number, got %f", field, v)
		}
	}
	return nil
}

// WeightedJaccard returns the weighted Jaccard similarity of two records in
// [0, 1] for non-negative weights.
//
//nolint:gocritic // hugeParam: records are read only
func WeightedJaccard(a, b wine.Features, weights JaccardWeights) float64 {
	var intersection, union float64

	// Fixed field order keeps floating point sums reproducible.
	for _, field := range wine.AllFields {
		weight, ok := weights[field]
		if !ok {
			continue
		}

		if field.IsNumeric() {
			v1, ok1 := a.Number(field)
			v2, ok2 := b.Number(field)
			if !ok1 || !ok2 {
				continue
			}
			agreement := 1 - math.Abs(v1-v2)/OrdinalSpan
			if agreement < 0 {
				agreement = 0
			}
			intersection += weight * agreement
			union += weight
			continue
		}

		s1, ok1 := a.Text(field)
		s2, ok2 := b.Text(field)
		if !ok1 || !ok2 {
			continue
		}
		if field == wine.FieldHarmonizesWith {
			intersection += weight * tokenOverlap(s1, s2)
		} else if strings.EqualFold(strings.TrimSpace(s1), strings.TrimSpace(s2)) {
			intersection += weight
		}
		union += weight
	}

	if union == 0 {
		return 0
	}
	return intersection / union
}

// tokenOverlap returns |common| / |union| of the comma separated tokens.
func tokenOverlap(a, b string) float64 {
	left := pairingTokens(a)
	right := pairingTokens(b)

	all := make(map[string]struct{}, len(left)+len(right))
	common := 0
	for tok := range left {
		all[tok] = struct{}{}
		if _, ok := right[tok]; ok {
			common++
		}
	}
	for tok := range right {
		all[tok] = struct{}{}
	}
	if len(all) == 0 {
		return 0
	}
	return float64(common) / float64(len(all))
}

func pairingTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, part := range strings.Split(strings.ToLower(s), ",") {
		if tok := strings.TrimSpace(part); tok != "" {
			out[tok] = struct{}{}
		}
	}
	return out
}
