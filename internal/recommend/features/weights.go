// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"fmt"
	"math"
)

// Weights controls how much each modality contributes to the fused score.
// Weights are used as given; they are not normalized to sum to one.
type Weights struct {
	Text        float64 `json:"text" koanf:"text"`
	Ordinal     float64 `json:"ordinal" koanf:"ordinal"`
	Categorical float64 `json:"categorical" koanf:"categorical"`
}

// DefaultWeights returns text 0.4, ordinal 0.4, categorical 0.2.
func DefaultWeights() Weights {
	return Weights{
		Text:        0.4,
		Ordinal:     0.4,
		Categorical: 0.2,
	}
}

// Validate rejects negative or non-finite weights.
func (w Weights) Validate() error {
	for name, v := range w.ToMap() {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weights.%s must be a non-negative number, got %f", name, v)
		}
	}
	return nil
}

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	return w.Text + w.Ordinal + w.Categorical
}

// ToMap returns the weights keyed by modality name.
func (w Weights) ToMap() map[string]float64 {
	return map[string]float64{
		"text":        w.Text,
		"ordinal":     w.Ordinal,
		"categorical": w.Categorical,
	}
}
