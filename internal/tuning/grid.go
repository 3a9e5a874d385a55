// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package tuning

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/sommelier/internal/recommend"
)

// ErrInvalidGrid is returned when the search grid cannot produce valid
// parameters.
var ErrInvalidGrid = errors.New("invalid tuning grid")

// Grid describes the search space.
type Grid struct {
	// TextWeights are the text weights tried.
	// Default: 0.2, 0.3, 0.4, 0.5, 0.6.
	TextWeights []float64 `json:"text_weights" koanf:"text_weights"`

	// Budget is the constant text + ordinal weight sum.
	// Default: 0.8.
	Budget float64 `json:"budget" koanf:"budget"`

	// Diversities are the diversity factors tried.
	// Default: 0, 0.3, 0.5, 0.7, 1.0.
	Diversities []float64 `json:"diversities" koanf:"diversities"`
}

// DefaultGrid returns the standard search space.
func DefaultGrid() Grid {
	return Grid{
		TextWeights: []float64{0.2, 0.3, 0.4, 0.5, 0.6},
		Budget:      0.8,
		Diversities: []float64{0, 0.3, 0.5, 0.7, 1.0},
	}
}

// Size returns the number of grid points.
func (g *Grid) Size() int {
	return len(g.TextWeights) * len(g.Diversities)
}

// Validate checks that every point yields non-negative weights and a
// diversity factor in [0, 1].
func (g *Grid) Validate() error {
	if g.Size() == 0 {
		return fmt.Errorf("%w: text_weights and diversities must not be empty", ErrInvalidGrid)
	}
	if g.Budget < 0 || math.IsNaN(g.Budget) || math.IsInf(g.Budget, 0) {
		return fmt.Errorf("%w: budget must be a non-negative number, got %f", ErrInvalidGrid, g.Budget)
	}
	for _, w := range g.TextWeights {
		if w < 0 || w > g.Budget || math.IsNaN(w) {
			return fmt.Errorf("%w: text weight %f outside [0, %f]", ErrInvalidGrid, w, g.Budget)
		}
	}
	for _, d := range g.Diversities {
		if d < 0 || d > 1 || math.IsNaN(d) {
			return fmt.Errorf("%w: diversity %f outside [0, 1]", ErrInvalidGrid, d)
		}
	}
	return nil
}

// Points expands the grid into one Params value per point, text weights in
// the outer loop. Fields not searched are copied from base.
//
//nolint:gocritic // hugeParam: base is copied into every point
func (g *Grid) Points(base recommend.Params) []recommend.Params {
	out := make([]recommend.Params, 0, g.Size())
	for _, text := range g.TextWeights {
		for _, diversity := range g.Diversities {
			p := base
			p.Weights.Text = text
			p.Weights.Ordinal = g.Budget - text
			p.Diversity = diversity
			out = append(out, p)
		}
	}
	return out
}

// Objective returns |j − targetJaccard| + |c − targetCoverage|.
func Objective(j, c, targetJaccard, targetCoverage float64) float64 {
	return math.Abs(j-targetJaccard) + math.Abs(c-targetCoverage)
}
