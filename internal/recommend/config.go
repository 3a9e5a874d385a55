// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"fmt"

	"github.com/tomtom215/sommelier/internal/recommend/features"
	"github.com/tomtom215/sommelier/internal/recommend/reranking"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Features configures the encoder: field lists, text model options and
	// the default fusion weights.
	Features features.Config `json:"features"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Diversity is the default diversity factor in [0, 1].
	// 0 returns the most similar wines in order.
	// Default: 0.5.
	Diversity float64 `json:"diversity"`

	// Formula selects the diversification scoring function
	// ("observed" or "canonical").
	// Default: "observed".
	Formula string `json:"formula"`

	// CategoricalComponent adds an exact-match categorical vector weighted by
	// Features.Weights.Categorical.
	// Default: false.
	CategoricalComponent bool `json:"categorical_component"`

	// Seed seeds the tie-break RNG of requests that carry no seed.
	// If zero, exact ties keep candidate order.
	// Default: 0.
	Seed int64 `json:"seed"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// DefaultTopN is the number of recommendations when a request omits it.
	// Default: 5.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN is the maximum allowed top_n value; larger requests are clamped.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Features: features.DefaultConfig(),
		Limits: LimitsConfig{
			DefaultTopN: 5,
			MaxTopN:     100,
		},
		Diversity: 0.5,
		Formula:   reranking.FormulaObserved.String(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.Features.Validate(); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	if c.Diversity < 0 || c.Diversity > 1 {
		return fmt.Errorf("diversity must be in [0, 1], got %f", c.Diversity)
	}
	if _, err := reranking.ParseFormula(c.Formula); err != nil {
		return err
	}
	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d",
			c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Features = c.Features.Clone()
	return &clone
}

// DefaultParams returns the per-request parameters implied by the config.
// The formula has already been checked by Validate.
func (c *Config) DefaultParams() Params {
	formula, _ := reranking.ParseFormula(c.Formula) //nolint:errcheck // validated
	return Params{
		Weights:              c.Features.Weights,
		Diversity:            c.Diversity,
		Formula:              formula,
		CategoricalComponent: c.CategoricalComponent,
	}
}
