// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"fmt"

	"github.com/tomtom215/sommelier/internal/wine"
)

// Config selects the fields and text model options used by Fit.
type Config struct {
	// TextFields are concatenated into one document per record.
	// Default: wine.TextFields.
	TextFields []wine.Field

	// CategoricalFields get a label code table.
	// Default: wine.CategoricalFields.
	CategoricalFields []wine.Field

	// OrdinalFields are imputed and min-max scaled.
	// Default: wine.OrdinalFields.
	OrdinalFields []wine.Field

	// Text configures the TF-IDF model.
	Text TextConfig

	// Weights are the default fusion weights stored with the space.
	Weights Weights
}

// TextConfig configures the TF-IDF vectorizer.
type TextConfig struct {
	// MinDF drops terms that appear in fewer documents.
	// Default: 1.
	MinDF int

	// MaxDFRatio drops terms that appear in a larger share of documents.
	// Default: 1.0 (keep everything).
	MaxDFRatio float64

	// NGramMax is the longest word n-gram kept (1 or 2).
	// Default: 1.
	NGramMax int

	// Stopwords are removed before n-grams are built. Default: none.
	Stopwords []string
}

// DefaultConfig returns the field layout of the wine catalog.
func DefaultConfig() Config {
	return Config{
		TextFields:        append([]wine.Field(nil), wine.TextFields...),
		CategoricalFields: append([]wine.Field(nil), wine.CategoricalFields...),
		OrdinalFields:     append([]wine.Field(nil), wine.OrdinalFields...),
		Text: TextConfig{
			MinDF:      1,
			MaxDFRatio: 1.0,
			NGramMax:   1,
		},
		Weights: DefaultWeights(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.TextFields)+len(c.CategoricalFields)+len(c.OrdinalFields) == 0 {
		return fmt.Errorf("at least one text, categorical or ordinal field is required")
	}
	for _, f := range c.TextFields {
		if f.IsNumeric() {
			return fmt.Errorf("text field %s is numeric", f)
		}
	}
	for _, f := range c.CategoricalFields {
		if f.IsNumeric() {
			return fmt.Errorf("categorical field %s is numeric", f)
		}
	}
	for _, f := range c.OrdinalFields {
		if !f.IsNumeric() {
			return fmt.Errorf("ordinal field %s is not numeric", f)
		}
	}
	if c.Text.MinDF < 1 {
		return fmt.Errorf("text.min_df must be at least 1, got %d", c.Text.MinDF)
	}
	if c.Text.MaxDFRatio <= 0 || c.Text.MaxDFRatio > 1 {
		return fmt.Errorf("text.max_df_ratio must be in (0, 1], got %f", c.Text.MaxDFRatio)
	}
	if c.Text.NGramMax < 1 || c.Text.NGramMax > 2 {
		return fmt.Errorf("text.ngram_max must be 1 or 2, got %d", c.Text.NGramMax)
	}
	return c.Weights.Validate()
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() Config {
	clone := *c
	clone.TextFields = append([]wine.Field(nil), c.TextFields...)
	clone.CategoricalFields = append([]wine.Field(nil), c.CategoricalFields...)
	clone.OrdinalFields = append([]wine.Field(nil), c.OrdinalFields...)
	clone.Text.Stopwords = append([]string(nil), c.Text.Stopwords...)
	return clone
}
