// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package config

import (
	"fmt"

	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/recommend/features"
	"github.com/tomtom215/sommelier/internal/tuning"
	"github.com/tomtom215/sommelier/internal/wine"
)

// EngineConfig converts the section into a validated engine configuration.
func (c *RecommendConfig) EngineConfig() (*recommend.Config, error) {
	textFields, err := parseFields(c.TextFields)
	if err != nil {
		return nil, fmt.Errorf("text_fields: %w", err)
	}
	categoricalFields, err := parseFields(c.CategoricalFields)
	if err != nil {
		return nil, fmt.Errorf("categorical_fields: %w", err)
	}
	ordinalFields, err := parseFields(c.OrdinalFields)
	if err != nil {
		return nil, fmt.Errorf("ordinal_fields: %w", err)
	}

	cfg := recommend.DefaultConfig()
	cfg.Features.TextFields = textFields
	cfg.Features.CategoricalFields = categoricalFields
	cfg.Features.OrdinalFields = ordinalFields
	cfg.Features.Text = features.TextConfig{
		MinDF:      c.MinDF,
		MaxDFRatio: c.MaxDFRatio,
		NGramMax:   c.NGramMax,
		Stopwords:  append([]string(nil), c.Stopwords...),
	}
	cfg.Features.Weights = features.Weights{
		Text:        c.TextWeight,
		Ordinal:     c.OrdinalWeight,
		Categorical: c.CategoricalWeight,
	}
	cfg.Limits.DefaultTopN = c.DefaultTopN
	cfg.Limits.MaxTopN = c.MaxTopN
	cfg.Diversity = c.Diversity
	cfg.Formula = c.Formula
	cfg.CategoricalComponent = c.CategoricalComponent
	cfg.Seed = c.Seed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFields(names []string) ([]wine.Field, error) {
	fields := make([]wine.Field, 0, len(names))
	for _, name := range names {
		f, err := wine.ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Options converts the section into evaluation run options.
func (c *EvaluationConfig) Options() evaluation.Options {
	return evaluation.Options{
		HoldoutFraction:    c.HoldoutFraction,
		Samples:            c.Samples,
		TopN:               c.TopN,
		PerCategorySamples: c.PerCategorySamples,
		Seed:               c.Seed,
	}
}

// JaccardWeights returns the default field weights with FieldWeights
// applied on top.
func (c *EvaluationConfig) JaccardWeights() (evaluation.JaccardWeights, error) {
	weights := evaluation.DefaultJaccardWeights()
	for name, w := range c.FieldWeights {
		f, err := wine.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("field_weights: %w", err)
		}
		weights[f] = w
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}

// Grid returns the search space of the section.
func (c *TuningConfig) Grid() tuning.Grid {
	return tuning.Grid{
		TextWeights: append([]float64(nil), c.TextWeights...),
		Budget:      c.Budget,
		Diversities: append([]float64(nil), c.Diversities...),
	}
}

// TunerConfig combines the tuning and evaluation sections.
func (c *Config) TunerConfig() tuning.Config {
	return tuning.Config{
		Grid:        c.Tuning.Grid(),
		Evaluation:  c.Evaluation.Options(),
		Parallelism: c.Tuning.Parallelism,
	}
}
