// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package config

import (
	"fmt"

	"github.com/tomtom215/sommelier/internal/validation"
)

// Validate checks struct tag constraints first, then the rules that span
// several fields.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateCatalog(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateEvaluation(); err != nil {
		return err
	}

	if err := c.validateTuning(); err != nil {
		return err
	}

	return c.validateServer()
}

func (c *Config) validateCatalog() error {
	switch c.Catalog.Source {
	case CatalogSourceJSON:
		if c.Catalog.Path == "" {
			return fmt.Errorf("CATALOG_PATH is required when CATALOG_SOURCE=json")
		}
	case CatalogSourceBadger:
		if c.Catalog.BadgerPath == "" {
			return fmt.Errorf("CATALOG_BADGER_PATH is required when CATALOG_SOURCE=badger")
		}
	}
	return nil
}

// validateRecommend builds the engine configuration, which checks field
// names, field kinds and fusion weights.
func (c *Config) validateRecommend() error {
	if c.Recommend.MaxTopN < c.Recommend.DefaultTopN {
		return fmt.Errorf("recommend.max_top_n (%d) must be >= recommend.default_top_n (%d)",
			c.Recommend.MaxTopN, c.Recommend.DefaultTopN)
	}
	if _, err := c.Recommend.EngineConfig(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateEvaluation() error {
	if _, err := c.Evaluation.JaccardWeights(); err != nil {
		return fmt.Errorf("evaluation: %w", err)
	}
	return nil
}

func (c *Config) validateTuning() error {
	grid := c.Tuning.Grid()
	if err := grid.Validate(); err != nil {
		return fmt.Errorf("tuning: %w", err)
	}
	return nil
}

func (c *Config) validateServer() error {
	if !c.Server.RateLimitDisabled && c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}
