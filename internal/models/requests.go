// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package models

import (
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/wine"
)

// RecommendRequest is the body of POST /api/v1/recommend.
//
// Either Query or WineID must be set. With WineID the stored features of that
// catalog record are used as the query.
//
//	{
//	  "query": {"technical_sheet_wine_type": "Tinto", "tannin_tasting": 4},
//	  "top_n": 5,
//	  "diversity": 0.3
//	}
type RecommendRequest struct {
	Query     *wine.Features    `json:"query,omitempty"`
	WineID    string            `json:"wine_id,omitempty" validate:"max=256"`
	TopN      int               `json:"top_n,omitempty" validate:"gte=0"`
	Diversity *float64          `json:"diversity,omitempty" validate:"omitempty,gte=0,lte=1"`
	Seed      *int64            `json:"seed,omitempty"`
	Params    *recommend.Params `json:"params,omitempty"`
	Detailed  bool              `json:"detailed,omitempty"`
}

// RecommendResponse is the data of a successful recommendation.
type RecommendResponse struct {
	IDs      []string                   `json:"ids"`
	Items    []recommend.ScoredWine     `json:"items,omitempty"`
	Wines    []wine.Wine                `json:"wines,omitempty"`
	Metadata recommend.ResponseMetadata `json:"metadata"`
	Cached   bool                       `json:"cached,omitempty"`
}

// EvaluateRequest is the body of POST /api/v1/evaluate. Zero values keep the
// configured defaults.
type EvaluateRequest struct {
	HoldoutFraction float64           `json:"holdout_fraction,omitempty" validate:"gte=0,lte=1"`
	Samples         int               `json:"samples,omitempty" validate:"gte=0,lte=10000"`
	TopN            int               `json:"top_n,omitempty" validate:"gte=0,lte=100"`
	Seed            int64             `json:"seed,omitempty"`
	Params          *recommend.Params `json:"params,omitempty"`
}

// EvaluateCategoryRequest is the body of POST /api/v1/evaluate/category.
type EvaluateCategoryRequest struct {
	EvaluateRequest
	Field              string   `json:"field" validate:"required,categoricalfield"`
	Values             []string `json:"values,omitempty" validate:"max=100"`
	PerCategorySamples int      `json:"per_category_samples,omitempty" validate:"gte=0,lte=1000"`
}

// OptimizeRequest is the body of POST /api/v1/optimize. Nil targets keep the
// configured defaults.
type OptimizeRequest struct {
	TargetJaccard  *float64 `json:"target_jaccard,omitempty" validate:"omitempty,gte=0,lte=1"`
	TargetCoverage *float64 `json:"target_coverage,omitempty" validate:"omitempty,gte=0,lte=1"`
}
