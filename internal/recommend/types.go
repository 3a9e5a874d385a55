// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/sommelier/internal/recommend/features"
	"github.com/tomtom215/sommelier/internal/recommend/reranking"
	"github.com/tomtom215/sommelier/internal/wine"
)

// Params holds the scoring and diversification parameters of one request.
// The tuner builds one value per grid point; the shared feature space is
// never modified.
type Params struct {
	// Weights are the fusion weights.
	Weights features.Weights `json:"weights"`

	// Diversity is the diversification factor; <= 0 disables it.
	Diversity float64 `json:"diversity"`

	// Formula is the greedy scoring function.
	Formula reranking.Formula `json:"formula"`

	// CategoricalComponent enables the exact-match categorical vector.
	CategoricalComponent bool `json:"categorical_component"`
}

// Validate checks the parameters.
//
//nolint:gocritic // hugeParam: value receiver keeps Params immutable
func (p Params) Validate() error {
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	if math.IsNaN(p.Diversity) || math.IsInf(p.Diversity, 0) {
		return fmt.Errorf("diversity must be finite, got %f", p.Diversity)
	}
	return nil
}

// Request represents a recommendation request.
type Request struct {
	// Query is the partial feature set to match.
	Query wine.Query `json:"query"`

	// TopN is the maximum number of wines to return.
	// Defaults to Config.Limits.DefaultTopN if zero.
	TopN int `json:"top_n,omitempty"`

	// Diversity overrides the diversity factor of Params.
	Diversity *float64 `json:"diversity,omitempty"`

	// Seed seeds the tie-break RNG for this request.
	Seed *int64 `json:"seed,omitempty"`

	// Params overrides the configured parameters for this request.
	Params *Params `json:"params,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// ScoredWine is one recommended wine with its fused similarity.
type ScoredWine struct {
	// ID is the catalog record identifier.
	ID string `json:"id"`

	// Score is the fused similarity (0 to the sum of the active weights).
	Score float64 `json:"score"`

	// Scores is a breakdown of the normalized component similarities.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// Response represents a recommendation response.
type Response struct {
	// Items is the ordered list of recommended wines.
	Items []ScoredWine `json:"items"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// IDs returns the recommended catalog IDs in order.
func (r *Response) IDs() []string {
	ids := make([]string, len(r.Items))
	for i := range r.Items {
		ids[i] = r.Items[i].ID
	}
	return ids
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id,omitempty"`

	// TopN is the effective top_n after defaults and clamping.
	TopN int `json:"top_n"`

	// Diversity is the effective diversity factor.
	Diversity float64 `json:"diversity"`

	// Components lists the similarity components that were active.
	Components []string `json:"components"`

	// PoolSize is the number of candidates considered by the selector.
	PoolSize int `json:"pool_size"`

	// LatencyMS is the total recommendation latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// SpaceVersion is the version of the feature space used.
	SpaceVersion int64 `json:"space_version"`

	// FittedAt is when the feature space was fitted.
	FittedAt time.Time `json:"fitted_at"`
}

// Status reports the state of the active snapshot.
type Status struct {
	Fitted         bool      `json:"fitted"`
	Version        int64     `json:"version"`
	Records        int       `json:"records"`
	VocabularySize int       `json:"vocabulary_size"`
	FittedAt       time.Time `json:"fitted_at"`
	LoadedAt       time.Time `json:"loaded_at"`
	Source         string    `json:"source"`
}

// Metrics contains engine request counters.
type Metrics struct {
	RequestCount int64 `json:"request_count"`
	EmptyCount   int64 `json:"empty_count"`
	ErrorCount   int64 `json:"error_count"`
	FitCount     int64 `json:"fit_count"`
}
