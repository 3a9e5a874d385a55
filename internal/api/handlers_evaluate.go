// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/wine"
)

// evaluationOptions merges the non-zero request fields over the configured
// defaults.
func (h *Handler) evaluationOptions(req *models.EvaluateRequest) evaluation.Options {
	opts := h.config.Evaluation
	if req.HoldoutFraction > 0 {
		opts.HoldoutFraction = req.HoldoutFraction
	}
	if req.Samples > 0 {
		opts.Samples = req.Samples
	}
	if req.TopN > 0 {
		opts.TopN = req.TopN
	}
	if req.Seed != 0 {
		opts.Seed = req.Seed
	}
	if req.Params != nil {
		p := *req.Params
		opts.Params = &p
	}
	return opts
}

// Evaluate handles POST /api/v1/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.EvaluateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.AnalysisTimeout)
	defer cancel()

	result, err := h.evaluator.Evaluate(ctx, h.evaluationOptions(&req))
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, result, start)
}

// categoryData is the body of POST /api/v1/evaluate/category.
type categoryData struct {
	Field      string                        `json:"field"`
	Categories map[string]evaluation.Metrics `json:"categories"`
}

// EvaluateByCategory handles POST /api/v1/evaluate/category.
func (h *Handler) EvaluateByCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.EvaluateCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	field, err := wine.ParseField(req.Field)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, err.Error(), nil, nil)
		return
	}

	opts := h.evaluationOptions(&req.EvaluateRequest)
	if req.PerCategorySamples > 0 {
		opts.PerCategorySamples = req.PerCategorySamples
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.AnalysisTimeout)
	defer cancel()

	result, err := h.evaluator.EvaluateByCategory(ctx, field, req.Values, opts)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, categoryData{Field: string(field), Categories: result}, start)
}

// Optimize handles POST /api/v1/optimize. The best parameters are returned,
// not applied.
func (h *Handler) Optimize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.OptimizeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	targetJaccard := h.config.TargetJaccard
	if req.TargetJaccard != nil {
		targetJaccard = *req.TargetJaccard
	}
	targetCoverage := h.config.TargetCoverage
	if req.TargetCoverage != nil {
		targetCoverage = *req.TargetCoverage
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.AnalysisTimeout)
	defer cancel()

	result, err := h.tuner.Optimize(ctx, targetJaccard, targetCoverage)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, result, start)
}
