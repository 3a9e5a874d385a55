// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/tuning"
)

// Error codes returned in APIError.Code.
const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeNotFitted     = "NOT_FITTED"
	CodeFitInProgress = "FIT_IN_PROGRESS"
	CodeEmptyCatalog  = "EMPTY_CATALOG"
	CodeTimeout       = "TIMEOUT"
	CodeInternal      = "INTERNAL_ERROR"
	CodeRateLimited   = "RATE_LIMIT_EXCEEDED"
)

// errorStatus maps engine, evaluation and tuning errors to an HTTP status,
// an error code and a client message.
func errorStatus(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, recommend.ErrNotFitted):
		return http.StatusServiceUnavailable, CodeNotFitted, "No wine catalog has been fitted yet"
	case errors.Is(err, recommend.ErrFitInProgress):
		return http.StatusConflict, CodeFitInProgress, "A refit is already running"
	case errors.Is(err, recommend.ErrInvalidRequest),
		errors.Is(err, evaluation.ErrInvalidOptions),
		errors.Is(err, evaluation.ErrInvalidField),
		errors.Is(err, tuning.ErrInvalidGrid):
		return http.StatusBadRequest, CodeValidation, err.Error()
	case errors.Is(err, evaluation.ErrEmptyCatalog):
		return http.StatusUnprocessableEntity, CodeEmptyCatalog, "The catalog is too small to evaluate"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusGatewayTimeout, CodeTimeout, "Request timed out"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error"
	}
}

// respondEngineError writes the error response for err.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := errorStatus(err)
	respondError(w, r, status, code, message, nil, err)
}
