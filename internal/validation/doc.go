// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps a thread-safe singleton validator with wine-specific tags and
// messages that name fields the way the caller wrote them (json tag, then
// koanf tag, then the Go field name). Both HTTP request bodies and the
// application configuration are checked through ValidateStruct.
//
// # Quick Start
//
//	type recommendRequest struct {
//	    TopN      int     `json:"top_n" validate:"gte=0,lte=100"`
//	    Diversity float64 `json:"diversity" validate:"gte=0,lte=1"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// # Custom Tags
//
//   - winefield: the value is a known wine field name (see wine.ParseField)
//   - categoricalfield: the value is a known, non-numeric wine field
//
// # Error Messages
//
//	required   -> "field is required"
//	min=3      -> "name must be at least 3 characters"
//	gte=1      -> "top_n must be greater than or equal to 1"
//	oneof=a b  -> "formula must be one of: a b"
//	winefield  -> "field must be a known wine field"
//
// ToAPIError renders the errors as a VALIDATION_ERROR with either a single
// field detail or a "fields" list.
package validation
