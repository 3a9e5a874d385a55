// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "top_n must be less than or equal to 100",
//	    "details": {"field": "top_n"}
//	  },
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - INVALID_JSON: Body is not valid JSON for the endpoint
//   - NOT_FOUND: Wine ID doesn't exist in the active catalog
//   - NOT_FITTED: No feature space has been fitted or loaded yet
//   - FIT_IN_PROGRESS: A refit is already running
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse is the body of the health endpoints.
type HealthResponse struct {
	Status       string    `json:"status"` // "healthy" or "degraded"
	Version      string    `json:"version"`
	Fitted       bool      `json:"fitted"`
	SpaceVersion int64     `json:"space_version"`
	Records      int       `json:"records"`
	Uptime       float64   `json:"uptime_seconds"`
	LoadedAt     time.Time `json:"loaded_at"`
}
