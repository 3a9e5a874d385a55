// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package models defines the HTTP API request and response structures.

Every endpoint answers with the APIResponse envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 3}
	}

Errors use the same envelope with status "error" and an APIError carrying a
machine-readable code (VALIDATION_ERROR, NOT_FOUND, NOT_FITTED, ...).

Request bodies carry go-playground/validator tags and are checked with
validation.ValidateStruct before they reach the engine.
*/
package models
