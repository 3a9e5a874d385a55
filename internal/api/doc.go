// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package api provides the HTTP API of the recommendation server.

Routing uses go-chi/chi with go-chi/cors and go-chi/httprate. Every response
is a models.APIResponse envelope encoded with goccy/go-json.

# Endpoints

	GET  /api/v1/health            overall health (always 200)
	GET  /api/v1/health/live       liveness probe
	GET  /api/v1/health/ready      readiness probe (503 until a space is fitted)
	POST /api/v1/recommend         ranked wine IDs for a partial query
	GET  /api/v1/wines/{id}        catalog record lookup
	GET  /api/v1/status            active snapshot and engine counters
	POST /api/v1/evaluate          weighted Jaccard audit run
	POST /api/v1/evaluate/category per-stratum audit run
	POST /api/v1/optimize          grid search over weights and diversity
	GET  /metrics                  Prometheus metrics

Recommendation responses may be served from an LRU cache keyed by the feature
space version and the request body (HandlerConfig.CacheSize). Cached bodies
carry "cached": true.

Request bodies are validated with internal/validation before they reach the
engine. Engine errors map to status codes in respondEngineError.
*/
package api
