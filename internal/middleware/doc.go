// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package middleware provides HTTP middleware components for the API server.

All middleware has the chi signature func(http.Handler) http.Handler and can
be installed with r.Use().

Key Components:

  - RequestID: UUID-based request tracking; the ID is echoed in the
    X-Request-ID response header and attached to the request logger
  - PrometheusMetrics: request count, duration and in-flight gauge, labelled
    by chi route pattern so wine IDs never become label values
  - Compression: gzip for clients that accept it

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Use(middleware.Compression)
	    ...
	})
*/
package middleware
