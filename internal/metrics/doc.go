// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered on the default registry through promauto and
exposed by the HTTP server at /metrics in Prometheus text format:

	curl http://localhost:8642/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
  - api_active_requests: Requests in flight (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)

Recommendation Metrics:
  - recommend_requests_total: Requests by outcome (ok, empty, error)
  - recommend_duration_seconds: Time to score and diversify one query
  - recommend_result_size: Wines returned per request

Feature Space Metrics:
  - feature_space_fits_total: Fits by status
  - feature_space_fit_duration_seconds: Fit latency
  - catalog_records, feature_space_vocabulary_size: Size of the active snapshot
  - feature_space_version: Increments on every atomic swap
  - feature_space_last_fit_timestamp: Unix time of the last fit or load

Offline Metrics:
  - evaluation_runs_total, evaluation_duration_seconds
  - evaluation_mean_jaccard, evaluation_coverage: Last run results
  - tuning_trials_total, tuning_duration_seconds, tuning_best_score

Storage Metrics:
  - artifact_operations_total: Labels operation (save, load, delete, prune), status
  - artifact_size_bytes: Compressed size of the last saved artifact
  - catalog_refresh_runs_total: Scheduled refreshes by status

# Usage

	start := time.Now()
	ids, err := engine.Recommend(ctx, req)
	metrics.RecordRecommendation(time.Since(start), len(ids), err)

The Record helpers are safe for concurrent use.
*/
package metrics
