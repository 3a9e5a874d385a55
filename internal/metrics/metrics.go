// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Recommendation outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // "ok", "empty", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of a single recommendation in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	RecommendResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_result_size",
			Help:    "Number of wines returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
		},
	)

	RecommendCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_cache_lookups_total",
			Help: "Recommendation response cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Feature Space Metrics
	FitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feature_space_fits_total",
			Help: "Total number of feature space fits",
		},
		[]string{"status"},
	)

	FitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feature_space_fit_duration_seconds",
			Help:    "Duration of feature space fits in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_records",
			Help: "Number of wines in the active snapshot",
		},
	)

	VocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_space_vocabulary_size",
			Help: "Number of terms in the active text model",
		},
	)

	SpaceVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_space_version",
			Help: "Version of the active feature space (increments on every swap)",
		},
	)

	FitLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_space_last_fit_timestamp",
			Help: "Unix timestamp of the last successful fit or load",
		},
	)

	// Evaluation Metrics
	EvaluationRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evaluation_runs_total",
			Help: "Total number of offline evaluation runs",
		},
		[]string{"status"},
	)

	EvaluationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evaluation_duration_seconds",
			Help:    "Duration of offline evaluation runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	EvaluationMeanJaccard = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evaluation_mean_jaccard",
			Help: "Mean weighted Jaccard of the last evaluation run",
		},
	)

	EvaluationCoverage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "evaluation_coverage",
			Help: "Catalog coverage of the last evaluation run",
		},
	)

	// Tuning Metrics
	TuningTrials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tuning_trials_total",
			Help: "Total number of parameter grid trials evaluated",
		},
	)

	TuningDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tuning_duration_seconds",
			Help:    "Duration of parameter tuning runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
	)

	TuningBestScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tuning_best_score",
			Help: "Objective of the best grid point of the last tuning run (lower is better)",
		},
	)

	// Artifact Metrics
	ArtifactOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_operations_total",
			Help: "Total number of artifact store operations",
		},
		[]string{"operation", "status"}, // "save", "load", "delete", "prune"
	)

	ArtifactSizeBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artifact_size_bytes",
			Help: "Compressed size of the last saved artifact",
		},
	)

	// Catalog Refresh Metrics
	RefreshRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_refresh_runs_total",
			Help: "Total number of scheduled catalog refreshes",
		},
		[]string{"status"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one recommendation call.
func RecordRecommendation(duration time.Duration, results int, err error) {
	RecommendDuration.Observe(duration.Seconds())
	switch {
	case err != nil:
		RecommendRequests.WithLabelValues(OutcomeError).Inc()
	case results == 0:
		RecommendRequests.WithLabelValues(OutcomeEmpty).Inc()
	default:
		RecommendRequests.WithLabelValues(OutcomeOK).Inc()
	}
	if err == nil {
		RecommendResultSize.Observe(float64(results))
	}
}

// RecordCacheLookup counts a response cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	RecommendCacheLookups.WithLabelValues("miss").Inc()
}

// RecordFit records a feature space fit. On success the snapshot gauges are
// updated.
func RecordFit(duration time.Duration, records, vocabulary int, version int64, err error) {
	FitDuration.Observe(duration.Seconds())
	FitTotal.WithLabelValues(status(err)).Inc()
	if err != nil {
		return
	}
	RecordSwap(records, vocabulary, version)
}

// RecordSwap updates the snapshot gauges after a new space is published.
func RecordSwap(records, vocabulary int, version int64) {
	CatalogRecords.Set(float64(records))
	VocabularySize.Set(float64(vocabulary))
	SpaceVersion.Set(float64(version))
	FitLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordEvaluation records an evaluation run.
func RecordEvaluation(duration time.Duration, meanJaccard, coverage float64, err error) {
	EvaluationDuration.Observe(duration.Seconds())
	EvaluationRuns.WithLabelValues(status(err)).Inc()
	if err == nil {
		EvaluationMeanJaccard.Set(meanJaccard)
		EvaluationCoverage.Set(coverage)
	}
}

// RecordTuning records a completed tuning run.
func RecordTuning(duration time.Duration, trials int, bestScore float64) {
	TuningDuration.Observe(duration.Seconds())
	TuningTrials.Add(float64(trials))
	TuningBestScore.Set(bestScore)
}

// RecordArtifactOperation records an artifact store operation.
func RecordArtifactOperation(operation string, err error) {
	ArtifactOperations.WithLabelValues(operation, status(err)).Inc()
}

// RecordRefresh records a scheduled catalog refresh. A canceled context is
// not counted as a failure.
func RecordRefresh(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	RefreshRuns.WithLabelValues(status(err)).Inc()
}
