// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{"recommend ok", "POST", "/api/v1/recommendations", "200", 3 * time.Millisecond},
		{"wine lookup", "GET", "/api/v1/wines/{id}", "200", time.Millisecond},
		{"not found", "GET", "/api/v1/wines/{id}", "404", time.Millisecond},
		{"bad request", "POST", "/api/v1/recommendations", "400", time.Millisecond},
		{"rate limited", "POST", "/api/v1/evaluate", "429", time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after-before != 1 {
				t.Errorf("api_requests_total delta = %v, want 1", after-before)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name    string
		results int
		err     error
		outcome string
	}{
		{"with results", 5, nil, OutcomeOK},
		{"empty query", 0, nil, OutcomeEmpty},
		{"not fitted", 0, errors.New("engine not fitted"), OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := RecommendRequests.WithLabelValues(tt.outcome)
			before := testutil.ToFloat64(counter)
			RecordRecommendation(time.Millisecond, tt.results, tt.err)
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("recommend_requests_total{outcome=%q} delta = %v, want 1", tt.outcome, got)
			}
		})
	}
}

func TestRecordFit(t *testing.T) {
	RecordFit(10*time.Millisecond, 120, 900, 7, nil)
	if got := testutil.ToFloat64(CatalogRecords); got != 120 {
		t.Errorf("catalog_records = %v, want 120", got)
	}
	if got := testutil.ToFloat64(VocabularySize); got != 900 {
		t.Errorf("feature_space_vocabulary_size = %v, want 900", got)
	}
	if got := testutil.ToFloat64(SpaceVersion); got != 7 {
		t.Errorf("feature_space_version = %v, want 7", got)
	}

	failed := testutil.ToFloat64(FitTotal.WithLabelValues(StatusError))
	RecordFit(time.Millisecond, 0, 0, 8, errors.New("empty catalog"))
	if got := testutil.ToFloat64(FitTotal.WithLabelValues(StatusError)) - failed; got != 1 {
		t.Errorf("failed fits delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(SpaceVersion); got != 7 {
		t.Errorf("failed fit changed feature_space_version to %v", got)
	}
}

func TestRecordEvaluation(t *testing.T) {
	RecordEvaluation(time.Second, 0.42, 0.31, nil)
	if got := testutil.ToFloat64(EvaluationMeanJaccard); got != 0.42 {
		t.Errorf("evaluation_mean_jaccard = %v, want 0.42", got)
	}
	if got := testutil.ToFloat64(EvaluationCoverage); got != 0.31 {
		t.Errorf("evaluation_coverage = %v, want 0.31", got)
	}

	RecordEvaluation(time.Second, 0, 0, errors.New("boom"))
	if got := testutil.ToFloat64(EvaluationMeanJaccard); got != 0.42 {
		t.Errorf("failed run overwrote evaluation_mean_jaccard with %v", got)
	}
}

func TestRecordTuning(t *testing.T) {
	before := testutil.ToFloat64(TuningTrials)
	RecordTuning(time.Second, 25, 0.12)
	if got := testutil.ToFloat64(TuningTrials) - before; got != 25 {
		t.Errorf("tuning_trials_total delta = %v, want 25", got)
	}
	if got := testutil.ToFloat64(TuningBestScore); got != 0.12 {
		t.Errorf("tuning_best_score = %v, want 0.12", got)
	}
}

func TestRecordArtifactOperation(t *testing.T) {
	before := testutil.ToFloat64(ArtifactOperations.WithLabelValues("load", StatusError))
	RecordArtifactOperation("load", fmt.Errorf("open: %w", errors.New("missing")))
	if got := testutil.ToFloat64(ArtifactOperations.WithLabelValues("load", StatusError)) - before; got != 1 {
		t.Errorf("artifact_operations_total delta = %v, want 1", got)
	}
}

func TestRecordRefresh_IgnoresCancellation(t *testing.T) {
	ok := testutil.ToFloat64(RefreshRuns.WithLabelValues(StatusSuccess))
	failed := testutil.ToFloat64(RefreshRuns.WithLabelValues(StatusError))

	RecordRefresh(fmt.Errorf("refit: %w", context.Canceled))
	RecordRefresh(nil)

	if got := testutil.ToFloat64(RefreshRuns.WithLabelValues(StatusSuccess)) - ok; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RefreshRuns.WithLabelValues(StatusError)) - failed; got != 0 {
		t.Errorf("error delta = %v, want 0", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			RecordRecommendation(time.Microsecond, n%3, nil)
			RecordAPIRequest("GET", "/api/v1/health", "200", time.Microsecond)
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}(i)
	}
	wg.Wait()
}
