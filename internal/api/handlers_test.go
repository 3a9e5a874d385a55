// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/tuning"
	"github.com/tomtom215/sommelier/internal/wine"
)

// ===================================================================================================
// Test Fixtures
// ===================================================================================================

func apiCatalog() []wine.Wine {
	types := []string{"Tinto", "Branco", "Rosé"}
	grapes := []string{"Malbec", "Chardonnay", "Grenache", "Merlot"}
	countries := []string{"Argentina", "Chile", "Portugal"}
	out := make([]wine.Wine, 40)
	for i := range out {
		out[i] = wine.Wine{
			ID: fmt.Sprintf("a%02d", i),
			Features: wine.Features{
				Name:           wine.Some(fmt.Sprintf("%s reserva %d", grapes[i%4], i)),
				HarmonizesWith: wine.Some([]string{"Carnes, Massas", "Peixes", "Queijos"}[i%3]),
				WineType:       wine.Some(types[i%3]),
				Grapes:         wine.Some(grapes[i%4]),
				Country:        wine.Some(countries[i%3]),
				Fruit:          wine.Some(float64(1 + i%5)),
				Tannin:         wine.Some(float64(1 + (i/3)%5)),
			},
		}
	}
	return out
}

type testServer struct {
	engine *recommend.Engine
	http   http.Handler
}

func newTestServer(t *testing.T, fit bool, mw *ChiMiddlewareConfig, opts ...func(*HandlerConfig)) *testServer {
	t.Helper()

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if fit {
		if err := engine.Fit(context.Background(), apiCatalog()); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
	}

	evaluator, err := evaluation.NewEvaluator(engine, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}

	tunerCfg := tuning.DefaultConfig()
	tunerCfg.Grid = tuning.Grid{TextWeights: []float64{0.2, 0.4}, Budget: 0.8, Diversities: []float64{0, 0.5}}
	tunerCfg.Evaluation.Samples = 5
	tuner, err := tuning.NewTuner(engine, evaluator, tunerCfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTuner() error = %v", err)
	}

	cfg := DefaultHandlerConfig()
	cfg.Version = "test"
	cfg.Evaluation.Samples = 5
	for _, opt := range opts {
		opt(&cfg)
	}
	handler, err := NewHandler(engine, evaluator, tuner, cfg)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.RateLimitDisabled = true
	}
	return &testServer{engine: engine, http: NewRouter(handler, mw).SetupChi()}
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.http.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

// ===================================================================================================
// Health Tests
// ===================================================================================================

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		fit        bool
		path       string
		wantCode   int
		wantStatus string
	}{
		{"degraded before fit", false, "/api/v1/health", http.StatusOK, "degraded"},
		{"healthy after fit", true, "/api/v1/health", http.StatusOK, "healthy"},
		{"live before fit", false, "/api/v1/health/live", http.StatusOK, "alive"},
		{"not ready before fit", false, "/api/v1/health/ready", http.StatusServiceUnavailable, ""},
		{"ready after fit", true, "/api/v1/health/ready", http.StatusOK, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.fit, nil)
			rec, env := srv.do(t, http.MethodGet, tt.path, "")

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantStatus == "" {
				if env.Error == nil || env.Error.Code != CodeNotFitted {
					t.Errorf("error = %+v, want %s", env.Error, CodeNotFitted)
				}
				return
			}
			var data struct {
				Status  string `json:"status"`
				Records int    `json:"records"`
			}
			decodeData(t, env, &data)
			if data.Status != tt.wantStatus {
				t.Errorf("data.status = %q, want %q", data.Status, tt.wantStatus)
			}
		})
	}
}

// ===================================================================================================
// Recommend Tests
// ===================================================================================================

func TestRecommend_NotFitted(t *testing.T) {
	srv := newTestServer(t, false, nil)
	rec, env := srv.do(t, http.MethodPost, "/api/v1/recommend", `{"query":{"technical_sheet_wine_type":"Tinto"}}`)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if env.Error == nil || env.Error.Code != CodeNotFitted {
		t.Errorf("error = %+v, want %s", env.Error, CodeNotFitted)
	}
}

func TestRecommend(t *testing.T) {
	srv := newTestServer(t, true, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
		wantLen  int
	}{
		{"inline query", `{"query":{"technical_sheet_grapes":"Malbec","fruit_tasting":3},"top_n":4}`, http.StatusOK, "", 4},
		{"default top_n", `{"query":{"technical_sheet_wine_type":"Branco"}}`, http.StatusOK, "", 5},
		{"by wine id", `{"wine_id":"a03","top_n":3,"diversity":0.2}`, http.StatusOK, "", 3},
		{"empty query", `{"query":{}}`, http.StatusOK, "", 0},
		{"missing query", `{"top_n":3}`, http.StatusBadRequest, CodeValidation, 0},
		{"empty body", ``, http.StatusBadRequest, CodeValidation, 0},
		{"unknown wine", `{"wine_id":"nope"}`, http.StatusNotFound, CodeNotFound, 0},
		{"diversity out of range", `{"wine_id":"a03","diversity":2}`, http.StatusBadRequest, CodeValidation, 0},
		{"negative top_n", `{"wine_id":"a03","top_n":-1}`, http.StatusBadRequest, CodeValidation, 0},
		{"unknown body field", `{"wine_id":"a03","vintage":2019}`, http.StatusBadRequest, "INVALID_JSON", 0},
		{"malformed json", `{"wine_id":`, http.StatusBadRequest, "INVALID_JSON", 0},
		{"negative weight", `{"wine_id":"a03","params":{"weights":{"text":-1,"ordinal":0.5,"categorical":0.5}}}`, http.StatusBadRequest, CodeValidation, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodPost, "/api/v1/recommend", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if env.Error == nil || env.Error.Code != tt.wantErr {
					t.Errorf("error = %+v, want code %s", env.Error, tt.wantErr)
				}
				return
			}

			var data models.RecommendResponse
			decodeData(t, env, &data)
			if len(data.IDs) != tt.wantLen {
				t.Errorf("len(ids) = %d, want %d", len(data.IDs), tt.wantLen)
			}
			if data.Items != nil {
				t.Error("items returned without detailed flag")
			}
		})
	}
}

func TestRecommend_Detailed(t *testing.T) {
	srv := newTestServer(t, true, nil)
	rec, env := srv.do(t, http.MethodPost, "/api/v1/recommend",
		`{"query":{"technical_sheet_country":"Chile"},"top_n":3,"detailed":true,"seed":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}

	var data models.RecommendResponse
	decodeData(t, env, &data)
	if len(data.Items) != len(data.IDs) || len(data.Wines) != len(data.IDs) {
		t.Fatalf("items=%d wines=%d ids=%d, want equal lengths", len(data.Items), len(data.Wines), len(data.IDs))
	}
	for i := range data.IDs {
		if data.Items[i].ID != data.IDs[i] || data.Wines[i].ID != data.IDs[i] {
			t.Errorf("row %d: item %s wine %s, want %s", i, data.Items[i].ID, data.Wines[i].ID, data.IDs[i])
		}
	}
	if data.Metadata.TopN != 3 {
		t.Errorf("metadata.top_n = %d, want 3", data.Metadata.TopN)
	}
	if data.Metadata.RequestID == "" || data.Metadata.RequestID != env.Metadata.RequestID {
		t.Errorf("request id %q does not match envelope %q", data.Metadata.RequestID, env.Metadata.RequestID)
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	srv := newTestServer(t, true, nil)
	body := `{"query":{"technical_sheet_grapes":"Merlot","tannin_tasting":2},"top_n":5,"seed":3}`

	_, first := srv.do(t, http.MethodPost, "/api/v1/recommend", body)
	_, second := srv.do(t, http.MethodPost, "/api/v1/recommend", body)

	var a, b models.RecommendResponse
	decodeData(t, first, &a)
	decodeData(t, second, &b)
	if strings.Join(a.IDs, ",") != strings.Join(b.IDs, ",") {
		t.Errorf("ids differ between identical requests: %v vs %v", a.IDs, b.IDs)
	}
}

func TestRecommend_Cache(t *testing.T) {
	srv := newTestServer(t, true, nil, func(cfg *HandlerConfig) {
		cfg.CacheSize = 8
	})
	body := `{"query":{"technical_sheet_grapes":"Malbec"},"top_n":3}`

	_, first := srv.do(t, http.MethodPost, "/api/v1/recommend", body)
	_, second := srv.do(t, http.MethodPost, "/api/v1/recommend", body)

	var a, b models.RecommendResponse
	decodeData(t, first, &a)
	decodeData(t, second, &b)
	if a.Cached {
		t.Error("first response marked cached")
	}
	if !b.Cached {
		t.Error("second response not served from cache")
	}
	if strings.Join(a.IDs, ",") != strings.Join(b.IDs, ",") {
		t.Errorf("cached ids %v differ from %v", b.IDs, a.IDs)
	}
	if b.Metadata.RequestID == a.Metadata.RequestID {
		t.Error("cached response kept the request id of the first request")
	}

	// A refit publishes a new version, so the next request misses.
	if err := srv.engine.Fit(context.Background(), apiCatalog()); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	_, third := srv.do(t, http.MethodPost, "/api/v1/recommend", body)
	var c models.RecommendResponse
	decodeData(t, third, &c)
	if c.Cached {
		t.Error("response after refit served from cache")
	}
	if c.Metadata.SpaceVersion == a.Metadata.SpaceVersion {
		t.Errorf("space_version = %d after refit, want a new version", c.Metadata.SpaceVersion)
	}

	_, status := srv.do(t, http.MethodGet, "/api/v1/status", "")
	var st statusData
	decodeData(t, status, &st)
	if st.Cache == nil || st.Cache.Hits != 1 || st.Cache.Misses != 2 {
		t.Errorf("cache stats = %+v, want 1 hit and 2 misses", st.Cache)
	}
}

// ===================================================================================================
// Wine and Status Tests
// ===================================================================================================

func TestWine(t *testing.T) {
	srv := newTestServer(t, true, nil)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/wines/a06", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var w wine.Wine
	decodeData(t, env, &w)
	if w.ID != "a06" {
		t.Errorf("id = %q, want a06", w.ID)
	}
	if got, _ := w.Grapes.Get(); got != "Grenache" {
		t.Errorf("grapes = %q, want Grenache", got)
	}

	rec, env = srv.do(t, http.MethodGet, "/api/v1/wines/missing", "")
	if rec.Code != http.StatusNotFound || env.Error == nil || env.Error.Code != CodeNotFound {
		t.Errorf("missing wine: status = %d error = %+v", rec.Code, env.Error)
	}
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t, true, nil)
	srv.do(t, http.MethodPost, "/api/v1/recommend", `{"wine_id":"a01"}`)

	rec, env := srv.do(t, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var data statusData
	decodeData(t, env, &data)
	if !data.Engine.Fitted || data.Engine.Records != 40 {
		t.Errorf("engine = %+v, want fitted with 40 records", data.Engine)
	}
	if data.Metrics.RequestCount < 1 {
		t.Errorf("request_count = %d, want >= 1", data.Metrics.RequestCount)
	}
	if data.Params.Weights.Text != 0.4 {
		t.Errorf("params.weights.text = %v, want 0.4", data.Params.Weights.Text)
	}
}

// ===================================================================================================
// Evaluation and Optimization Tests
// ===================================================================================================

func TestEvaluate(t *testing.T) {
	srv := newTestServer(t, true, nil)

	rec, env := srv.do(t, http.MethodPost, "/api/v1/evaluate", `{"samples":4,"top_n":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var m evaluation.Metrics
	decodeData(t, env, &m)
	if m.SamplesEvaluated < 1 || m.SamplesEvaluated > 4 {
		t.Errorf("samples_evaluated = %d, want 1..4", m.SamplesEvaluated)
	}
	if m.MeanJaccard < 0 || m.MeanJaccard > 1 {
		t.Errorf("mean_jaccard = %v, want within [0, 1]", m.MeanJaccard)
	}

	rec, env = srv.do(t, http.MethodPost, "/api/v1/evaluate", `{"holdout_fraction":1.5}`)
	if rec.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != CodeValidation {
		t.Errorf("invalid holdout: status = %d error = %+v", rec.Code, env.Error)
	}
}

func TestEvaluate_NotFitted(t *testing.T) {
	srv := newTestServer(t, false, nil)
	rec, _ := srv.do(t, http.MethodPost, "/api/v1/evaluate", `{}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestEvaluateByCategory(t *testing.T) {
	srv := newTestServer(t, true, nil)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"wine type", `{"field":"technical_sheet_wine_type","per_category_samples":3}`, http.StatusOK},
		{"selected values", `{"field":"technical_sheet_country","values":["Chile"]}`, http.StatusOK},
		{"numeric field", `{"field":"tannin_tasting"}`, http.StatusBadRequest},
		{"unknown field", `{"field":"vintage"}`, http.StatusBadRequest},
		{"missing field", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := srv.do(t, http.MethodPost, "/api/v1/evaluate/category", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var data categoryData
			decodeData(t, env, &data)
			if len(data.Categories) == 0 {
				t.Error("no categories evaluated")
			}
		})
	}
}

func TestOptimize(t *testing.T) {
	srv := newTestServer(t, true, nil)
	before := srv.engine.DefaultParams()

	rec, env := srv.do(t, http.MethodPost, "/api/v1/optimize", `{"target_jaccard":0.6}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var result tuning.Result
	decodeData(t, env, &result)
	if len(result.Trials) != 4 {
		t.Errorf("len(trials) = %d, want 4", len(result.Trials))
	}
	if srv.engine.DefaultParams() != before {
		t.Error("optimize changed the engine parameters")
	}

	rec, _ = srv.do(t, http.MethodPost, "/api/v1/optimize", `{"target_coverage":3}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid target: status = %d, want 400", rec.Code)
	}
}

// ===================================================================================================
// Middleware Integration Tests
// ===================================================================================================

func TestRateLimit(t *testing.T) {
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitRequests = 2
	mw.RateLimitWindow = time.Minute
	srv := newTestServer(t, true, mw)

	for i := 0; i < 2; i++ {
		if rec, _ := srv.do(t, http.MethodGet, "/api/v1/status", ""); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}

	rec, env := srv.do(t, http.MethodGet, "/api/v1/status", "")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if env.Error == nil || env.Error.Code != CodeRateLimited {
		t.Errorf("error = %+v, want %s", env.Error, CodeRateLimited)
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv := newTestServer(t, true, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	rec := httptest.NewRecorder()
	srv.http.ServeHTTP(rec, req)

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-Request-ID":           "trace-1",
		"Cache-Control":          "no-store",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, true, nil)
	srv.do(t, http.MethodPost, "/api/v1/recommend", `{"wine_id":"a02"}`)

	rec := httptest.NewRecorder()
	srv.http.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/v1/recommend") {
		t.Error("metrics output does not contain the recommend route")
	}
}

func TestNewHandler_Validation(t *testing.T) {
	if _, err := NewHandler(nil, nil, nil, DefaultHandlerConfig()); err == nil {
		t.Error("NewHandler(nil...) should fail")
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{recommend.ErrNotFitted, http.StatusServiceUnavailable},
		{recommend.ErrFitInProgress, http.StatusConflict},
		{fmt.Errorf("wrap: %w", recommend.ErrInvalidRequest), http.StatusBadRequest},
		{evaluation.ErrEmptyCatalog, http.StatusUnprocessableEntity},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got, _, _ := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
