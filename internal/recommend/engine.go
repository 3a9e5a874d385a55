// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/recommend/features"
	"github.com/tomtom215/sommelier/internal/recommend/reranking"
	"github.com/tomtom215/sommelier/internal/recommend/similarity"
	"github.com/tomtom215/sommelier/internal/recommend/storage"
	"github.com/tomtom215/sommelier/internal/wine"
)

// Snapshot sources reported by Status.
const (
	SourceFit      = "fit"
	SourceArtifact = "artifact"
)

// Engine fits feature spaces and answers recommendation requests.
// It is safe for concurrent use: fits are serialized and publish a new
// snapshot with an atomic swap, so readers never lock.
type Engine struct {
	config *Config
	logger zerolog.Logger

	fitMu   sync.Mutex
	current atomic.Pointer[snapshot]
	version atomic.Int64

	requestCount atomic.Int64
	emptyCount   atomic.Int64
	errorCount   atomic.Int64
	fitCount     atomic.Int64
}

// snapshot is one immutable catalog generation.
type snapshot struct {
	space    *features.Space
	catalog  []wine.Wine
	version  int64
	loadedAt time.Time
	source   string
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Fit builds a feature space over catalog and makes it active.
//
// Records sharing an ID are collapsed to the first occurrence. A catalog that
// cannot be fitted yields a *DataError and leaves the active snapshot in
// place.
func (e *Engine) Fit(ctx context.Context, catalog []wine.Wine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !e.fitMu.TryLock() {
		return ErrFitInProgress
	}
	defer e.fitMu.Unlock()

	start := time.Now()
	catalog = e.dedupe(catalog)

	space, err := features.Fit(catalog, e.config.Features)
	if err != nil {
		metrics.RecordFit(time.Since(start), 0, 0, e.version.Load(), err)
		e.logger.Error().Err(err).Int("records", len(catalog)).Msg("feature space fit failed")
		return err
	}

	snap := e.publish(space, catalog, SourceFit)
	e.fitCount.Add(1)
	metrics.RecordFit(time.Since(start), space.Len(), space.VocabularySize(), snap.version, nil)

	e.logger.Info().
		Int("records", space.Len()).
		Int("vocabulary", space.VocabularySize()).
		Int64("version", snap.version).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("feature space fitted")

	return nil
}

// dedupe drops records whose ID was already seen, keeping the first.
func (e *Engine) dedupe(catalog []wine.Wine) []wine.Wine {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]wine.Wine, 0, len(catalog))
	dropped := 0
	for i := range catalog {
		if _, dup := seen[catalog[i].ID]; dup {
			dropped++
			continue
		}
		seen[catalog[i].ID] = struct{}{}
		out = append(out, catalog[i])
	}
	if dropped > 0 {
		e.logger.Warn().Int("dropped", dropped).Msg("duplicate wine ids in catalog, keeping first occurrence")
	}
	return out
}

// LoadArtifact restores a persisted artifact and makes it active.
func (e *Engine) LoadArtifact(a *storage.Artifact) error {
	space, err := a.Restore()
	if err != nil {
		return err
	}

	e.fitMu.Lock()
	defer e.fitMu.Unlock()

	snap := e.publish(space, a.Catalog, SourceArtifact)
	metrics.RecordSwap(space.Len(), space.VocabularySize(), snap.version)

	e.logger.Info().
		Int("records", space.Len()).
		Int64("version", snap.version).
		Time("fitted_at", space.FittedAt()).
		Msg("feature space loaded from artifact")
	return nil
}

// Artifact captures the active snapshot for persistence.
func (e *Engine) Artifact() (*storage.Artifact, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotFitted
	}
	return storage.NewArtifact(snap.space, snap.catalog), nil
}

// publish swaps in a new snapshot. Must be called with fitMu held.
func (e *Engine) publish(space *features.Space, catalog []wine.Wine, source string) *snapshot {
	snap := &snapshot{
		space:    space,
		catalog:  append([]wine.Wine(nil), catalog...),
		version:  e.version.Add(1),
		loadedAt: time.Now(),
		source:   source,
	}
	e.current.Store(snap)
	return snap
}

// View pins the active snapshot. All calls on the returned View see the same
// catalog generation even if a refit swaps the engine underneath.
func (e *Engine) View() (*View, error) {
	snap := e.current.Load()
	if snap == nil {
		return nil, ErrNotFitted
	}
	return &View{engine: e, snap: snap}, nil
}

// Recommend returns the IDs of up to TopN wines similar to the query.
// An empty query yields an empty list and no error.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) ([]string, error) {
	resp, err := e.RecommendDetailed(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.IDs(), nil
}

// RecommendDetailed is Recommend with scores and diagnostics.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) RecommendDetailed(ctx context.Context, req Request) (*Response, error) {
	v, err := e.View()
	if err != nil {
		e.requestCount.Add(1)
		e.errorCount.Add(1)
		metrics.RecordRecommendation(0, 0, err)
		return nil, err
	}
	return v.RecommendDetailed(ctx, req)
}

// Wine returns the catalog record with the given ID from the active snapshot.
func (e *Engine) Wine(id string) (wine.Wine, bool) {
	v, err := e.View()
	if err != nil {
		return wine.Wine{}, false
	}
	return v.Wine(id)
}

// Status reports the active snapshot.
func (e *Engine) Status() Status {
	snap := e.current.Load()
	if snap == nil {
		return Status{}
	}
	return Status{
		Fitted:         true,
		Version:        snap.version,
		Records:        snap.space.Len(),
		VocabularySize: snap.space.VocabularySize(),
		FittedAt:       snap.space.FittedAt(),
		LoadedAt:       snap.loadedAt,
		Source:         snap.source,
	}
}

// GetMetrics returns the engine request counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		EmptyCount:   e.emptyCount.Load(),
		ErrorCount:   e.errorCount.Load(),
		FitCount:     e.fitCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// DefaultParams returns the configured per-request parameters.
func (e *Engine) DefaultParams() Params {
	return e.config.DefaultParams()
}

// View answers requests against one pinned snapshot.
type View struct {
	engine *Engine
	snap   *snapshot
}

// Space returns the pinned feature space.
func (v *View) Space() *features.Space {
	return v.snap.space
}

// Catalog returns the pinned catalog in row order. Callers must not modify it.
func (v *View) Catalog() []wine.Wine {
	return v.snap.catalog
}

// Version returns the snapshot version.
func (v *View) Version() int64 {
	return v.snap.version
}

// Wine returns the record with the given ID.
func (v *View) Wine(id string) (wine.Wine, bool) {
	row, ok := v.snap.space.Row(id)
	if !ok {
		return wine.Wine{}, false
	}
	return v.snap.catalog[row], true
}

// Recommend returns the IDs of up to TopN wines similar to the query.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (v *View) Recommend(ctx context.Context, req Request) ([]string, error) {
	resp, err := v.RecommendDetailed(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.IDs(), nil
}

// RecommendDetailed scores every record against the query, builds the
// candidate pool and runs diversified selection.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (v *View) RecommendDetailed(ctx context.Context, req Request) (*Response, error) {
	e := v.engine
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := v.recommend(ctx, req, start)
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()

	switch {
	case err != nil:
		e.errorCount.Add(1)
		metrics.RecordRecommendation(time.Since(start), 0, err)
		return nil, err
	case len(resp.Items) == 0:
		e.emptyCount.Add(1)
	}
	metrics.RecordRecommendation(time.Since(start), len(resp.Items), nil)
	return resp, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (v *View) recommend(ctx context.Context, req Request, start time.Time) (*Response, error) {
	e := v.engine
	space := v.snap.space
	resp := &Response{
		Items: []ScoredWine{},
		Metadata: ResponseMetadata{
			RequestID:    req.RequestID,
			Components:   []string{},
			SpaceVersion: v.snap.version,
			FittedAt:     space.FittedAt(),
		},
	}

	if err := ctx.Err(); err != nil {
		return resp, err
	}

	params, topN, err := e.resolve(req)
	if err != nil {
		return resp, err
	}
	resp.Metadata.TopN = topN
	resp.Metadata.Diversity = params.Diversity

	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Int("top_n", topN).
		Float64("diversity", params.Diversity).
		Logger()

	if req.Query.IsEmpty() {
		logger.Debug().Msg("empty query")
		return resp, nil
	}

	eq := space.Encode(req.Query)
	scores := similarity.Score(space, eq, params.Weights, similarity.Options{
		CategoricalComponent: params.CategoricalComponent,
	})
	if scores.Empty() {
		logger.Debug().Msg("no active similarity component")
		return resp, nil
	}
	resp.Metadata.Components = activeComponents(scores)

	pool := reranking.Pool(scores.Fused, topN)
	resp.Metadata.PoolSize = len(pool)

	rows := reranking.NewDiversifier(params.Formula).
		Select(pool, topN, params.Diversity, space, e.tieBreaker(req))

	resp.Items = make([]ScoredWine, len(rows))
	for i, row := range rows {
		resp.Items[i] = ScoredWine{
			ID:     space.ID(row),
			Score:  scores.Fused[row],
			Scores: breakdown(scores, row),
		}
	}

	logger.Debug().
		Int("pool", len(pool)).
		Int("returned", len(rows)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return resp, nil
}

// resolve applies the request overrides to the configured defaults.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) resolve(req Request) (Params, int, error) {
	params := e.config.DefaultParams()
	if req.Params != nil {
		params = *req.Params
	}
	if req.Diversity != nil {
		params.Diversity = *req.Diversity
	}
	if err := params.Validate(); err != nil {
		return params, 0, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	topN := req.TopN
	switch {
	case topN < 0:
		return params, 0, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidRequest, topN)
	case topN == 0:
		topN = e.config.Limits.DefaultTopN
	case topN > e.config.Limits.MaxTopN:
		topN = e.config.Limits.MaxTopN
	}
	return params, topN, nil
}

// tieBreaker returns the RNG used to break exact selection ties, or nil to
// keep pool order.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tieBreaker(req Request) *rand.Rand {
	switch {
	case req.Seed != nil:
		return rand.New(rand.NewSource(*req.Seed)) //nolint:gosec // deterministic tie breaking
	case e.config.Seed != 0:
		return rand.New(rand.NewSource(e.config.Seed)) //nolint:gosec // deterministic tie breaking
	default:
		return nil
	}
}

//nolint:gocritic // hugeParam: Result is read only
func activeComponents(r similarity.Result) []string {
	out := make([]string, 0, 3)
	if r.Text != nil {
		out = append(out, "text")
	}
	if r.Ordinal != nil {
		out = append(out, "ordinal")
	}
	if r.Categorical != nil {
		out = append(out, "categorical")
	}
	return out
}

//nolint:gocritic // hugeParam: Result is read only
func breakdown(r similarity.Result, row int) map[string]float64 {
	out := make(map[string]float64, 3)
	if r.Text != nil {
		out["text"] = r.Text[row]
	}
	if r.Ordinal != nil {
		out["ordinal"] = r.Ordinal[row]
	}
	if r.Categorical != nil {
		out["categorical"] = r.Categorical[row]
	}
	return out
}
