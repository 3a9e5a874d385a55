// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package evaluation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/wine"
)

// MinStratumSize is the smallest stratum EvaluateByCategory will sample.
const MinStratumSize = 5

// DefaultSeed seeds the sampling RNG when Options.Seed is zero.
const DefaultSeed int64 = 42

var (
	// ErrInvalidOptions is returned when run options are out of range.
	ErrInvalidOptions = errors.New("invalid evaluation options")

	// ErrEmptyCatalog is returned when the pinned snapshot has no records.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrInvalidField is returned when a stratification field is not a label field.
	ErrInvalidField = errors.New("invalid stratification field")
)

// Recommender is the read side of a pinned engine snapshot.
// *recommend.View satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) ([]string, error)
	Catalog() []wine.Wine
	Wine(id string) (wine.Wine, bool)
}

// Snapshotter pins engine snapshots. *recommend.Engine satisfies it.
type Snapshotter interface {
	View() (*recommend.View, error)
}

// Options controls one evaluation run.
type Options struct {
	// HoldoutFraction is the share of the catalog held out for sampling.
	// Default: 0.2.
	HoldoutFraction float64 `json:"holdout_fraction"`

	// Samples is the maximum number of held-out records queried.
	// Default: 100.
	Samples int `json:"samples"`

	// TopN is the recommendation list length per query.
	// Default: 5.
	TopN int `json:"top_n"`

	// PerCategorySamples caps the samples per stratum in EvaluateByCategory.
	// Default: 20.
	PerCategorySamples int `json:"per_category_samples"`

	// Params overrides the engine parameters for every query of the run.
	Params *recommend.Params `json:"params,omitempty"`

	// Seed seeds the sampling RNG. Zero selects DefaultSeed.
	Seed int64 `json:"seed"`
}

// DefaultOptions returns the standard run options.
func DefaultOptions() Options {
	return Options{
		HoldoutFraction:    0.2,
		Samples:            100,
		TopN:               5,
		PerCategorySamples: 20,
		Seed:               DefaultSeed,
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.HoldoutFraction <= 0 || o.HoldoutFraction > 1 || math.IsNaN(o.HoldoutFraction) {
		return fmt.Errorf("%w: holdout_fraction must be in (0, 1], got %f", ErrInvalidOptions, o.HoldoutFraction)
	}
	if o.Samples < 1 {
		return fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidOptions, o.Samples)
	}
	if o.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidOptions, o.TopN)
	}
	if o.PerCategorySamples < 1 {
		return fmt.Errorf("%w: per_category_samples must be positive, got %d", ErrInvalidOptions, o.PerCategorySamples)
	}
	if o.Params != nil {
		if err := o.Params.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
		}
	}
	return nil
}

func (o *Options) seed() int64 {
	if o.Seed == 0 {
		return DefaultSeed
	}
	return o.Seed
}

// Metrics is the outcome of one evaluation run.
type Metrics struct {
	MeanJaccard       float64       `json:"mean_jaccard"`
	StdJaccard        float64       `json:"std_jaccard"`
	Coverage          float64       `json:"coverage"`
	InternalDiversity float64       `json:"internal_diversity"`
	SamplesEvaluated  int           `json:"samples_evaluated"`
	TotalSamples      int           `json:"total_samples"`
	Errors            int           `json:"errors"`
	RunID             string        `json:"run_id"`
	Duration          time.Duration `json:"duration_ns"`
}

// Evaluator runs offline audits against an engine.
type Evaluator struct {
	source  Snapshotter
	weights JaccardWeights
	logger  zerolog.Logger
}

// NewEvaluator creates an evaluator. Nil weights select DefaultJaccardWeights.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluator(source Snapshotter, weights JaccardWeights, logger zerolog.Logger) (*Evaluator, error) {
	if weights == nil {
		weights = DefaultJaccardWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		source:  source,
		weights: weights,
		logger:  logger.With().Str("component", "evaluation").Logger(),
	}, nil
}

// Weights returns the audit weights.
func (e *Evaluator) Weights() JaccardWeights {
	return e.weights
}

// Evaluate runs one audit against the active engine snapshot.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Evaluator) Evaluate(ctx context.Context, opts Options) (*Metrics, error) {
	view, err := e.source.View()
	if err != nil {
		return nil, err
	}
	return e.EvaluateWith(ctx, view, opts)
}

// EvaluateWith runs one audit against r. The tuner uses it to score every
// trial on the same snapshot.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Evaluator) EvaluateWith(ctx context.Context, r Recommender, opts Options) (*Metrics, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	catalog := r.Catalog()
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	rng := rand.New(rand.NewSource(opts.seed())) //nolint:gosec // reproducible sampling
	perm := rng.Perm(len(catalog))

	holdout := int(math.Ceil(opts.HoldoutFraction * float64(len(catalog))))
	if holdout > len(catalog) {
		holdout = len(catalog)
	}
	n := opts.Samples
	if n > holdout {
		n = holdout
	}

	samples := make([]wine.Wine, n)
	for i := 0; i < n; i++ {
		samples[i] = catalog[perm[i]]
	}

	runID := uuid.NewString()
	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().
		Int("catalog", len(catalog)).
		Int("holdout", holdout).
		Int("samples", n).
		Int("top_n", opts.TopN).
		Msg("evaluation started")

	acc := newAccumulator()
	if err := e.run(ctx, r, samples, opts.TopN, opts.Params, acc, logger); err != nil {
		metrics.RecordEvaluation(time.Since(start), 0, 0, err)
		return nil, err
	}

	m := acc.metrics(len(catalog))
	m.RunID = runID
	m.Duration = time.Since(start)
	metrics.RecordEvaluation(m.Duration, m.MeanJaccard, m.Coverage, nil)

	logger.Info().
		Float64("mean_jaccard", m.MeanJaccard).
		Float64("coverage", m.Coverage).
		Float64("internal_diversity", m.InternalDiversity).
		Int("evaluated", m.SamplesEvaluated).
		Int("errors", m.Errors).
		Dur("duration", m.Duration).
		Msg("evaluation complete")

	return &m, nil
}

// EvaluateByCategory runs one audit per stratum of a label field. A nil
// values list selects every observed label in sorted order. Strata with
// fewer than MinStratumSize members are omitted from the result.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Evaluator) EvaluateByCategory(ctx context.Context, field wine.Field, values []string, opts Options) (map[string]Metrics, error) {
	view, err := e.source.View()
	if err != nil {
		return nil, err
	}
	return e.EvaluateByCategoryWith(ctx, view, field, values, opts)
}

// EvaluateByCategoryWith is EvaluateByCategory against r.
//
//nolint:gocritic // hugeParam: opts passed by value for immutability
func (e *Evaluator) EvaluateByCategoryWith(ctx context.Context, r Recommender, field wine.Field, values []string, opts Options) (map[string]Metrics, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if _, err := wine.ParseField(string(field)); err != nil || field.IsNumeric() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidField, field)
	}

	catalog := r.Catalog()
	if len(catalog) == 0 {
		return nil, ErrEmptyCatalog
	}

	strata := make(map[string][]wine.Wine)
	for i := range catalog {
		label, ok := catalog[i].Text(field)
		if !ok {
			continue
		}
		strata[label] = append(strata[label], catalog[i])
	}
	if values == nil {
		values = make([]string, 0, len(strata))
		for label := range strata {
			values = append(values, label)
		}
		sort.Strings(values)
	}

	rng := rand.New(rand.NewSource(opts.seed())) //nolint:gosec // reproducible sampling
	out := make(map[string]Metrics, len(values))

	for _, value := range values {
		members := strata[value]
		if len(members) < MinStratumSize {
			e.logger.Debug().
				Str("field", string(field)).
				Str("value", value).
				Int("members", len(members)).
				Msg("stratum too small, skipping")
			continue
		}

		start := time.Now()
		n := opts.PerCategorySamples
		if n > len(members) {
			n = len(members)
		}
		perm := rng.Perm(len(members))
		samples := make([]wine.Wine, n)
		for i := 0; i < n; i++ {
			samples[i] = members[perm[i]]
		}

		runID := uuid.NewString()
		logger := e.logger.With().
			Str("run_id", runID).
			Str("field", string(field)).
			Str("value", value).
			Logger()

		acc := newAccumulator()
		if err := e.run(ctx, r, samples, opts.TopN, opts.Params, acc, logger); err != nil {
			return nil, err
		}
		m := acc.metrics(len(catalog))
		m.RunID = runID
		m.Duration = time.Since(start)
		out[value] = m
	}

	e.logger.Info().
		Str("field", string(field)).
		Int("strata", len(out)).
		Msg("stratified evaluation complete")

	return out, nil
}

// run queries every sample and feeds acc.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Evaluator) run(ctx context.Context, r Recommender, samples []wine.Wine, topN int, params *recommend.Params, acc *accumulator, logger zerolog.Logger) error {
	acc.total = len(samples)

	for i := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		source := samples[i]

		query := wine.QueryFrom(source.Features)
		if query.IsEmpty() {
			logger.Debug().Str("wine_id", source.ID).Msg("sample has no fields, skipping")
			continue
		}

		ids, err := r.Recommend(ctx, recommend.Request{Query: query, TopN: topN, Params: params})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			acc.errors++
			logger.Warn().Err(err).Str("wine_id", source.ID).Msg("recommend failed for sample")
			continue
		}
		if len(ids) == 0 {
			logger.Debug().Str("wine_id", source.ID).Msg("no recommendations for sample")
			continue
		}

		recs := make([]wine.Wine, 0, len(ids))
		for _, id := range ids {
			acc.covered[id] = struct{}{}
			rec, ok := r.Wine(id)
			if !ok {
				logger.Warn().Str("wine_id", id).Msg("recommended id not in catalog")
				continue
			}
			recs = append(recs, rec)
		}
		if len(recs) == 0 {
			continue
		}

		var sum float64
		for j := range recs {
			sum += WeightedJaccard(source.Features, recs[j].Features, e.weights)
		}
		acc.jaccard = append(acc.jaccard, sum/float64(len(recs)))

		if len(recs) > 1 {
			acc.diversity = append(acc.diversity, 1-e.meanPairwise(recs))
		}
	}
	return nil
}

func (e *Evaluator) meanPairwise(recs []wine.Wine) float64 {
	var sum float64
	pairs := 0
	for i := 0; i < len(recs); i++ {
		for j := i + 1; j < len(recs); j++ {
			sum += WeightedJaccard(recs[i].Features, recs[j].Features, e.weights)
			pairs++
		}
	}
	return sum / float64(pairs)
}

type accumulator struct {
	jaccard   []float64
	diversity []float64
	covered   map[string]struct{}
	total     int
	errors    int
}

func newAccumulator() *accumulator {
	return &accumulator{covered: make(map[string]struct{})}
}

func (a *accumulator) metrics(catalogSize int) Metrics {
	mean, std := meanStd(a.jaccard)
	diversity, _ := meanStd(a.diversity)
	m := Metrics{
		MeanJaccard:       mean,
		StdJaccard:        std,
		InternalDiversity: diversity,
		SamplesEvaluated:  len(a.jaccard),
		TotalSamples:      a.total,
		Errors:            a.errors,
	}
	if catalogSize > 0 {
		m.Coverage = float64(len(a.covered)) / float64(catalogSize)
	}
	return m
}

// meanStd returns the mean and population standard deviation, or zeros for
// an empty slice.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(values)))
}
