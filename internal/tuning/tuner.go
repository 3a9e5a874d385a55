// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package tuning

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/recommend"
)

// Engine is the part of *recommend.Engine the tuner needs.
type Engine interface {
	View() (*recommend.View, error)
	DefaultParams() recommend.Params
}

// Config controls an optimization run.
type Config struct {
	// Grid is the search space.
	Grid Grid `json:"grid"`

	// Evaluation configures the audit run of every trial.
	Evaluation evaluation.Options `json:"evaluation"`

	// Parallelism bounds concurrent trials. 0 uses GOMAXPROCS.
	// Default: 0.
	Parallelism int `json:"parallelism"`
}

// DefaultConfig returns the standard tuning configuration.
func DefaultConfig() Config {
	return Config{
		Grid:       DefaultGrid(),
		Evaluation: evaluation.DefaultOptions(),
	}
}

// Trial is the outcome of one grid point.
type Trial struct {
	Index   int                `json:"index"`
	Params  recommend.Params   `json:"params"`
	Metrics evaluation.Metrics `json:"metrics"`
	Score   float64            `json:"score"`
}

// Result is the outcome of Optimize.
type Result struct {
	Best      recommend.Params   `json:"best"`
	BestIndex int                `json:"best_index"`
	Score     float64            `json:"score"`
	Metrics   evaluation.Metrics `json:"metrics"`
	Trials    []Trial            `json:"trials"`
	RunID     string             `json:"run_id"`
	Duration  time.Duration      `json:"duration_ns"`
}

// Tuner runs grid searches.
type Tuner struct {
	engine    Engine
	evaluator *evaluation.Evaluator
	config    Config
	logger    zerolog.Logger
}

// NewTuner creates a tuner.
//
//nolint:gocritic // hugeParam: cfg copied once at construction
func NewTuner(engine Engine, evaluator *evaluation.Evaluator, cfg Config, logger zerolog.Logger) (*Tuner, error) {
	if err := cfg.Grid.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Evaluation.Validate(); err != nil {
		return nil, err
	}
	if cfg.Parallelism < 0 {
		return nil, fmt.Errorf("parallelism must be non-negative, got %d", cfg.Parallelism)
	}
	cfg.Grid.TextWeights = append([]float64(nil), cfg.Grid.TextWeights...)
	cfg.Grid.Diversities = append([]float64(nil), cfg.Grid.Diversities...)

	return &Tuner{
		engine:    engine,
		evaluator: evaluator,
		config:    cfg,
		logger:    logger.With().Str("component", "tuning").Logger(),
	}, nil
}

// Config returns the tuner configuration.
func (t *Tuner) Config() Config {
	return t.config
}

// Optimize evaluates every grid point and returns the one whose metrics are
// closest to the targets.
func (t *Tuner) Optimize(ctx context.Context, targetJaccard, targetCoverage float64) (*Result, error) {
	start := time.Now()

	view, err := t.engine.View()
	if err != nil {
		return nil, err
	}

	points := t.config.Grid.Points(t.engine.DefaultParams())
	trials := make([]Trial, len(points))

	runID := uuid.NewString()
	logger := t.logger.With().Str("run_id", runID).Logger()
	logger.Info().
		Int("trials", len(points)).
		Float64("target_jaccard", targetJaccard).
		Float64("target_coverage", targetCoverage).
		Int64("space_version", view.Version()).
		Msg("optimization started")

	limit := t.config.Parallelism
	if limit == 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range points {
		g.Go(func() error {
			opts := t.config.Evaluation
			params := points[i]
			opts.Params = &params

			m, err := t.evaluator.EvaluateWith(gctx, view, opts)
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			trials[i] = Trial{
				Index:   i,
				Params:  params,
				Metrics: *m,
				Score:   Objective(m.MeanJaccard, m.Coverage, targetJaccard, targetCoverage),
			}

			logger.Debug().
				Int("trial", i).
				Float64("text_weight", params.Weights.Text).
				Float64("diversity", params.Diversity).
				Float64("score", trials[i].Score).
				Msg("trial complete")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("optimization failed")
		return nil, err
	}

	best := 0
	for i := 1; i < len(trials); i++ {
		if trials[i].Score < trials[best].Score {
			best = i
		}
	}

	res := &Result{
		Best:      trials[best].Params,
		BestIndex: best,
		Score:     trials[best].Score,
		Metrics:   trials[best].Metrics,
		Trials:    trials,
		RunID:     runID,
		Duration:  time.Since(start),
	}
	metrics.RecordTuning(res.Duration, len(trials), res.Score)

	logger.Info().
		Float64("text_weight", res.Best.Weights.Text).
		Float64("ordinal_weight", res.Best.Weights.Ordinal).
		Float64("diversity", res.Best.Diversity).
		Float64("score", res.Score).
		Dur("duration", res.Duration).
		Msg("optimization complete")

	return res, nil
}
