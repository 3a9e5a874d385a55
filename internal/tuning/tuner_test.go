// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package tuning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/wine"
)

func testCatalog(n int) []wine.Wine {
	types := []string{"Tinto", "Branco", "Rosé"}
	grapes := []string{"Malbec", "Chardonnay", "Grenache", "Merlot"}
	countries := []string{"Argentina", "Chile", "Brasil"}
	out := make([]wine.Wine, n)
	for i := range out {
		out[i] = wine.Wine{
			ID: fmt.Sprintf("t%02d", i),
			Features: wine.Features{
				Name:           wine.Some(fmt.Sprintf("%s safra %d", grapes[i%4], i)),
				HarmonizesWith: wine.Some([]string{"Carnes", "Peixes, Saladas", "Queijos"}[i%3]),
				WineType:       wine.Some(types[i%3]),
				Grapes:         wine.Some(grapes[i%4]),
				Country:        wine.Some(countries[i%3]),
				Fruit:          wine.Some(float64(1 + i%5)),
				Tannin:         wine.Some(float64(1 + (i/4)%5)),
			},
		}
	}
	return out
}

func newTestTuner(t *testing.T, cfg Config) (*Tuner, *recommend.Engine) {
	t.Helper()
	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Fit(context.Background(), testCatalog(30)); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	ev, err := evaluation.NewEvaluator(engine, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	tuner, err := NewTuner(engine, ev, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTuner() error = %v", err)
	}
	return tuner, engine
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Grid = Grid{
		TextWeights: []float64{0.2, 0.5},
		Budget:      0.8,
		Diversities: []float64{0, 0.5, 1},
	}
	cfg.Evaluation.Samples = 6
	cfg.Evaluation.HoldoutFraction = 0.5
	return cfg
}

func TestGrid_Points(t *testing.T) {
	t.Parallel()

	g := Grid{TextWeights: []float64{0.2, 0.6}, Budget: 0.8, Diversities: []float64{0, 1}}
	base := recommend.DefaultConfig().DefaultParams()
	points := g.Points(base)

	if len(points) != 4 {
		t.Fatalf("len(Points) = %d, want 4", len(points))
	}
	want := []struct{ text, ordinal, diversity float64 }{
		{0.2, 0.6, 0}, {0.2, 0.6, 1}, {0.6, 0.2, 0}, {0.6, 0.2, 1},
	}
	for i, w := range want {
		p := points[i]
		if math.Abs(p.Weights.Text-w.text) > 1e-12 || math.Abs(p.Weights.Ordinal-w.ordinal) > 1e-12 || p.Diversity != w.diversity {
			t.Errorf("point %d = %+v, want %+v", i, p, w)
		}
		if p.Weights.Categorical != base.Weights.Categorical || p.Formula != base.Formula {
			t.Errorf("point %d changed fixed fields: %+v", i, p)
		}
	}
}

func TestGrid_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		grid    Grid
		wantErr bool
	}{
		{"default", DefaultGrid(), false},
		{"empty text weights", Grid{Budget: 0.8, Diversities: []float64{0}}, true},
		{"text above budget", Grid{TextWeights: []float64{0.9}, Budget: 0.8, Diversities: []float64{0}}, true},
		{"negative text", Grid{TextWeights: []float64{-0.1}, Budget: 0.8, Diversities: []float64{0}}, true},
		{"diversity above one", Grid{TextWeights: []float64{0.4}, Budget: 0.8, Diversities: []float64{1.5}}, true},
		{"negative budget", Grid{TextWeights: []float64{0}, Budget: -1, Diversities: []float64{0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.grid.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("Validate() error = %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestObjective(t *testing.T) {
	t.Parallel()

	if got := Objective(0.5, 0.3, 0.6, 0.1); math.Abs(got-0.3) > 1e-12 {
		t.Errorf("Objective() = %v, want 0.3", got)
	}
	if got := Objective(0.6, 0.1, 0.6, 0.1); got != 0 {
		t.Errorf("Objective() = %v, want 0", got)
	}
}

func TestOptimize_Exhaustive(t *testing.T) {
	t.Parallel()

	tuner, _ := newTestTuner(t, smallConfig())
	res, err := tuner.Optimize(context.Background(), 0.5, 0.3)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	if len(res.Trials) != 6 {
		t.Fatalf("len(Trials) = %d, want 6", len(res.Trials))
	}
	minScore := math.Inf(1)
	for i, trial := range res.Trials {
		if trial.Index != i {
			t.Errorf("Trials[%d].Index = %d", i, trial.Index)
		}
		want := Objective(trial.Metrics.MeanJaccard, trial.Metrics.Coverage, 0.5, 0.3)
		if math.Abs(trial.Score-want) > 1e-12 {
			t.Errorf("Trials[%d].Score = %v, want %v", i, trial.Score, want)
		}
		if trial.Score < minScore {
			minScore = trial.Score
		}
	}

	if res.Score != minScore {
		t.Errorf("Score = %v, want the minimum %v", res.Score, minScore)
	}
	for i := 0; i < res.BestIndex; i++ {
		if res.Trials[i].Score <= res.Score {
			t.Errorf("trial %d scores %v, earlier tie or better than best %d", i, res.Trials[i].Score, res.BestIndex)
		}
	}
	if !reflect.DeepEqual(res.Best, res.Trials[res.BestIndex].Params) {
		t.Errorf("Best = %+v, want Trials[%d].Params", res.Best, res.BestIndex)
	}
}

func TestOptimize_DoesNotMutateEngine(t *testing.T) {
	t.Parallel()

	tuner, engine := newTestTuner(t, smallConfig())
	before := engine.DefaultParams()
	status := engine.Status()

	req := recommend.Request{Query: wine.Query{Features: wine.Features{Name: wine.Some("malbec"), Fruit: wine.Some(2.0)}}}
	want, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if _, err := tuner.Optimize(context.Background(), 0.4, 0.5); err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}

	if after := engine.DefaultParams(); after != before {
		t.Errorf("DefaultParams() = %+v, want %+v", after, before)
	}
	if got := engine.Status().Version; got != status.Version {
		t.Errorf("Version = %d, want %d", got, status.Version)
	}
	got, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend() after tuning = %v, want %v", got, want)
	}
}

func TestOptimize_IndependentOfParallelism(t *testing.T) {
	t.Parallel()

	serialCfg := smallConfig()
	serialCfg.Parallelism = 1
	parallelCfg := smallConfig()
	parallelCfg.Parallelism = 4

	serial, _ := newTestTuner(t, serialCfg)
	parallel, _ := newTestTuner(t, parallelCfg)

	a, err := serial.Optimize(context.Background(), 0.6, 0.2)
	if err != nil {
		t.Fatalf("serial Optimize() error = %v", err)
	}
	b, err := parallel.Optimize(context.Background(), 0.6, 0.2)
	if err != nil {
		t.Fatalf("parallel Optimize() error = %v", err)
	}

	if a.BestIndex != b.BestIndex || a.Score != b.Score {
		t.Errorf("serial best %d (%v), parallel best %d (%v)", a.BestIndex, a.Score, b.BestIndex, b.Score)
	}
	for i := range a.Trials {
		if a.Trials[i].Score != b.Trials[i].Score {
			t.Errorf("trial %d: serial %v, parallel %v", i, a.Trials[i].Score, b.Trials[i].Score)
		}
	}
}

func TestOptimize_TiesKeepGridOrder(t *testing.T) {
	t.Parallel()

	cfg := smallConfig()
	cfg.Grid = Grid{TextWeights: []float64{0.4, 0.4, 0.4}, Budget: 0.8, Diversities: []float64{0}}
	tuner, _ := newTestTuner(t, cfg)

	res, err := tuner.Optimize(context.Background(), 0.5, 0.5)
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if res.BestIndex != 0 {
		t.Errorf("BestIndex = %d, want 0 for identical trials", res.BestIndex)
	}
}

func TestOptimize_Errors(t *testing.T) {
	t.Parallel()

	engine, err := recommend.NewEngine(recommend.DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	ev, err := evaluation.NewEvaluator(engine, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	tuner, err := NewTuner(engine, ev, smallConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewTuner() error = %v", err)
	}
	if _, err := tuner.Optimize(context.Background(), 0.5, 0.5); !errors.Is(err, recommend.ErrNotFitted) {
		t.Errorf("Optimize() error = %v, want ErrNotFitted", err)
	}

	fitted, _ := newTestTuner(t, smallConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := fitted.Optimize(ctx, 0.5, 0.5); !errors.Is(err, context.Canceled) {
		t.Errorf("Optimize() error = %v, want context.Canceled", err)
	}

	bad := smallConfig()
	bad.Grid.TextWeights = []float64{2}
	if _, err := NewTuner(engine, ev, bad, zerolog.Nop()); !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("NewTuner() error = %v, want ErrInvalidGrid", err)
	}
}
