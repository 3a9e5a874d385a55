// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/recommend/features"
	"github.com/tomtom215/sommelier/internal/recommend/reranking"
	"github.com/tomtom215/sommelier/internal/recommend/similarity"
	"github.com/tomtom215/sommelier/internal/wine"
)

var (
	grapes    = []string{"Malbec", "Merlot", "Cabernet Sauvignon", "Chardonnay", "Sauvignon Blanc", "Pinot Noir"}
	wineTypes = []string{"Tinto", "Tinto", "Tinto", "Branco", "Branco", "Tinto"}
	countries = []string{"Argentina", "Chile", "Brasil", "Portugal"}
	pairings  = []string{"Carnes vermelhas, Massas", "Peixes, Saladas", "Queijos, Aves", "Massas, Queijos"}
)

// syntheticCatalog builds n deterministic records with overlapping labels.
func syntheticCatalog(n int) []wine.Wine {
	out := make([]wine.Wine, n)
	for i := 0; i < n; i++ {
		g := i % len(grapes)
		out[i] = wine.Wine{
			ID: fmt.Sprintf("w%03d", i),
			Features: wine.Features{
				Name:             wine.Some(fmt.Sprintf("%s Reserva %d", grapes[g], i)),
				TasteDescription: wine.Some(fmt.Sprintf("notas de fruta %d e madeira", i%5)),
				HarmonizesWith:   wine.Some(pairings[i%len(pairings)]),
				WineType:         wine.Some(wineTypes[g]),
				Grapes:           wine.Some(grapes[g]),
				Country:          wine.Some(countries[i%len(countries)]),
				Fruit:            wine.Some(float64(1 + i%5)),
				Sugar:            wine.Some(float64(1 + (i/2)%5)),
				Acidity:          wine.Some(float64(1 + (i/3)%5)),
				Tannin:           wine.Some(float64(1 + (i/5)%5)),
			},
		}
	}
	return out
}

func newFittedEngine(t *testing.T, catalog []wine.Wine) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Fit(context.Background(), catalog); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return engine
}

func float(v float64) *float64 { return &v }

func TestNewEngine_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Diversity = 2
	if _, err := NewEngine(cfg, zerolog.Nop()); err == nil {
		t.Error("NewEngine() should reject diversity > 1")
	}

	engine, err := NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine(nil) error = %v", err)
	}
	if engine.GetConfig().Limits.DefaultTopN != 5 {
		t.Errorf("DefaultTopN = %d, want 5", engine.GetConfig().Limits.DefaultTopN)
	}
}

func TestEngine_NotFitted(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	_, err = engine.Recommend(context.Background(), Request{Query: wine.Query{Features: wine.Features{Name: wine.Some("malbec")}}})
	if !errors.Is(err, ErrNotFitted) {
		t.Errorf("Recommend() error = %v, want ErrNotFitted", err)
	}
	if _, err := engine.Artifact(); !errors.Is(err, ErrNotFitted) {
		t.Errorf("Artifact() error = %v, want ErrNotFitted", err)
	}
	if engine.Status().Fitted {
		t.Error("Status().Fitted = true before any fit")
	}
}

func TestEngine_FitDataErrors(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	tests := []struct {
		name    string
		catalog []wine.Wine
		want    error
	}{
		{"empty catalog", nil, features.ErrEmptyCatalog},
		{"no usable field", []wine.Wine{{ID: "a"}, {ID: "b"}}, features.ErrNoUsableField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.Fit(context.Background(), tt.catalog)
			var dataErr *DataError
			if !errors.As(err, &dataErr) {
				t.Fatalf("Fit() error = %v, want *DataError", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Fit() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEngine_FitDedupesIDs(t *testing.T) {
	t.Parallel()

	catalog := syntheticCatalog(4)
	dup := catalog[1]
	dup.Name = wine.Some("shadowed duplicate")
	catalog = append(catalog, dup)

	engine := newFittedEngine(t, catalog)
	if got := engine.Status().Records; got != 4 {
		t.Errorf("Records = %d, want 4", got)
	}
	w, ok := engine.Wine(catalog[1].ID)
	if !ok {
		t.Fatalf("Wine(%s) not found", catalog[1].ID)
	}
	if name, _ := w.Name.Get(); name == "shadowed duplicate" {
		t.Error("duplicate replaced the first occurrence")
	}
}

func TestEngine_RecommendReturnsDistinctValidIDs(t *testing.T) {
	t.Parallel()

	catalog := syntheticCatalog(40)
	engine := newFittedEngine(t, catalog)
	valid := make(map[string]bool, len(catalog))
	for _, w := range catalog {
		valid[w.ID] = true
	}

	queries := []wine.Query{
		{Features: wine.Features{Name: wine.Some("malbec")}},
		{Features: wine.Features{Tannin: wine.Some(5.0)}},
		{Features: wine.Features{Grapes: wine.Some("Chardonnay"), Acidity: wine.Some(4.0)}},
		wine.QueryFrom(catalog[7].Features),
	}

	for qi, q := range queries {
		for _, topN := range []int{1, 3, 5, 10} {
			for _, diversity := range []float64{0, 0.3, 1} {
				ids, err := engine.Recommend(context.Background(), Request{Query: q, TopN: topN, Diversity: float(diversity)})
				if err != nil {
					t.Fatalf("query %d: Recommend() error = %v", qi, err)
				}
				if len(ids) == 0 || len(ids) > topN {
					t.Errorf("query %d topN=%d: len = %d", qi, topN, len(ids))
				}
				seen := map[string]bool{}
				for _, id := range ids {
					if !valid[id] {
						t.Errorf("query %d: unknown id %q", qi, id)
					}
					if seen[id] {
						t.Errorf("query %d: duplicate id %q", qi, id)
					}
					seen[id] = true
				}
			}
		}
	}
}

func TestEngine_ZeroDiversityIsDeterministic(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(30))
	req := Request{
		Query:     wine.Query{Features: wine.Features{Name: wine.Some("pinot noir reserva"), Fruit: wine.Some(3.0)}},
		TopN:      6,
		Diversity: float(0),
	}

	first, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := engine.Recommend(context.Background(), req)
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("call %d = %v, want %v", i, again, first)
		}
	}
}

func TestEngine_OutputIsSubsetOfPool(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(60))
	view, err := engine.View()
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}

	q := wine.Query{Features: wine.Features{Name: wine.Some("cabernet"), HarmonizesWith: wine.Some("Queijos")}}
	const topN = 4

	space := view.Space()
	scores := similarity.Score(space, space.Encode(q), features.DefaultWeights(), similarity.Options{})
	pool := map[string]bool{}
	for _, c := range reranking.Pool(scores.Fused, topN) {
		pool[space.ID(c.Row)] = true
	}
	if len(pool) != 5*topN {
		t.Fatalf("pool size = %d, want %d", len(pool), 5*topN)
	}

	for _, diversity := range []float64{0.1, 0.5, 1} {
		ids, err := view.Recommend(context.Background(), Request{Query: q, TopN: topN, Diversity: float(diversity)})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(ids) != topN {
			t.Errorf("diversity %v: len = %d, want %d", diversity, len(ids), topN)
		}
		for _, id := range ids {
			if !pool[id] {
				t.Errorf("diversity %v: %s not in the candidate pool", diversity, id)
			}
		}
	}
}

func TestEngine_TopNLargerThanCatalog(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(3))
	for _, diversity := range []float64{0, 1} {
		ids, err := engine.Recommend(context.Background(), Request{
			Query:     wine.Query{Features: wine.Features{Name: wine.Some("malbec")}},
			TopN:      50,
			Diversity: float(diversity),
		})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if len(ids) != 3 {
			t.Errorf("diversity %v: len = %d, want 3", diversity, len(ids))
		}
	}
}

func TestEngine_EmptyQuery(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(10))
	before := engine.GetMetrics().EmptyCount

	ids, err := engine.Recommend(context.Background(), Request{Query: wine.Query{}})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Recommend(empty) = %v, want empty", ids)
	}
	if got := engine.GetMetrics().EmptyCount - before; got != 1 {
		t.Errorf("EmptyCount delta = %d, want 1", got)
	}
}

func TestEngine_NoActiveModality(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(10))

	// Text-only query with the text weight switched off.
	params := engine.DefaultParams()
	params.Weights.Text = 0
	ids, err := engine.Recommend(context.Background(), Request{
		Query:  wine.Query{Features: wine.Features{Name: wine.Some("malbec")}},
		Params: &params,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("Recommend() = %v, want empty", ids)
	}
}

func TestEngine_IdenticalOrdinalsRankByText(t *testing.T) {
	t.Parallel()

	mk := func(id, name string) wine.Wine {
		return wine.Wine{ID: id, Features: wine.Features{
			Name:  wine.Some(name),
			Fruit: wine.Some(3.0), Sugar: wine.Some(3.0), Acidity: wine.Some(3.0), Tannin: wine.Some(3.0),
		}}
	}
	engine := newFittedEngine(t, []wine.Wine{
		mk("A", "espumante brut nacional"),
		mk("B", "malbec reserva mendoza"),
		mk("C", "malbec mendoza"),
	})

	ids, err := engine.Recommend(context.Background(), Request{
		Query: wine.Query{Features: wine.Features{
			Name: wine.Some("malbec mendoza"), Fruit: wine.Some(3.0), Tannin: wine.Some(3.0),
		}},
		TopN:      3,
		Diversity: float(0),
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"C", "B", "A"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Recommend() = %v, want %v", ids, want)
	}
}

func TestEngine_InvalidRequest(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(5))
	q := wine.Query{Features: wine.Features{Name: wine.Some("malbec")}}

	if _, err := engine.Recommend(context.Background(), Request{Query: q, TopN: -1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("TopN=-1 error = %v, want ErrInvalidRequest", err)
	}

	bad := engine.DefaultParams()
	bad.Weights.Ordinal = -1
	if _, err := engine.Recommend(context.Background(), Request{Query: q, Params: &bad}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("negative weight error = %v, want ErrInvalidRequest", err)
	}
}

func TestEngine_DefaultsAndClamping(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Limits.MaxTopN = 8
	engine, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Fit(context.Background(), syntheticCatalog(30)); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	q := wine.Query{Features: wine.Features{Name: wine.Some("merlot")}}
	resp, err := engine.RecommendDetailed(context.Background(), Request{Query: q})
	if err != nil {
		t.Fatalf("RecommendDetailed() error = %v", err)
	}
	if resp.Metadata.TopN != 5 || len(resp.Items) != 5 {
		t.Errorf("default top_n = %d (%d items), want 5", resp.Metadata.TopN, len(resp.Items))
	}
	if resp.Metadata.Diversity != 0.5 {
		t.Errorf("default diversity = %v, want 0.5", resp.Metadata.Diversity)
	}
	if !reflect.DeepEqual(resp.Metadata.Components, []string{"text"}) {
		t.Errorf("Components = %v, want [text]", resp.Metadata.Components)
	}

	resp, err = engine.RecommendDetailed(context.Background(), Request{Query: q, TopN: 500})
	if err != nil {
		t.Fatalf("RecommendDetailed() error = %v", err)
	}
	if resp.Metadata.TopN != 8 {
		t.Errorf("clamped top_n = %d, want 8", resp.Metadata.TopN)
	}
}

func TestEngine_SeededTieBreakIsReproducible(t *testing.T) {
	t.Parallel()

	// Every record is identical apart from its ID, so all scores tie.
	catalog := make([]wine.Wine, 12)
	for i := range catalog {
		catalog[i] = wine.Wine{ID: fmt.Sprintf("t%02d", i), Features: wine.Features{Name: wine.Some("vinho tinto")}}
	}
	engine := newFittedEngine(t, catalog)
	seed := int64(1234)
	req := Request{
		Query:     wine.Query{Features: wine.Features{Name: wine.Some("vinho tinto")}},
		TopN:      3,
		Diversity: float(0.5),
		Seed:      &seed,
	}

	first, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	second, err := engine.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("seeded calls differ: %v vs %v", first, second)
	}
	if len(first) != 3 {
		t.Errorf("len = %d, want 3", len(first))
	}
}

func TestEngine_RefitSwapsSnapshot(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(5))
	view, err := engine.View()
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}

	if err := engine.Fit(context.Background(), syntheticCatalog(9)); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	if got := len(view.Catalog()); got != 5 {
		t.Errorf("pinned view catalog = %d, want 5", got)
	}
	status := engine.Status()
	if status.Records != 9 || status.Version != view.Version()+1 {
		t.Errorf("Status() = %+v, want 9 records at version %d", status, view.Version()+1)
	}

	// A failed refit keeps the active snapshot.
	if err := engine.Fit(context.Background(), nil); err == nil {
		t.Fatal("Fit(nil) should fail")
	}
	if got := engine.Status().Records; got != 9 {
		t.Errorf("Records after failed fit = %d, want 9", got)
	}
}

func TestEngine_ArtifactRoundTrip(t *testing.T) {
	t.Parallel()

	source := newFittedEngine(t, syntheticCatalog(20))
	artifact, err := source.Artifact()
	if err != nil {
		t.Fatalf("Artifact() error = %v", err)
	}

	target, err := NewEngine(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := target.LoadArtifact(artifact); err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}
	if target.Status().Source != SourceArtifact {
		t.Errorf("Source = %q, want %q", target.Status().Source, SourceArtifact)
	}

	req := Request{Query: wine.Query{Features: wine.Features{Name: wine.Some("chardonnay"), Acidity: wine.Some(2.0)}}, TopN: 5}
	want, err := source.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("source Recommend() error = %v", err)
	}
	got, err := target.Recommend(context.Background(), req)
	if err != nil {
		t.Fatalf("target Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("loaded engine = %v, want %v", got, want)
	}
}

func TestEngine_CanceledContext(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.Recommend(ctx, Request{Query: wine.Query{Features: wine.Features{Name: wine.Some("malbec")}}}); !errors.Is(err, context.Canceled) {
		t.Errorf("Recommend() error = %v, want context.Canceled", err)
	}
	if err := engine.Fit(ctx, syntheticCatalog(3)); !errors.Is(err, context.Canceled) {
		t.Errorf("Fit() error = %v, want context.Canceled", err)
	}
}

func TestEngine_ConcurrentRecommendAndFit(t *testing.T) {
	t.Parallel()

	engine := newFittedEngine(t, syntheticCatalog(20))
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := engine.Recommend(context.Background(), Request{
					Query: wine.Query{Features: wine.Features{Name: wine.Some(grapes[(n+j)%len(grapes)])}},
					TopN:  3,
				})
				if err != nil {
					t.Errorf("Recommend() error = %v", err)
					return
				}
			}
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 5; j++ {
			if err := engine.Fit(context.Background(), syntheticCatalog(20+j)); err != nil && !errors.Is(err, ErrFitInProgress) {
				t.Errorf("Fit() error = %v", err)
			}
		}
	}()

	wg.Wait()
}
