// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package reranking

import (
	"fmt"
	"math/rand"
	"sort"
)

// PoolFactor is the candidate pool size relative to topN.
const PoolFactor = 5

// maxRerankSize bounds the pool so a huge topN cannot allocate without limit.
const maxRerankSize = 10000

// Formula selects the greedy scoring function.
type Formula int

const (
	// FormulaObserved scores (1.2-lambda)*sim - (0.8+lambda)*maxSim.
	FormulaObserved Formula = iota
	// FormulaCanonical scores (1-lambda)*sim - lambda*maxSim.
	FormulaCanonical
)

// String implements fmt.Stringer.
func (f Formula) String() string {
	switch f {
	case FormulaObserved:
		return "observed"
	case FormulaCanonical:
		return "canonical"
	default:
		return fmt.Sprintf("formula(%d)", int(f))
	}
}

// ParseFormula resolves a configuration value.
func ParseFormula(s string) (Formula, error) {
	switch s {
	case "", "observed":
		return FormulaObserved, nil
	case "canonical":
		return FormulaCanonical, nil
	default:
		return FormulaObserved, fmt.Errorf("unknown diversification formula %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (f Formula) MarshalText() ([]byte, error) {
	switch f {
	case FormulaObserved, FormulaCanonical:
		return []byte(f.String()), nil
	default:
		return nil, fmt.Errorf("unknown diversification formula %d", int(f))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *Formula) UnmarshalText(text []byte) error {
	parsed, err := ParseFormula(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Candidate is one catalog row with its fused similarity.
type Candidate struct {
	Row   int
	Score float64
}

// Similarity reports pairwise text similarity between catalog rows.
// *features.Space satisfies it.
type Similarity interface {
	TextSimilarity(i, j int) float64
}

// Pool returns the best min(PoolFactor*topN, len(scores)) rows in descending
// score order. The sort is stable, so equal scores keep row order.
func Pool(scores []float64, topN int) []Candidate {
	if len(scores) == 0 || topN <= 0 {
		return nil
	}

	size := PoolFactor * topN
	if size > maxRerankSize || size <= 0 {
		size = maxRerankSize
	}
	if size > len(scores) {
		size = len(scores)
	}

	all := make([]Candidate, len(scores))
	for i, s := range scores {
		all[i] = Candidate{Row: i, Score: s}
	}
	sort.SliceStable(all, func(a, b int) bool {
		return all[a].Score > all[b].Score
	})
	return all[:size]
}

// Diversifier selects a diverse subset of a candidate pool.
type Diversifier struct {
	formula Formula
}

// NewDiversifier creates a Diversifier using the given formula.
func NewDiversifier(formula Formula) *Diversifier {
	return &Diversifier{formula: formula}
}

// Name returns the selector identifier.
func (d *Diversifier) Name() string {
	return "diversify-" + d.formula.String()
}

// Formula returns the scoring function in use.
func (d *Diversifier) Formula() Formula {
	return d.formula
}

// Select returns at most topN rows taken from pool, without duplicates.
//
// With diversity <= 0 the first topN pool rows are returned. Otherwise the
// greedy loop runs at most topN iterations. rng may be nil.
func (d *Diversifier) Select(pool []Candidate, topN int, diversity float64, sim Similarity, rng *rand.Rand) []int {
	if len(pool) == 0 || topN <= 0 {
		return nil
	}
	if topN > len(pool) {
		topN = len(pool)
	}

	if diversity <= 0 || sim == nil {
		rows := make([]int, topN)
		for i := range rows {
			rows[i] = pool[i].Row
		}
		return rows
	}

	lambda := diversity
	if lambda > 1 {
		lambda = 1
	}
	relevance, redundancy := d.coefficients(lambda)

	selected := make([]int, 0, topN)
	selected = append(selected, pool[0].Row)
	taken := make([]bool, len(pool))
	taken[0] = true

	// maxSim[i] tracks the highest text similarity between pool[i] and any
	// selected row, updated incrementally after each pick.
	maxSim := make([]float64, len(pool))
	for i := 1; i < len(pool); i++ {
		maxSim[i] = sim.TextSimilarity(pool[i].Row, pool[0].Row)
	}

	for len(selected) < topN {
		bestIdx := -1
		bestScore := 0.0
		ties := 0

		for i := 1; i < len(pool); i++ {
			if taken[i] {
				continue
			}
			score := relevance*pool[i].Score - redundancy*maxSim[i]
			switch {
			case bestIdx < 0 || score > bestScore:
				bestIdx, bestScore, ties = i, score, 1
			case score == bestScore && rng != nil:
				ties++
				if rng.Intn(ties) == 0 {
					bestIdx = i
				}
			}
		}

		if bestIdx < 0 {
			break
		}

		taken[bestIdx] = true
		row := pool[bestIdx].Row
		selected = append(selected, row)
		for i := 1; i < len(pool); i++ {
			if taken[i] {
				continue
			}
			if s := sim.TextSimilarity(pool[i].Row, row); s > maxSim[i] {
				maxSim[i] = s
			}
		}
	}

	return selected
}

func (d *Diversifier) coefficients(lambda float64) (relevance, redundancy float64) {
	if d.formula == FormulaCanonical {
		return 1 - lambda, lambda
	}
	return 1.2 - lambda, 0.8 + lambda
}
