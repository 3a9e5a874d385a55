// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package similarity scores every catalog record against an encoded query.
//
// Each active modality produces one vector over the catalog, min-max
// normalized to [0, 1]; the fused score is the weighted sum of the active
// vectors. A modality is active when its weight is positive and the query
// supplies at least one field of that modality:
//
//   - text: cosine similarity of TF-IDF rows
//   - ordinal: 1/(1+d) where d is the Euclidean distance between normalized
//     intensity vectors (fields the query omits use the catalog mean)
//   - categorical: fraction of supplied labels that match exactly; only when
//     Options.CategoricalComponent is set
//
// The categorical weight is part of Weights but, unless the component is
// enabled, no categorical vector is built and the weight has no effect on
// ranking. Categorical labels still reach the text modality because the type
// and country fields are also text fields.
package similarity

import (
	"github.com/tomtom215/sommelier/internal/recommend/features"
)

// Options toggles optional scoring behavior.
type Options struct {
	// CategoricalComponent adds an exact-match categorical vector weighted by
	// Weights.Categorical. Default: false.
	CategoricalComponent bool
}

// Result holds the fused score and the normalized component vectors. A nil
// component was not active.
type Result struct {
	Fused       []float64
	Text        []float64
	Ordinal     []float64
	Categorical []float64
}

// Empty reports whether no component was active.
//
//nolint:gocritic // hugeParam: Result is a small header struct
func (r Result) Empty() bool {
	return r.Fused == nil
}

// Score computes the similarity of every catalog record to the query.
// When no component is active the result is empty.
//
//nolint:gocritic // hugeParam: EncodedQuery is read only
func Score(space *features.Space, eq features.EncodedQuery, w features.Weights, opts Options) Result {
	var res Result
	n := space.Len()
	if n == 0 {
		return res
	}

	if w.Text > 0 && eq.HasText {
		res.Text = textComponent(space, eq)
	}
	if w.Ordinal > 0 && eq.HasOrdinal {
		res.Ordinal = ordinalComponent(space, eq)
	}
	if opts.CategoricalComponent && w.Categorical > 0 && eq.HasCategorical {
		res.Categorical = categoricalComponent(space, eq)
	}

	if res.Text == nil && res.Ordinal == nil && res.Categorical == nil {
		return res
	}

	res.Fused = make([]float64, n)
	addWeighted(res.Fused, res.Text, w.Text)
	addWeighted(res.Fused, res.Ordinal, w.Ordinal)
	addWeighted(res.Fused, res.Categorical, w.Categorical)
	return res
}

func addWeighted(dst, src []float64, weight float64) {
	if src == nil {
		return
	}
	for i, v := range src {
		dst[i] += weight * v
	}
}

//nolint:gocritic // hugeParam: EncodedQuery is read only
func textComponent(space *features.Space, eq features.EncodedQuery) []float64 {
	scores := make([]float64, space.Len())
	for i := range scores {
		scores[i] = space.TextCosine(eq.Text, i)
	}
	return MinMaxNormalize(scores)
}

//nolint:gocritic // hugeParam: EncodedQuery is read only
func ordinalComponent(space *features.Space, eq features.EncodedQuery) []float64 {
	scores := make([]float64, space.Len())
	for i := range scores {
		scores[i] = 1 / (1 + space.OrdinalDistance(eq.Ordinal, i))
	}
	return MinMaxNormalize(scores)
}

//nolint:gocritic // hugeParam: EncodedQuery is read only
func categoricalComponent(space *features.Space, eq features.EncodedQuery) []float64 {
	supplied := 0
	for _, code := range eq.Categorical {
		if code != features.AbsentCode {
			supplied++
		}
	}
	scores := make([]float64, space.Len())
	if supplied == 0 {
		return scores
	}
	for i := range scores {
		matches := 0
		for k, code := range eq.Categorical {
			if code >= 0 && space.CategoryCode(i, k) == code {
				matches++
			}
		}
		scores[i] = float64(matches) / float64(supplied)
	}
	return MinMaxNormalize(scores)
}

// MinMaxNormalize rescales scores in place to [0, 1] and returns them.
// A constant vector cannot be rescaled; its values are only clipped to
// [0, 1], so a uniform component keeps its level instead of collapsing.
func MinMaxNormalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return scores
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	rang := maxScore - minScore
	if rang == 0 {
		for i, s := range scores {
			scores[i] = clamp01(s)
		}
		return scores
	}

	for i, s := range scores {
		scores[i] = (s - minScore) / rang
	}
	return scores
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
