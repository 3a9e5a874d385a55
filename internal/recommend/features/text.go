// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package features

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches runs of two or more letters, digits or underscores.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// SparseVector is a sparse row of term weights. Indices are strictly
// ascending.
type SparseVector struct {
	Indices []int32
	Values  []float64
}

// Len returns the number of non-zero entries.
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Dot returns the inner product of two sparse vectors.
func (v SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean norm.
func (v SparseVector) Norm() float64 {
	var sum float64
	for _, x := range v.Values {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of two sparse vectors, or 0 when
// either is the zero vector.
func Cosine(a, b SparseVector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return a.Dot(b) / (na * nb)
}

func (v SparseVector) clone() SparseVector {
	return SparseVector{
		Indices: append([]int32(nil), v.Indices...),
		Values:  append([]float64(nil), v.Values...),
	}
}

// textModel is a fitted TF-IDF vectorizer.
type textModel struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
	ngramMax   int
	stopwords  map[string]struct{}
}

// fitTextModel learns the vocabulary and IDF weights of docs and returns the
// model together with the transformed rows.
//
// IDF is smoothed: idf(t) = ln((1+n)/(1+df(t))) + 1.
func fitTextModel(docs []string, cfg TextConfig) (*textModel, []SparseVector) {
	m := &textModel{
		ngramMax:  cfg.NGramMax,
		stopwords: make(map[string]struct{}, len(cfg.Stopwords)),
	}
	if m.ngramMax < 1 {
		m.ngramMax = 1
	}
	for _, w := range cfg.Stopwords {
		m.stopwords[strings.ToLower(w)] = struct{}{}
	}

	tokenized := make([][]string, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		terms := m.analyze(doc)
		tokenized[i] = terms
		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(docs))
	maxDF := cfg.MaxDFRatio * n
	if cfg.MaxDFRatio <= 0 {
		maxDF = n
	}
	minDF := cfg.MinDF
	if minDF < 1 {
		minDF = 1
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < minDF || float64(count) > maxDF {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m.terms = terms
	m.vocabulary = make(map[string]int, len(terms))
	m.idf = make([]float64, len(terms))
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}

	rows := make([]SparseVector, len(docs))
	for i, doc := range tokenized {
		rows[i] = m.vectorize(doc)
	}
	return m, rows
}

// transform turns a raw document into an L2-normalized TF-IDF row.
// Terms outside the vocabulary are ignored.
func (m *textModel) transform(doc string) SparseVector {
	return m.vectorize(m.analyze(doc))
}

func (m *textModel) vectorize(terms []string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range terms {
		if idx, ok := m.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	v := SparseVector{
		Indices: make([]int32, len(indices)),
		Values:  make([]float64, len(indices)),
	}
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * m.idf[idx]
		v.Indices[i] = int32(idx) //nolint:gosec // vocabulary size is far below MaxInt32
		v.Values[i] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v.Values {
			v.Values[i] /= norm
		}
	}
	return v
}

// analyze lowercases, tokenizes, drops stopwords and appends n-grams.
func (m *textModel) analyze(doc string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(doc), -1)
	if len(m.stopwords) > 0 {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, stop := m.stopwords[tok]; !stop {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}
	if m.ngramMax < 2 || len(tokens) < 2 {
		return tokens
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// restoreTextModel rebuilds a model from persisted state.
func restoreTextModel(terms []string, idf []float64, cfg TextConfig) *textModel {
	m := &textModel{
		terms:      append([]string(nil), terms...),
		idf:        append([]float64(nil), idf...),
		vocabulary: make(map[string]int, len(terms)),
		ngramMax:   cfg.NGramMax,
		stopwords:  make(map[string]struct{}, len(cfg.Stopwords)),
	}
	if m.ngramMax < 1 {
		m.ngramMax = 1
	}
	for i, term := range terms {
		m.vocabulary[term] = i
	}
	for _, w := range cfg.Stopwords {
		m.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return m
}
