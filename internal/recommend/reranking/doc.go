// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package reranking turns a fused similarity vector into a short, mutually
// diverse list of catalog rows.
//
// # Overview
//
// Selection runs in two steps:
//
//	fused scores -> candidate pool -> greedy diversification -> rows
//
// The pool is the best min(5*topN, N) rows by fused score, ordered with a
// stable sort so equal scores keep catalog order. With diversity <= 0 the
// first topN pool entries are returned unchanged.
//
// # Greedy Selection
//
// The pool head is always selected first. Each following step picks the
// remaining candidate maximizing
//
//	(1.2 - lambda) * sim(c) - (0.8 + lambda) * max textSim(c, s)
//
// where s ranges over the rows already selected and lambda is the diversity
// factor clamped to (0, 1]. This is FormulaObserved, the default.
//
// FormulaCanonical uses the Carbonell & Goldstein form with the relevance
// weight set to 1 - lambda:
//
//	(1 - lambda) * sim(c) - lambda * max textSim(c, s)
//
// The two forms do not rank candidates identically; the observed one keeps a
// relevance term even at lambda = 1 and penalizes redundancy harder at every
// lambda.
//
// # Ties
//
// Exact score ties keep pool order. When a *rand.Rand is passed to Select
// ties are broken by it instead, so a fixed seed reproduces the same list.
//
// # Thread Safety
//
// A Diversifier holds no mutable state and may be shared. A *rand.Rand is not
// safe for concurrent use; callers pass one per request.
package reranking
