// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package recommend implements a content-based wine recommendation engine.
//
// # Architecture
//
// A request flows through three stages, each in its own package:
//
//   - features: fits the catalog into a text, categorical and ordinal space
//   - similarity: scores every record against the encoded query
//   - reranking: builds a candidate pool and picks a diverse subset
//
// The evaluation and tuning packages drive the engine offline.
//
// # Snapshots
//
// Fit captures the catalog at call time. The fitted space is immutable; a
// later Fit builds a new one and swaps it in atomically, so in-flight
// requests finish on the generation they started with. View pins one
// generation for callers that issue many requests, such as the evaluator.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	if err := engine.Fit(ctx, wines); err != nil {
//	    return err // *recommend.DataError for an unusable catalog
//	}
//
//	ids, err := engine.Recommend(ctx, recommend.Request{
//	    Query: wine.Query{Features: wine.Features{
//	        Name:   wine.Some("malbec"),
//	        Tannin: wine.Some(4.0),
//	    }},
//	    TopN: 5,
//	})
//
// # Parameters
//
// Params carries the fusion weights, the diversity factor and the selection
// formula of one request. Requests may override the configured defaults; the
// tuner evaluates one Params value per grid point without touching the
// shared space.
//
// # Thread Safety
//
// The engine is safe for concurrent use. Fits are serialized with a mutex;
// requests never lock.
package recommend
