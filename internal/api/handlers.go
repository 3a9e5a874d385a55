// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package api

import (
	"fmt"
	"time"

	"github.com/tomtom215/sommelier/internal/cache"
	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/tuning"
)

// HandlerConfig holds request defaults and deadlines.
type HandlerConfig struct {
	// Version is reported by the health endpoint.
	Version string

	// Evaluation are the default options of evaluation requests.
	Evaluation evaluation.Options

	// TargetJaccard and TargetCoverage are the default optimize targets.
	TargetJaccard  float64
	TargetCoverage float64

	// RequestTimeout bounds recommendation requests.
	// Default: 10s.
	RequestTimeout time.Duration

	// AnalysisTimeout bounds evaluate and optimize requests.
	// Default: 5m.
	AnalysisTimeout time.Duration

	// CacheSize is the capacity of the recommendation response cache.
	// 0 disables it.
	CacheSize int

	// CacheTTL bounds the age of cached responses.
	// Default: 5m.
	CacheTTL time.Duration
}

// DefaultHandlerConfig returns the standard handler configuration.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		Version:         "dev",
		Evaluation:      evaluation.DefaultOptions(),
		TargetJaccard:   0.7,
		TargetCoverage:  0.5,
		RequestTimeout:  10 * time.Second,
		AnalysisTimeout: 5 * time.Minute,
	}
}

// Handler serves the API endpoints.
type Handler struct {
	engine    *recommend.Engine
	evaluator *evaluation.Evaluator
	tuner     *tuning.Tuner
	config    HandlerConfig
	startTime time.Time

	// cache is nil when disabled. Keys include the space version, so a
	// refit never serves stale recommendations.
	cache *cache.LRU[models.RecommendResponse]
}

// NewHandler creates the API handler. The evaluator and tuner must be built
// on the same engine.
//
//nolint:gocritic // hugeParam: cfg copied once at construction
func NewHandler(engine *recommend.Engine, evaluator *evaluation.Evaluator, tuner *tuning.Tuner, cfg HandlerConfig) (*Handler, error) {
	if engine == nil || evaluator == nil || tuner == nil {
		return nil, fmt.Errorf("engine, evaluator and tuner are required")
	}
	if err := cfg.Evaluation.Validate(); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 5 * time.Minute
	}

	h := &Handler{
		engine:    engine,
		evaluator: evaluator,
		tuner:     tuner,
		config:    cfg,
		startTime: time.Now(),
	}
	if cfg.CacheSize > 0 {
		h.cache = cache.NewLRU[models.RecommendResponse](cfg.CacheSize, cfg.CacheTTL)
	}
	return h, nil
}
