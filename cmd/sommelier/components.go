// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/catalog"
	"github.com/tomtom215/sommelier/internal/config"
	"github.com/tomtom215/sommelier/internal/evaluation"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/recommend/storage"
	"github.com/tomtom215/sommelier/internal/tuning"
)

// components holds everything a command may need, built from one config.
type components struct {
	cfg       *config.Config
	engine    *recommend.Engine
	evaluator *evaluation.Evaluator
	tuner     *tuning.Tuner
	store     *storage.Store
	provider  catalog.Provider
	logger    zerolog.Logger

	closers []func() error
}

// buildComponents wires the engine, evaluator, tuner, artifact store and
// catalog provider. The engine starts unfitted.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func buildComponents(cfg *config.Config, logger zerolog.Logger) (*components, error) {
	engineCfg, err := cfg.Recommend.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}
	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, err
	}

	weights, err := cfg.Evaluation.JaccardWeights()
	if err != nil {
		return nil, fmt.Errorf("evaluation config: %w", err)
	}
	evaluator, err := evaluation.NewEvaluator(engine, weights, logger)
	if err != nil {
		return nil, err
	}

	tuner, err := tuning.NewTuner(engine, evaluator, cfg.TunerConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("tuning config: %w", err)
	}

	store, err := storage.NewStore(cfg.Storage.Dir)
	if err != nil {
		return nil, err
	}

	c := &components{
		cfg:       cfg,
		engine:    engine,
		evaluator: evaluator,
		tuner:     tuner,
		store:     store,
		logger:    logger,
	}

	switch cfg.Catalog.Source {
	case config.CatalogSourceBadger:
		badgerStore, err := catalog.OpenBadgerStore(catalog.BadgerConfig{
			Path:       cfg.Catalog.BadgerPath,
			SyncWrites: cfg.Catalog.SyncWrites,
		}, logger)
		if err != nil {
			return nil, err
		}
		c.provider = badgerStore
		c.closers = append(c.closers, badgerStore.Close)
	default:
		c.provider = catalog.NewFileProvider(cfg.Catalog.Path, logger)
	}

	return c, nil
}

// Close releases the catalog provider.
func (c *components) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// fitFromCatalog snapshots the provider and fits the engine.
func (c *components) fitFromCatalog(ctx context.Context) error {
	wines, err := c.provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read catalog from %s: %w", c.provider.Name(), err)
	}
	if len(wines) == 0 {
		return fmt.Errorf("catalog %s is empty", c.provider.Name())
	}
	return c.engine.Fit(ctx, wines)
}

// loadLatest restores the newest stored artifact. It reports false when the
// store holds none.
func (c *components) loadLatest(ctx context.Context) (bool, error) {
	version, ok := c.store.LatestVersion(c.cfg.Storage.Name)
	if !ok {
		return false, nil
	}
	artifact, meta, err := c.store.Load(ctx, c.cfg.Storage.Name, version)
	if err != nil {
		return false, err
	}
	if err := c.engine.LoadArtifact(artifact); err != nil {
		return false, err
	}
	c.logger.Info().
		Str("artifact", meta.Name).
		Int("version", meta.Version).
		Int("records", meta.Records).
		Msg("artifact loaded")
	return true, nil
}

// ensureFitted loads the newest artifact, or fits from the catalog when the
// store is empty or refit is set.
func (c *components) ensureFitted(ctx context.Context, refit bool) error {
	if !refit {
		loaded, err := c.loadLatest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("artifact load failed, fitting from catalog")
		} else if loaded {
			return nil
		}
	}
	return c.fitFromCatalog(ctx)
}
