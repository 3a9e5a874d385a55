// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/catalog"
	"github.com/tomtom215/sommelier/internal/metrics"
	"github.com/tomtom215/sommelier/internal/recommend"
	"github.com/tomtom215/sommelier/internal/recommend/storage"
	"github.com/tomtom215/sommelier/internal/wine"
)

// ErrEmptySnapshot is returned when the catalog provider yields no records.
// The active feature space is kept.
var ErrEmptySnapshot = errors.New("catalog snapshot is empty")

// Refitter is the part of *recommend.Engine the refresh service needs.
type Refitter interface {
	Fit(ctx context.Context, catalog []wine.Wine) error
	Artifact() (*storage.Artifact, error)
}

// ArtifactStore persists fitted feature spaces. *storage.Store satisfies it.
type ArtifactStore interface {
	Save(ctx context.Context, name string, a *storage.Artifact) (storage.Metadata, error)
	Prune(ctx context.Context, name string, keepVersions int) (int, error)
}

// RefreshServiceConfig holds configuration for the refresh service.
type RefreshServiceConfig struct {
	// Interval between refits. Zero disables periodic refresh.
	// Default: 1h.
	Interval time.Duration

	// OnStartup refits as soon as the service starts.
	// Default: true.
	OnStartup bool

	// FitTimeout bounds one refresh cycle.
	// Default: 30m.
	FitTimeout time.Duration

	// ArtifactName is the store name fitted spaces are saved under.
	ArtifactName string

	// Keep is the number of artifact versions kept after a save.
	// Zero keeps all.
	Keep int
}

// RefreshService periodically refits the engine from the catalog provider
// and persists the result. Readers are never blocked: the engine swaps the
// new feature space in atomically.
type RefreshService struct {
	engine   Refitter
	provider catalog.Provider
	store    ArtifactStore
	config   RefreshServiceConfig
	logger   zerolog.Logger
	name     string
}

// NewRefreshService creates a refresh service. store may be nil, in which
// case fitted spaces are not persisted.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshService(engine Refitter, provider catalog.Provider, store ArtifactStore, cfg RefreshServiceConfig, logger zerolog.Logger) *RefreshService {
	if cfg.FitTimeout <= 0 {
		cfg.FitTimeout = 30 * time.Minute
	}
	return &RefreshService{
		engine:   engine,
		provider: provider,
		store:    store,
		config:   cfg,
		logger:   logger.With().Str("service", "refresh").Str("provider", provider.Name()).Logger(),
		name:     "catalog-refresh",
	}
}

// Serve implements suture.Service. Failed refreshes are logged and retried
// on the next tick; they never stop the service.
func (s *RefreshService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("refresh service starting")

	if s.config.OnStartup {
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("startup refresh failed, will retry on schedule")
		}
	}

	if s.config.Interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("refresh service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// Refresh runs one cycle: snapshot the catalog, refit, then save and prune
// artifacts. A refit already in progress is skipped without error.
func (s *RefreshService) Refresh(ctx context.Context) (err error) {
	defer func() { metrics.RecordRefresh(err) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.FitTimeout)
	defer cancel()

	start := time.Now()

	wines, err := s.provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot catalog: %w", err)
	}
	if len(wines) == 0 {
		return ErrEmptySnapshot
	}

	if err := s.engine.Fit(ctx, wines); err != nil {
		if errors.Is(err, recommend.ErrFitInProgress) {
			s.logger.Debug().Msg("refit already in progress, skipping")
			return nil
		}
		return fmt.Errorf("fit catalog: %w", err)
	}

	if s.store != nil && s.config.ArtifactName != "" {
		if err := s.persist(ctx); err != nil {
			return err
		}
	}

	s.logger.Info().
		Int("records", len(wines)).
		Dur("duration", time.Since(start)).
		Msg("catalog refreshed")
	return nil
}

func (s *RefreshService) persist(ctx context.Context) error {
	artifact, err := s.engine.Artifact()
	if err != nil {
		return fmt.Errorf("capture artifact: %w", err)
	}

	meta, err := s.store.Save(ctx, s.config.ArtifactName, artifact)
	if err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	logger := s.logger.With().Str("artifact", meta.Name).Int("version", meta.Version).Logger()
	if s.config.Keep > 0 {
		removed, err := s.store.Prune(ctx, s.config.ArtifactName, s.config.Keep)
		if err != nil {
			// The new version is already durable.
			logger.Warn().Err(err).Msg("artifact prune failed")
		} else if removed > 0 {
			logger.Debug().Int("removed", removed).Msg("old artifacts pruned")
		}
	}

	logger.Info().Int64("size_bytes", meta.SizeBytes).Msg("artifact saved")
	return nil
}

// String returns the service name for logging.
func (s *RefreshService) String() string {
	return s.name
}
