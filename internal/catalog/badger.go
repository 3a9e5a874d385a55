// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sommelier/internal/wine"
)

// Key prefixes for BadgerDB storage
const (
	wineKeyPrefix = "wine:"
	metaUpdatedAt = "meta:updated_at"
)

// ErrWineNotFound is returned by Get for an unknown id.
var ErrWineNotFound = errors.New("wine not found")

// BadgerConfig configures the BadgerDB catalog store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in memory only.
	// Default: false.
	InMemory bool

	// SyncWrites fsyncs every write.
	// Default: false.
	SyncWrites bool
}

// BadgerStore keeps the catalog in BadgerDB, one JSON value per wine.
type BadgerStore struct {
	db     *badger.DB
	owned  bool
	logger zerolog.Logger
}

// OpenBadgerStore opens (or creates) a store at cfg.Path.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerStore(cfg BadgerConfig, logger zerolog.Logger) (*BadgerStore, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("badger catalog path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.SyncWrites = cfg.SyncWrites

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := NewBadgerStore(db, logger)
	s.owned = true
	s.logger.Info().Str("path", cfg.Path).Bool("in_memory", cfg.InMemory).Msg("catalog store opened")
	return s, nil
}

// NewBadgerStore wraps an open database. Close does not close db.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStore(db *badger.DB, logger zerolog.Logger) *BadgerStore {
	return &BadgerStore{
		db:     db,
		logger: logger.With().Str("component", "catalog").Str("source", "badger").Logger(),
	}
}

// Name implements Provider.
func (s *BadgerStore) Name() string {
	return "badger"
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// Put inserts or replaces records.
func (s *BadgerStore) Put(ctx context.Context, wines []wine.Wine) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range wines {
		if wines[i].ID == "" {
			return fmt.Errorf("record %d has no id", i)
		}
		data, err := json.Marshal(&wines[i])
		if err != nil {
			return fmt.Errorf("marshal wine %s: %w", wines[i].ID, err)
		}
		if err := wb.Set([]byte(wineKeyPrefix+wines[i].ID), data); err != nil {
			return fmt.Errorf("set wine %s: %w", wines[i].ID, err)
		}
	}
	if err := wb.Set([]byte(metaUpdatedAt), []byte(time.Now().UTC().Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("set updated_at: %w", err)
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush wines: %w", err)
	}
	return nil
}

// Replace swaps the whole catalog for wines.
func (s *BadgerStore) Replace(ctx context.Context, wines []wine.Wine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DropPrefix([]byte(wineKeyPrefix)); err != nil {
		return fmt.Errorf("drop wines: %w", err)
	}
	return s.Put(ctx, wines)
}

// Get returns one record.
func (s *BadgerStore) Get(ctx context.Context, id string) (wine.Wine, error) {
	var w wine.Wine
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(wineKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrWineNotFound
		}
		if err != nil {
			return fmt.Errorf("get wine: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &w)
		})
	})
	return w, err
}

// Delete removes one record. Deleting an unknown id is not an error.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(wineKeyPrefix + id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete wine: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored records.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(wineKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count wines: %w", err)
	}
	return count, nil
}

// UpdatedAt returns the time of the last write, or the zero time for an
// empty store.
func (s *BadgerStore) UpdatedAt(ctx context.Context) (time.Time, error) {
	var ts time.Time
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaUpdatedAt))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, err := time.Parse(time.RFC3339Nano, string(val))
			if err != nil {
				return err
			}
			ts = parsed
			return nil
		})
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("read updated_at: %w", err)
	}
	return ts, nil
}

// Snapshot implements Provider. Records come back in ascending id order.
func (s *BadgerStore) Snapshot(ctx context.Context) ([]wine.Wine, error) {
	var out []wine.Wine
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(wineKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var w wine.Wine
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &w)
			}); err != nil {
				return fmt.Errorf("decode wine %s: %w", it.Item().Key(), err)
			}
			out = append(out, w)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Int("records", len(out)).Msg("catalog snapshot read")
	return out, nil
}
