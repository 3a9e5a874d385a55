// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package config

import (
	"time"

	"github.com/tomtom215/sommelier/internal/logging"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every setting
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any mapped setting
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    return err
//	}
//	engine, err := recommend.NewEngine(engineCfg, logger)
type Config struct {
	Logging    LoggingConfig    `koanf:"logging"`
	Catalog    CatalogConfig    `koanf:"catalog"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Evaluation EvaluationConfig `koanf:"evaluation"`
	Tuning     TuningConfig     `koanf:"tuning"`
	Storage    StorageConfig    `koanf:"storage"`
	Server     ServerConfig     `koanf:"server"`
	Refresh    RefreshConfig    `koanf:"refresh"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error fatal panic disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Logging returns the logging package configuration. Output keeps the
// logging default.
func (c *LoggingConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// Catalog source kinds.
const (
	CatalogSourceJSON   = "json"
	CatalogSourceBadger = "badger"
)

// CatalogConfig selects the wine catalog source.
type CatalogConfig struct {
	// Source is "json" for a JSON or JSON Lines file, "badger" for the
	// durable catalog store.
	// Default: "json".
	Source string `koanf:"source" validate:"oneof=json badger"`

	// Path is the catalog file read by the json source and by import.
	// Default: "data/wines.json".
	Path string `koanf:"path"`

	// BadgerPath is the badger directory of the badger source.
	// Default: "data/catalog".
	BadgerPath string `koanf:"badger_path"`

	// SyncWrites makes every badger write durable before returning.
	// Default: false.
	SyncWrites bool `koanf:"sync_writes"`
}

// RecommendConfig configures the recommendation engine.
type RecommendConfig struct {
	TextWeight        float64 `koanf:"text_weight" validate:"gte=0"`
	OrdinalWeight     float64 `koanf:"ordinal_weight" validate:"gte=0"`
	CategoricalWeight float64 `koanf:"categorical_weight" validate:"gte=0"`

	DefaultTopN int `koanf:"default_top_n" validate:"min=1"`
	MaxTopN     int `koanf:"max_top_n" validate:"min=1"`

	// Diversity is the default diversity factor.
	// Default: 0.5.
	Diversity float64 `koanf:"diversity" validate:"gte=0,lte=1"`

	// Formula is "observed" or "canonical".
	// Default: "observed".
	Formula string `koanf:"formula" validate:"oneof=observed canonical"`

	// CategoricalComponent adds the exact-match categorical vector to scoring.
	// Default: false.
	CategoricalComponent bool `koanf:"categorical_component"`

	// Seed seeds tie breaks of requests without their own seed. 0 keeps
	// candidate order.
	Seed int64 `koanf:"seed"`

	TextFields        []string `koanf:"text_fields"`
	CategoricalFields []string `koanf:"categorical_fields"`
	OrdinalFields     []string `koanf:"ordinal_fields"`

	// MinDF drops rare terms. Default: 1.
	MinDF int `koanf:"min_df" validate:"min=1"`
	// MaxDFRatio drops terms present in a larger share of documents. Default: 1.0.
	MaxDFRatio float64 `koanf:"max_df_ratio" validate:"gt=0,lte=1"`
	// NGramMax is 1 or 2. Default: 1.
	NGramMax  int      `koanf:"ngram_max" validate:"min=1,max=2"`
	Stopwords []string `koanf:"stopwords"`
}

// EvaluationConfig configures offline evaluation runs.
type EvaluationConfig struct {
	HoldoutFraction    float64 `koanf:"holdout_fraction" validate:"gt=0,lte=1"`
	Samples            int     `koanf:"samples" validate:"min=1"`
	TopN               int     `koanf:"top_n" validate:"min=1"`
	PerCategorySamples int     `koanf:"per_category_samples" validate:"min=1"`
	Seed               int64   `koanf:"seed"`

	// FieldWeights override the per-field weights of the weighted Jaccard
	// score. Keys are wine field names.
	FieldWeights map[string]float64 `koanf:"field_weights"`
}

// TuningConfig configures the parameter grid search.
type TuningConfig struct {
	TextWeights []float64 `koanf:"text_weights" validate:"min=1,dive,gte=0"`
	Budget      float64   `koanf:"budget" validate:"gt=0"`
	Diversities []float64 `koanf:"diversities" validate:"min=1,dive,gte=0,lte=1"`

	// Parallelism bounds concurrent trials. 0 uses GOMAXPROCS.
	Parallelism int `koanf:"parallelism" validate:"gte=0"`

	TargetJaccard  float64 `koanf:"target_jaccard" validate:"gte=0,lte=1"`
	TargetCoverage float64 `koanf:"target_coverage" validate:"gte=0,lte=1"`
}

// StorageConfig configures fitted artifact persistence.
type StorageConfig struct {
	// Dir holds the versioned artifact files.
	// Default: "data/artifacts".
	Dir string `koanf:"dir" validate:"required"`

	// Name is the artifact name; files are {name}_v{version}.gob.gz.
	// Default: "wine_space".
	Name string `koanf:"name" validate:"required"`

	// Keep is the number of versions retained after a save. 0 keeps all.
	// Default: 5.
	Keep int `koanf:"keep" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"gt=0"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// ResponseCacheSize is the number of recommendation responses kept
	// per feature space version. 0 disables the cache.
	// Default: 1024.
	ResponseCacheSize int `koanf:"response_cache_size" validate:"gte=0"`

	// ResponseCacheTTL bounds how long a cached response is served.
	// Default: 5m.
	ResponseCacheTTL time.Duration `koanf:"response_cache_ttl" validate:"gte=0"`
}

// RefreshConfig controls periodic refits from the catalog source.
type RefreshConfig struct {
	// Interval between refits. 0 disables periodic refits.
	// Default: 1h.
	Interval time.Duration `koanf:"interval" validate:"gte=0"`

	// OnStartup fits from the catalog when the server starts, even if an
	// artifact was loaded.
	// Default: true.
	OnStartup bool `koanf:"on_startup"`
}
