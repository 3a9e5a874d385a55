// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/sommelier/internal/wine"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sommelier/config.yaml",
	"/etc/sommelier/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Source:     CatalogSourceJSON,
			Path:       "data/wines.json",
			BadgerPath: "data/catalog",
		},
		Recommend: RecommendConfig{
			TextWeight:        0.4,
			OrdinalWeight:     0.4,
			CategoricalWeight: 0.2,
			DefaultTopN:       5,
			MaxTopN:           100,
			Diversity:         0.5,
			Formula:           "observed",
			TextFields:        fieldNames(wine.TextFields),
			CategoricalFields: fieldNames(wine.CategoricalFields),
			OrdinalFields:     fieldNames(wine.OrdinalFields),
			MinDF:             1,
			MaxDFRatio:        1.0,
			NGramMax:          1,
		},
		Evaluation: EvaluationConfig{
			HoldoutFraction:    0.2,
			Samples:            100,
			TopN:               5,
			PerCategorySamples: 20,
			Seed:               42,
		},
		Tuning: TuningConfig{
			TextWeights:    []float64{0.2, 0.3, 0.4, 0.5, 0.6},
			Budget:         0.8,
			Diversities:    []float64{0, 0.3, 0.5, 0.7, 1.0},
			Parallelism:    0,
			TargetJaccard:  0.7,
			TargetCoverage: 0.5,
		},
		Storage: StorageConfig{
			Dir:  "data/artifacts",
			Name: "wine_space",
			Keep: 5,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			ResponseCacheSize: 1024,
			ResponseCacheTTL:  5 * time.Minute,
		},
		Refresh: RefreshConfig{
			Interval:  time.Hour,
			OnStartup: true,
		},
	}
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

func fieldNames(fields []wine.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return names
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults from defaultConfig()
//  2. Config file (if found)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration like LoadWithKoanf but reads the given YAML
// file instead of searching for one. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables
	// HTTP_PORT -> server.port, RECOMMEND_DIVERSITY -> recommend.diversity
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// entry of DefaultConfigPaths, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are keys that accept comma-separated strings from the
// environment.
var sliceConfigPaths = []string{
	"recommend.text_fields",
	"recommend.categorical_fields",
	"recommend.ordinal_fields",
	"recommend.stopwords",
	"tuning.text_weights",
	"tuning.diversities",
	"server.cors_origins",
}

// processSliceFields converts comma-separated strings into string slices.
// Values that are already slices (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		// An explicitly empty variable clears the list.
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercase environment variable names to config keys.
var envMappings = map[string]string{
	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_source":      "catalog.source",
	"catalog_path":        "catalog.path",
	"catalog_badger_path": "catalog.badger_path",
	"catalog_sync_writes": "catalog.sync_writes",

	// Recommendation engine
	"recommend_text_weight":           "recommend.text_weight",
	"recommend_ordinal_weight":        "recommend.ordinal_weight",
	"recommend_categorical_weight":    "recommend.categorical_weight",
	"recommend_default_top_n":         "recommend.default_top_n",
	"recommend_max_top_n":             "recommend.max_top_n",
	"recommend_diversity":             "recommend.diversity",
	"recommend_formula":               "recommend.formula",
	"recommend_categorical_component": "recommend.categorical_component",
	"recommend_seed":                  "recommend.seed",
	"recommend_text_fields":           "recommend.text_fields",
	"recommend_categorical_fields":    "recommend.categorical_fields",
	"recommend_ordinal_fields":        "recommend.ordinal_fields",
	"recommend_min_df":                "recommend.min_df",
	"recommend_max_df_ratio":          "recommend.max_df_ratio",
	"recommend_ngram_max":             "recommend.ngram_max",
	"recommend_stopwords":             "recommend.stopwords",

	// Evaluation
	"evaluation_holdout_fraction":     "evaluation.holdout_fraction",
	"evaluation_samples":              "evaluation.samples",
	"evaluation_top_n":                "evaluation.top_n",
	"evaluation_per_category_samples": "evaluation.per_category_samples",
	"evaluation_seed":                 "evaluation.seed",

	// Tuning
	"tuning_text_weights":    "tuning.text_weights",
	"tuning_budget":          "tuning.budget",
	"tuning_diversities":     "tuning.diversities",
	"tuning_parallelism":     "tuning.parallelism",
	"tuning_target_jaccard":  "tuning.target_jaccard",
	"tuning_target_coverage": "tuning.target_coverage",

	// Artifact storage
	"artifact_dir":  "storage.dir",
	"artifact_name": "storage.name",
	"artifact_keep": "storage.keep",

	// HTTP server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",
	"response_cache_size":   "server.response_cache_size",
	"response_cache_ttl":    "server.response_cache_ttl",

	// Refresh
	"refresh_interval":   "refresh.interval",
	"refresh_on_startup": "refresh.on_startup",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
