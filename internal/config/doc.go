// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

/*
Package config provides centralized configuration management for Sommelier.

Configuration is loaded in three layers by LoadWithKoanf, each overriding the
previous one:

 1. Defaults: built-in values for every setting
 2. Config file: optional YAML file (config.yaml, or the path in CONFIG_PATH)
 3. Environment variables: an explicit list of variables mapped to config keys

Unmapped environment variables are ignored so unrelated process state never
leaks into the configuration.

# Configuration Structure

  - LoggingConfig: log level, format and caller info
  - CatalogConfig: where the wine catalog comes from (JSON file or badger)
  - RecommendConfig: fusion weights, text model options, field lists and limits
  - EvaluationConfig: holdout fraction, sample counts and seed
  - TuningConfig: search grid, targets and parallelism
  - StorageConfig: artifact directory, name and retained versions
  - ServerConfig: HTTP bind address, timeouts, CORS and rate limiting
  - RefreshConfig: periodic refit from the catalog

# Environment Variables

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: include caller file and line (default: false)

Catalog:
  - CATALOG_SOURCE: json or badger (default: json)
  - CATALOG_PATH: JSON or JSON Lines catalog file (default: data/wines.json)
  - CATALOG_BADGER_PATH: badger directory (default: data/catalog)

Recommendation:
  - RECOMMEND_TEXT_WEIGHT, RECOMMEND_ORDINAL_WEIGHT, RECOMMEND_CATEGORICAL_WEIGHT
  - RECOMMEND_DEFAULT_TOP_N (default: 5), RECOMMEND_MAX_TOP_N (default: 100)
  - RECOMMEND_DIVERSITY (default: 0.5)
  - RECOMMEND_FORMULA: observed or canonical (default: observed)
  - RECOMMEND_CATEGORICAL_COMPONENT (default: false)
  - RECOMMEND_SEED (default: 0)

Evaluation and tuning:
  - EVALUATION_HOLDOUT_FRACTION, EVALUATION_SAMPLES, EVALUATION_TOP_N, EVALUATION_SEED
  - TUNING_TEXT_WEIGHTS, TUNING_DIVERSITIES: comma-separated lists
  - TUNING_PARALLELISM, TUNING_TARGET_JACCARD, TUNING_TARGET_COVERAGE

Storage:
  - ARTIFACT_DIR (default: data/artifacts), ARTIFACT_NAME (default: wine_space)
  - ARTIFACT_KEEP (default: 5)

HTTP server:
  - HTTP_HOST (default: 0.0.0.0), HTTP_PORT (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Refresh:
  - REFRESH_INTERVAL: 0 disables periodic refits (default: 1h)
  - REFRESH_ON_STARTUP (default: true)

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	engineCfg, err := cfg.Recommend.EngineConfig()
*/
package config
