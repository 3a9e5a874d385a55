// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/sommelier/internal/config"
	"github.com/tomtom215/sommelier/internal/logging"
)

var version = "dev"

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath   string
	envFile      string
	logLevel     string
	catalogPath  string
	artifactsDir string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sommelier",
		Short: "Sommelier - content-based wine recommendations",
		Long: `Sommelier recommends wines from a catalog by content similarity.

It fits TF-IDF text vectors, label matches and tasting scales over the
catalog, fuses them with configurable weights, and diversifies the result
list with a greedy reranker.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default: config.yaml or CONFIG_PATH)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Environment file loaded before configuration")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")
	flags.StringVar(&opts.catalogPath, "catalog", "", "Catalog file; selects the json catalog source")
	flags.StringVar(&opts.artifactsDir, "artifacts", "", "Artifact directory")

	cmd.AddCommand(newFitCommand(opts))
	cmd.AddCommand(newRecommendCommand(opts))
	cmd.AddCommand(newEvaluateCommand(opts))
	cmd.AddCommand(newOptimizeCommand(opts))
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newArtifactsCommand(opts))

	return cmd
}

// load reads the environment file and configuration, applies flag
// overrides and initializes logging.
func (o *rootOptions) load() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return &configError{err: fmt.Errorf("load %s: %w", o.envFile, err)}
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.LoadWithKoanf()
	}
	if err != nil {
		return &configError{err: err}
	}

	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if o.catalogPath != "" {
		cfg.Catalog.Source = config.CatalogSourceJSON
		cfg.Catalog.Path = o.catalogPath
	}
	if o.artifactsDir != "" {
		cfg.Storage.Dir = o.artifactsDir
	}
	if err := cfg.Validate(); err != nil {
		return &configError{err: err}
	}

	logging.Init(cfg.Logging.Logging())
	o.cfg = cfg
	o.logger = logging.Logger()
	return nil
}

// components builds the wiring for one command run.
func (o *rootOptions) components() (*components, error) {
	return buildComponents(o.cfg, o.logger)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// execute runs the CLI. Every invocation gets its own request ID so log
// lines of one run can be correlated.
func execute() error {
	ctx := logging.ContextWithNewRequestID(context.Background())
	return newRootCommand().ExecuteContext(ctx)
}
