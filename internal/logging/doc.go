// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

// Package logging provides centralized zerolog-based structured logging for Sommelier.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from the CLI
//   - JSON output for servers and console output for interactive commands
//   - Request ID propagation through context.Context
//   - An slog adapter so suture's sutureslog handler writes through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("records", n).Msg("catalog loaded")
//
//	// Components take a zerolog.Logger and tag themselves:
//	engine, err := recommend.NewEngine(cfg, logging.Logger())
//	// inside: logger.With().Str("component", "recommend").Logger()
//
// # Configuration
//
// The logging section of the configuration file, or the environment:
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Request Context
//
//	ctx = logging.ContextWithRequestID(ctx, id)
//	logging.Ctx(ctx).Info().Msg("recommend request")
//	// {"level":"info","request_id":"...","message":"recommend request"}
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Tests pass zerolog.Nop() to components, or NewTestLogger to capture output.
package logging
