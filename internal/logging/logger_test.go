// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("Level = %q, want info", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Caller {
		t.Error("Caller = true, want false")
	}
	if !cfg.Timestamp {
		t.Error("Timestamp = false, want true")
	}
}

// Init mutates global state, so these tests do not run in parallel.
func TestInit(t *testing.T) {
	defer Init(DefaultConfig())

	tests := []struct {
		name     string
		cfg      Config
		contains []string
		excludes []string
	}{
		{
			name:     "json",
			cfg:      Config{Level: "debug", Format: "json", Timestamp: true},
			contains: []string{`"level":"info"`, `"message":"hello"`, `"time":`},
		},
		{
			name:     "no timestamp",
			cfg:      Config{Level: "info", Format: "json"},
			contains: []string{`"message":"hello"`},
			excludes: []string{`"time":`},
		},
		{
			name:     "console",
			cfg:      Config{Level: "info", Format: "console"},
			contains: []string{"hello"},
			excludes: []string{`"message"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.cfg.Output = &buf
			Init(tt.cfg)

			Info().Msg("hello")

			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output %q missing %q", out, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(out, bad) {
					t.Errorf("output %q should not contain %q", out, bad)
				}
			}
		})
	}
}

func TestInit_LevelFilters(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})

	Info().Msg("dropped")
	Warn().Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info message emitted at warn level: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn message missing: %s", out)
	}
	if GetLevel() != zerolog.WarnLevel {
		t.Errorf("GetLevel() = %v, want warn", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	logger := WithComponent("recommend")
	logger.Info().Msg("fitted")

	if !strings.Contains(buf.String(), `"component":"recommend"`) {
		t.Errorf("output missing component: %s", buf.String())
	}
}
