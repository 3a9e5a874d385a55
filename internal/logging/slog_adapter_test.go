// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelInfo, `"level":"info"`},
		{slog.LevelWarn, `"level":"warn"`},
		{slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel)))
			slogger.Log(context.Background(), tt.level, "event")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q missing %q", buf.String(), tt.want)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false at warn level")
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf))).
		With("supervisor", "sommelier").
		WithGroup("service")

	slogger.Info("restart",
		"name", "http",
		"attempt", 3,
		"backoff", 2*time.Second,
		"failed", true,
		slog.Group("inner", "k", "v"),
	)

	out := buf.String()
	for _, want := range []string{
		`"supervisor":"sommelier"`,
		`"service.name":"http"`,
		`"service.attempt":3`,
		`"service.failed":true`,
		`"service.inner.k":"v"`,
		`"message":"restart"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSlogHandler_EmptyGroup(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.Nop())
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestNewSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewSlogLogger(zerolog.New(&buf)).Info("ready")
	if !strings.Contains(buf.String(), "ready") {
		t.Errorf("output missing message: %s", buf.String())
	}
}
