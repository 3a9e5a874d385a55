// Sommelier - Content-Based Wine Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sommelier

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sommelier/internal/models"
	"github.com/tomtom215/sommelier/internal/recommend/storage"
)

// ===================================================================================================
// Fixtures
// ===================================================================================================

var (
	testGrapes  = []string{"Malbec", "Chardonnay", "Grenache", "Merlot"}
	testTypes   = []string{"Tinto", "Branco", "Rosé", "Tinto"}
	testRegions = []string{"Mendoza", "Borgonha", "Provence", "Bordeaux"}
)

// writeCatalog writes n wines to a JSON catalog file and returns its path.
func writeCatalog(t *testing.T, n int) string {
	t.Helper()

	records := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		k := i % len(testGrapes)
		records = append(records, map[string]interface{}{
			"id":                        fmt.Sprintf("w%02d", i),
			"product_name":              fmt.Sprintf("%s %d", testGrapes[k], i),
			"technical_sheet_grapes":    testGrapes[k],
			"technical_sheet_wine_type": testTypes[k],
			"technical_sheet_region":    testRegions[k],
			"harmonizes_with":           "Carnes, Queijos",
			"fruit_tasting":             1 + k,
			"tannin_tasting":            5 - k,
			"acidity_tasting":           2 + i%3,
			"sugar_tasting":             1 + i%2,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	path := filepath.Join(t.TempDir(), "wines.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

// runCLI executes the root command with args and returns stdout. Flags in
// args override the test defaults.
func runCLI(t *testing.T, catalogPath, artifactsDir string, args ...string) (string, error) {
	t.Helper()

	base := []string{
		"--env-file=",
		"--log-level=disabled",
		"--catalog=" + catalogPath,
		"--artifacts=" + artifactsDir,
	}

	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append(base, args...))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	err := cmd.Execute()
	return stdout.String(), err
}

// ===================================================================================================
// Command Tests
// ===================================================================================================

func TestFitThenRecommend(t *testing.T) {
	catalogPath := writeCatalog(t, 24)
	artifacts := t.TempDir()

	out, err := runCLI(t, catalogPath, artifacts, "fit")
	if err != nil {
		t.Fatalf("fit error = %v", err)
	}
	var fitted fitOutput
	if err := json.Unmarshal([]byte(out), &fitted); err != nil {
		t.Fatalf("decode fit output %q: %v", out, err)
	}
	if !fitted.Status.Fitted || fitted.Status.Records != 24 {
		t.Errorf("status = %+v, want 24 fitted records", fitted.Status)
	}
	if fitted.Artifact == nil || fitted.Artifact.Version != 1 {
		t.Fatalf("artifact = %+v, want version 1", fitted.Artifact)
	}

	out, err = runCLI(t, catalogPath, artifacts, "recommend", "--wine-id", "w02", "--top-n", "3")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	var resp models.RecommendResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode recommend output %q: %v", out, err)
	}
	if len(resp.IDs) != 3 {
		t.Fatalf("len(IDs) = %d, want 3", len(resp.IDs))
	}
	for _, id := range resp.IDs {
		if id == "w02" {
			t.Error("recommendations contain the query wine")
		}
	}
}

func TestRecommend_FieldQuery(t *testing.T) {
	catalogPath := writeCatalog(t, 16)

	out, err := runCLI(t, catalogPath, t.TempDir(),
		"recommend", "--field", "technical_sheet_grapes=Malbec", "--field", "tannin_tasting=5", "--top-n", "2")
	if err != nil {
		t.Fatalf("recommend error = %v", err)
	}
	var resp models.RecommendResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(resp.IDs) != 2 {
		t.Errorf("len(IDs) = %d, want 2", len(resp.IDs))
	}
}

func TestRecommend_FlagErrors(t *testing.T) {
	catalogPath := writeCatalog(t, 8)

	tests := []struct {
		name string
		args []string
	}{
		{"no query", []string{"recommend"}},
		{"wine id and query", []string{"recommend", "--wine-id", "w01", "--query", `{"technical_sheet_grapes":"Malbec"}`}},
		{"unknown field", []string{"recommend", "--field", "vintage=2019"}},
		{"malformed field", []string{"recommend", "--field", "technical_sheet_grapes"}},
		{"unknown wine", []string{"recommend", "--wine-id", "missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, catalogPath, t.TempDir(), tt.args...); err == nil {
				t.Error("Execute() error = nil, want error")
			}
		})
	}
}

func TestEvaluate(t *testing.T) {
	catalogPath := writeCatalog(t, 40)

	out, err := runCLI(t, catalogPath, t.TempDir(), "evaluate", "--samples", "8", "--top-n", "3", "--seed", "7")
	if err != nil {
		t.Fatalf("evaluate error = %v", err)
	}
	var m struct {
		MeanJaccard      float64 `json:"mean_jaccard"`
		SamplesEvaluated int     `json:"samples_evaluated"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if m.SamplesEvaluated == 0 || m.SamplesEvaluated > 8 {
		t.Errorf("samples_evaluated = %d, want 1..8", m.SamplesEvaluated)
	}
	if m.MeanJaccard < 0 || m.MeanJaccard > 1 {
		t.Errorf("mean_jaccard = %v, want within [0, 1]", m.MeanJaccard)
	}
}

func TestEvaluate_InvalidField(t *testing.T) {
	catalogPath := writeCatalog(t, 8)

	_, err := runCLI(t, catalogPath, t.TempDir(), "evaluate", "--by", "vintage")
	if got := exitCode(err); got != ExitConfigError {
		t.Errorf("exitCode = %d, want %d (err = %v)", got, ExitConfigError, err)
	}
}

func TestArtifactsListAndPrune(t *testing.T) {
	catalogPath := writeCatalog(t, 12)
	artifacts := t.TempDir()

	for i := 0; i < 3; i++ {
		if _, err := runCLI(t, catalogPath, artifacts, "fit"); err != nil {
			t.Fatalf("fit %d error = %v", i, err)
		}
	}

	out, err := runCLI(t, catalogPath, artifacts, "artifacts", "prune", "--keep", "1")
	if err != nil {
		t.Fatalf("prune error = %v", err)
	}
	if !strings.Contains(out, `"removed": 2`) {
		t.Errorf("prune output = %q, want 2 removed", out)
	}

	out, err = runCLI(t, catalogPath, artifacts, "artifacts", "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var listed []storage.Metadata
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode list output %q: %v", out, err)
	}
	if len(listed) != 1 || listed[0].Version != 3 {
		t.Errorf("listed = %+v, want only version 3", listed)
	}
}

func TestConfigErrors(t *testing.T) {
	_, err := runCLI(t, "", t.TempDir(), "fit", "--log-level", "loud")
	if got := exitCode(err); got != ExitConfigError {
		t.Errorf("exitCode = %d, want %d (err = %v)", got, ExitConfigError, err)
	}
}

// ===================================================================================================
// Exit Code Tests
// ===================================================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitError},
		{"config", &configError{err: errors.New("bad")}, ExitConfigError},
		{"wrapped config", fmt.Errorf("load: %w", &configError{err: errors.New("bad")}), ExitConfigError},
		{"target miss", &targetMissError{Message: "missed"}, ExitTargetMiss},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
