// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Extract.Separator != ":" {
		t.Errorf("expected separator=\":\", got %q", cfg.Extract.Separator)
	}
	if cfg.Preflight.SampleLines != 200000 {
		t.Errorf("expected sample_lines=200000, got %d", cfg.Preflight.SampleLines)
	}
	if cfg.Backend.Method != "auto" {
		t.Errorf("expected method=auto, got %q", cfg.Backend.Method)
	}
	if cfg.Backend.MemBudgetFraction != 0.6 {
		t.Errorf("expected mem_budget_fraction=0.6, got %v", cfg.Backend.MemBudgetFraction)
	}
	if cfg.Backend.MigrateThreshold != 2000000 {
		t.Errorf("expected migrate_threshold=2000000, got %d", cfg.Backend.MigrateThreshold)
	}
	if cfg.Output.Dir != "salt_outputs" {
		t.Errorf("expected dir=salt_outputs, got %q", cfg.Output.Dir)
	}
	if cfg.Output.Top != 20 {
		t.Errorf("expected top=20, got %d", cfg.Output.Top)
	}
	if cfg.Progress.Every != 100000 {
		t.Errorf("expected every=100000, got %d", cfg.Progress.Every)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults failed validation: %v", err)
	}
}

func TestLoad_WithoutSaltscanConfig(t *testing.T) {
	// An unset SALTSCAN_CONFIG is not an error: the file is optional.
	t.Setenv("SALTSCAN_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Extract.Separator != ":" {
		t.Errorf("expected default separator, got %q", cfg.Extract.Separator)
	}
}

func TestLoad_WithSaltscanConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saltscan.yaml")
	content := `
extract:
  separator: ";"
output:
  top: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SALTSCAN_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Extract.Separator != ";" {
		t.Errorf("expected separator=\";\", got %q", cfg.Extract.Separator)
	}
	if cfg.Output.Top != 50 {
		t.Errorf("expected top=50, got %d", cfg.Output.Top)
	}
	// Fields the file does not mention keep their defaults.
	if cfg.Backend.MigrateThreshold != 2000000 {
		t.Errorf("expected default migrate_threshold, got %d", cfg.Backend.MigrateThreshold)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saltscan.yaml")
	content := `
preflight:
  sample_lines: 1000
  model: overall-rate

backend:
  method: disk
  db_path: /var/tmp/counts.db
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Preflight.SampleLines != 1000 {
		t.Errorf("expected sample_lines=1000, got %d", cfg.Preflight.SampleLines)
	}
	if cfg.Preflight.Model != "overall-rate" {
		t.Errorf("expected model=overall-rate, got %q", cfg.Preflight.Model)
	}
	if cfg.Backend.Method != "disk" {
		t.Errorf("expected method=disk, got %q", cfg.Backend.Method)
	}
	if cfg.Backend.DBPath != "/var/tmp/counts.db" {
		t.Errorf("expected db_path=/var/tmp/counts.db, got %q", cfg.Backend.DBPath)
	}
	if cfg.Extract.Separator != ":" {
		t.Errorf("expected untouched default separator, got %q", cfg.Extract.Separator)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile_ExpandsVariables(t *testing.T) {
	t.Setenv("HOME", "/home/analyst")
	t.Setenv("SALTSCAN_DB", "")

	path := filepath.Join(t.TempDir(), "saltscan.yaml")
	content := `
output:
  dir: ${HOME}/salt_outputs
backend:
  db_path: ${SALTSCAN_DB:-/tmp/counts.db}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Output.Dir != "/home/analyst/salt_outputs" {
		t.Errorf("expected ${HOME} expanded, got %q", cfg.Output.Dir)
	}
	if cfg.Backend.DBPath != "/tmp/counts.db" {
		t.Errorf("expected default expansion, got %q", cfg.Backend.DBPath)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Extract.Separator = ""
	cfg.Extract.HexSalts = "shred"
	cfg.Backend.MemBudgetFraction = 1.5
	cfg.Output.Top = -1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{
		"extract.separator",
		"extract.hex_salts",
		"backend.mem_budget_fraction",
		"output.top",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidate_RejectsUnknownMethod(t *testing.T) {
	cfg := Default()
	cfg.Backend.Method = "turbo"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "backend.method") {
		t.Errorf("error %q missing backend.method", err.Error())
	}
}
