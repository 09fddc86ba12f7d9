// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package meminfo

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSyntheticFile creates a file at the given path within root,
// creating parent directories as needed.
func writeSyntheticFile(t *testing.T, root, path, content string) {
	t.Helper()
	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", fullPath, err)
	}
}

func TestProbeFromSyntheticMeminfo(t *testing.T) {
	root := t.TempDir()
	writeSyntheticFile(t, root, "meminfo",
		"MemTotal:       16316584 kB\n"+
			"MemFree:         1063504 kB\n"+
			"MemAvailable:    9665480 kB\n"+
			"Buffers:          518752 kB\n")

	info := probeFrom(root)
	if want := uint64(16316584) * 1024; info.TotalBytes != want {
		t.Errorf("TotalBytes = %d, want %d", info.TotalBytes, want)
	}
	if want := uint64(9665480) * 1024; info.AvailableBytes != want {
		t.Errorf("AvailableBytes = %d, want %d", info.AvailableBytes, want)
	}
}

func TestProbeFromMissingMeminfoFallsBack(t *testing.T) {
	// No meminfo file under the root: the sysinfo fallback still
	// reports a real total on any Linux machine.
	info := probeFrom(t.TempDir())
	if info.TotalBytes == 0 {
		t.Error("TotalBytes = 0 after sysinfo fallback")
	}
}

func TestProbeFromMalformedMeminfo(t *testing.T) {
	root := t.TempDir()
	writeSyntheticFile(t, root, "meminfo", "MemTotal: not-a-number kB\n")

	// Malformed values parse to zero, which triggers the fallback.
	info := probeFrom(root)
	if info.TotalBytes == 0 {
		t.Error("TotalBytes = 0, want sysinfo fallback value")
	}
}

func TestParseKBLine(t *testing.T) {
	tests := []struct {
		line string
		want uint64
	}{
		{"MemTotal:       16316584 kB", 16316584 * 1024},
		{"MemAvailable: 1 kB", 1024},
		{"MemTotal:", 0},
		{"MemTotal: junk kB", 0},
	}
	for _, tt := range tests {
		if got := parseKBLine(tt.line); got != tt.want {
			t.Errorf("parseKBLine(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}
