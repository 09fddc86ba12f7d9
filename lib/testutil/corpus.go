// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for saltscan packages.
//
// The corpus writers materialize small hashlist files — plain or
// compressed — under a test-owned directory so that source, counting,
// and export tests all build inputs the same way. All helpers call
// t.Fatalf on failure rather than returning errors, since test setup
// failures are not recoverable.
//
// This package has no saltscan-internal dependencies.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteHashlist writes lines as a newline-terminated plain hashlist
// under dir and returns the full path.
func WriteHashlist(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	return WriteFile(t, dir, name, joinLines(lines))
}

// WriteHashlistGzip writes lines as a gzip-compressed hashlist. The
// name should end in .gz so format detection engages.
func WriteHashlistGzip(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	writer := gzip.NewWriter(file)
	if _, err := writer.Write([]byte(joinLines(lines))); err != nil {
		t.Fatalf("gzip write %s: %v", path, err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("gzip close %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

// WriteHashlistZstd writes lines as a zstd-compressed hashlist. The
// name should end in .zst so format detection engages.
func WriteHashlistZstd(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	writer, err := zstd.NewWriter(file)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := writer.Write([]byte(joinLines(lines))); err != nil {
		t.Fatalf("zstd write %s: %v", path, err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("zstd close %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

// WriteHashlistLZ4 writes lines as an lz4-frame-compressed hashlist.
// The name should end in .lz4 so format detection engages.
func WriteHashlistLZ4(t *testing.T, dir, name string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	writer := lz4.NewWriter(file)
	if _, err := writer.Write([]byte(joinLines(lines))); err != nil {
		t.Fatalf("lz4 write %s: %v", path, err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("lz4 close %s: %v", path, err)
	}
	if err := file.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

// ReadLines reads a plain text file and returns its lines without
// terminators. The final newline does not produce an empty element.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
