// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter_test

import (
	"path/filepath"
	"testing"

	"github.com/hashlist-tools/saltscan/lib/counter"
)

func TestDiskRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := counter.OpenDisk(counter.DiskConfig{})
	if err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestDiskFlushOnRead(t *testing.T) {
	t.Parallel()

	disk, err := counter.OpenDisk(counter.DiskConfig{
		Path:      filepath.Join(t.TempDir(), "counts.db"),
		BatchSize: 100,
	})
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	defer disk.Close()

	// Fewer increments than the batch size: everything is still
	// buffered when the read arrives.
	feed(t, disk, []string{"aa", "bb", "aa"})

	counts := collect(t, disk)
	if counts["aa"] != 2 || counts["bb"] != 1 {
		t.Errorf("counts = %v, want aa=2 bb=1", counts)
	}
}

func TestDiskPersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.db")

	disk, err := counter.OpenDisk(counter.DiskConfig{Path: path, BatchSize: 2})
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	feed(t, disk, testFeed)
	if err := disk.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := counter.OpenDisk(counter.DiskConfig{Path: path, BatchSize: 2})
	if err != nil {
		t.Fatalf("OpenDisk (reopen): %v", err)
	}
	defer reopened.Close()

	counts := collect(t, reopened)
	want := map[string]int64{"aa": 2, "bb": 2, "cc": 1, "dd": 1}
	for salt, count := range want {
		if counts[salt] != count {
			t.Errorf("count[%q] = %d, want %d", salt, counts[salt], count)
		}
	}
}

func TestDiskAccumulatesAcrossRuns(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.db")

	disk, err := counter.OpenDisk(counter.DiskConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	feed(t, disk, []string{"aa", "bb"})
	if err := disk.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := counter.OpenDisk(counter.DiskConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenDisk (reopen): %v", err)
	}
	defer reopened.Close()

	// A second run over the same database extends the stored counts,
	// and new salts get sequence numbers past the stored maximum.
	feed(t, reopened, []string{"aa", "zz"})

	counts := collect(t, reopened)
	if counts["aa"] != 2 {
		t.Errorf("count[aa] = %d, want 2 after accumulating run", counts["aa"])
	}
	if counts["zz"] != 1 {
		t.Errorf("count[zz] = %d, want 1", counts["zz"])
	}

	seqs := make(map[string]int64)
	err = reopened.Scan(func(e counter.Entry) error {
		seqs[e.Salt] = e.FirstSeen
		return nil
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if seqs["zz"] <= seqs["bb"] {
		t.Errorf("FirstSeen[zz] = %d, want after FirstSeen[bb] = %d", seqs["zz"], seqs["bb"])
	}
}

func TestDiskCloseFlushesPending(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.db")

	disk, err := counter.OpenDisk(counter.DiskConfig{Path: path, BatchSize: 1000})
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	feed(t, disk, []string{"aa", "aa", "bb"})
	if err := disk.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := counter.OpenDisk(counter.DiskConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenDisk (reopen): %v", err)
	}
	defer reopened.Close()

	counts := collect(t, reopened)
	if counts["aa"] != 2 || counts["bb"] != 1 {
		t.Errorf("counts after reopen = %v, want aa=2 bb=1", counts)
	}
}

func TestDiskUseAfterClose(t *testing.T) {
	t.Parallel()

	disk, err := counter.OpenDisk(counter.DiskConfig{
		Path: filepath.Join(t.TempDir(), "counts.db"),
	})
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	if err := disk.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := disk.Increment("aa"); err == nil {
		t.Error("Increment after Close returned nil, want error")
	}
	if _, err := disk.Len(); err == nil {
		t.Error("Len after Close returned nil, want error")
	}
	if err := disk.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
