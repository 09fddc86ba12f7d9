// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashlist-tools/saltscan/lib/counter"
	"github.com/hashlist-tools/saltscan/lib/report"
)

// rankFeed produces counts dd=3, aa=2, bb=2, cc=1 with aa first seen
// before bb, so the full rank order is dd, aa, bb, cc.
var rankFeed = []string{"aa", "bb", "dd", "aa", "bb", "dd", "cc", "dd"}

func feedBackend(t *testing.T, backend counter.Backend, salts []string) {
	t.Helper()
	for _, salt := range salts {
		if err := backend.Increment(salt); err != nil {
			t.Fatalf("Increment(%q): %v", salt, err)
		}
	}
}

func openBackends(t *testing.T) map[string]counter.Backend {
	t.Helper()
	disk, err := counter.OpenDisk(counter.DiskConfig{
		Path:      filepath.Join(t.TempDir(), "counts.db"),
		BatchSize: 3,
	})
	if err != nil {
		t.Fatalf("OpenDisk: %v", err)
	}
	backends := map[string]counter.Backend{
		"memory": counter.NewMemory(),
		"disk":   disk,
	}
	t.Cleanup(func() {
		for _, backend := range backends {
			backend.Close()
		}
	})
	return backends
}

func TestTopN(t *testing.T) {
	t.Parallel()

	for name, backend := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			feedBackend(t, backend, rankFeed)

			top, err := report.TopN(backend, 3)
			if err != nil {
				t.Fatalf("TopN: %v", err)
			}
			want := []struct {
				salt  string
				count int64
			}{
				{"dd", 3},
				{"aa", 2},
				{"bb", 2},
			}
			if len(top) != len(want) {
				t.Fatalf("len(top) = %d, want %d", len(top), len(want))
			}
			for i, w := range want {
				if top[i].Salt != w.salt || top[i].Count != w.count {
					t.Errorf("top[%d] = %q/%d, want %q/%d", i, top[i].Salt, top[i].Count, w.salt, w.count)
				}
			}
		})
	}
}

func TestTopNTieBreakIsFirstSeen(t *testing.T) {
	t.Parallel()

	// All counts equal: order must be exactly first-appearance order,
	// and a bounded request keeps the earliest entries.
	backend := counter.NewMemory()
	defer backend.Close()
	feedBackend(t, backend, []string{"w3", "w1", "w4", "w2"})

	top, err := report.TopN(backend, 2)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("len(top) = %d, want 2", len(top))
	}
	if top[0].Salt != "w3" || top[1].Salt != "w1" {
		t.Errorf("top = [%q %q], want [w3 w1]", top[0].Salt, top[1].Salt)
	}
}

func TestTopNBeyondUniqueCount(t *testing.T) {
	t.Parallel()

	backend := counter.NewMemory()
	defer backend.Close()
	feedBackend(t, backend, rankFeed)

	top, err := report.TopN(backend, 100)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(top) != 4 {
		t.Errorf("len(top) = %d, want all 4 uniques", len(top))
	}

	none, err := report.TopN(backend, 0)
	if err != nil {
		t.Fatalf("TopN(0): %v", err)
	}
	if none != nil {
		t.Errorf("TopN(0) = %v, want nil", none)
	}
}

func TestBuildSummary(t *testing.T) {
	t.Parallel()

	backend := counter.NewMemory()
	defer backend.Close()
	feedBackend(t, backend, rankFeed)

	stats := counter.PassStats{TotalLines: 10, ValidLines: 8, InvalidLines: 2}
	summary, err := report.BuildSummary(stats, backend)
	if err != nil {
		t.Fatalf("BuildSummary: %v", err)
	}
	if summary.UniqueSalts != 4 {
		t.Errorf("UniqueSalts = %d, want 4", summary.UniqueSalts)
	}
	if summary.TotalLines != 10 || summary.ValidLines != 8 || summary.InvalidLines != 2 {
		t.Errorf("summary = %+v, want pass stats carried through", summary)
	}

	if pct := summary.Percent(2); pct != 25 {
		t.Errorf("Percent(2) = %v, want 25", pct)
	}
	empty := report.Summary{}
	if pct := empty.Percent(5); pct != 0 {
		t.Errorf("Percent with zero valid lines = %v, want 0", pct)
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	for name, backend := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			feedBackend(t, backend, rankFeed)

			var buf strings.Builder
			if err := report.WriteCSV(&buf, backend, 8); err != nil {
				t.Fatalf("WriteCSV: %v", err)
			}

			want := strings.Join([]string{
				"salt,count,percent",
				"dd,3,37.5000",
				"aa,2,25.0000",
				"bb,2,25.0000",
				"cc,1,12.5000",
			}, "\n") + "\n"
			if buf.String() != want {
				t.Errorf("csv = %q, want %q", buf.String(), want)
			}
		})
	}
}

func TestWriteCSVQuotesAwkwardSalts(t *testing.T) {
	t.Parallel()

	backend := counter.NewMemory()
	defer backend.Close()
	feedBackend(t, backend, []string{`sa,lt`, `sa"lt`})

	var buf strings.Builder
	if err := report.WriteCSV(&buf, backend, 2); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"sa,lt",1,50.0000`) {
		t.Errorf("comma salt not quoted:\n%s", out)
	}
	if !strings.Contains(out, `"sa""lt",1,50.0000`) {
		t.Errorf("quote salt not escaped:\n%s", out)
	}
}
