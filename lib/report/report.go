// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package report ranks and summarizes a completed counting pass.
//
// TopN keeps a bounded heap while streaming the backend's entries, so
// ranking never materializes a disk-backed table in memory. CSV output
// streams the full distribution in ranked order straight to the
// writer. Percentages are always relative to the valid line count, not
// the total.
package report

import (
	"container/heap"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/hashlist-tools/saltscan/lib/counter"
)

// Summary is the headline result of a counting pass.
type Summary struct {
	TotalLines   int64
	ValidLines   int64
	InvalidLines int64
	UniqueSalts  int64
}

// BuildSummary combines the pass stats with the backend's unique
// count.
func BuildSummary(stats counter.PassStats, backend counter.Backend) (Summary, error) {
	uniques, err := backend.Len()
	if err != nil {
		return Summary{}, fmt.Errorf("report: unique count: %w", err)
	}
	return Summary{
		TotalLines:   stats.TotalLines,
		ValidLines:   stats.ValidLines,
		InvalidLines: stats.InvalidLines,
		UniqueSalts:  uniques,
	}, nil
}

// Percent returns count's share of the valid lines, in percent. Zero
// valid lines yields zero rather than a division by zero.
func (s Summary) Percent(count int64) float64 {
	return percentOf(count, s.ValidLines)
}

func percentOf(count, validLines int64) float64 {
	if validLines == 0 {
		return 0
	}
	return float64(count) / float64(validLines) * 100
}

// outranks reports whether a places before b: higher count first,
// earlier first-seen on ties. FirstSeen is unique per entry, so this
// is a strict total order.
func outranks(a, b counter.Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	return a.FirstSeen < b.FirstSeen
}

// TopN returns the n highest-ranked entries in rank order. The scan
// keeps a min-heap of at most n entries, so memory stays bounded
// regardless of how many unique salts the backend holds. n <= 0
// returns nil.
func TopN(backend counter.Backend, n int) ([]counter.Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	kept := make(entryHeap, 0, n)
	err := backend.Scan(func(e counter.Entry) error {
		if len(kept) < n {
			heap.Push(&kept, e)
			return nil
		}
		if outranks(e, kept[0]) {
			kept[0] = e
			heap.Fix(&kept, 0)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("report: top-n scan: %w", err)
	}

	ranked := []counter.Entry(kept)
	slices.SortFunc(ranked, func(a, b counter.Entry) int {
		if outranks(a, b) {
			return -1
		}
		if outranks(b, a) {
			return 1
		}
		return 0
	})
	return ranked, nil
}

// WriteCSV streams the full distribution in rank order as
// salt,count,percent rows. Percent is count / validLines to four
// decimal places. The distribution is never materialized; rows go
// straight from the backend scan to the writer.
func WriteCSV(w io.Writer, backend counter.Backend, validLines int64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"salt", "count", "percent"}); err != nil {
		return fmt.Errorf("report: csv header: %w", err)
	}
	err := backend.ScanOrdered(func(e counter.Entry) error {
		return cw.Write([]string{
			e.Salt,
			strconv.FormatInt(e.Count, 10),
			strconv.FormatFloat(percentOf(e.Count, validLines), 'f', 4, 64),
		})
	})
	if err != nil {
		return fmt.Errorf("report: csv rows: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: csv flush: %w", err)
	}
	return nil
}

// entryHeap is a min-heap under the rank order: the root is the
// lowest-ranked kept entry, the one a better candidate evicts.
type entryHeap []counter.Entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return outranks(h[j], h[i]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(counter.Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	last := old[len(old)-1]
	*h = old[:len(old)-1]
	return last
}
