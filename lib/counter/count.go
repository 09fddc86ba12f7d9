// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"context"
	"fmt"

	"github.com/hashlist-tools/saltscan/lib/extract"
	"github.com/hashlist-tools/saltscan/lib/linesource"
	"github.com/hashlist-tools/saltscan/lib/progress"
)

// PassStats summarizes a completed counting pass. TotalLines is
// always ValidLines + InvalidLines.
type PassStats struct {
	TotalLines   int64
	ValidLines   int64
	InvalidLines int64
}

// Count runs the single forward counting pass over source: extract
// the salt from each line and increment its entry. Lines that fail
// extraction are tallied as invalid and skipped. Backend and read
// errors abort the pass with zero stats: counts from a partial pass
// understate the true distribution and must never be reported as
// complete.
func Count(ctx context.Context, source *linesource.Source, extractor extract.Config, backend Backend, meter *progress.Meter) (PassStats, error) {
	var stats PassStats
	for source.Scan() {
		if err := ctx.Err(); err != nil {
			return PassStats{}, fmt.Errorf("counter: counting pass: %w", err)
		}
		stats.TotalLines++
		meter.Tick()

		salt, ok := extractor.Extract(source.Text())
		if !ok {
			stats.InvalidLines++
			continue
		}
		stats.ValidLines++

		if err := backend.Increment(salt); err != nil {
			return PassStats{}, fmt.Errorf("counter: counting pass: %w", err)
		}
	}
	if err := source.Err(); err != nil {
		return PassStats{}, fmt.Errorf("counter: counting pass: reading %s: %w", source.Path(), err)
	}
	meter.Finish()
	return stats, nil
}
