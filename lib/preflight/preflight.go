// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package preflight estimates how much memory a full counting pass
// would need, by sampling the front of the input.
//
// The estimator reads at most a configured number of lines through
// the extractor, watching how fast new unique salts appear, then
// projects the unique-salt cardinality and its in-memory footprint
// over the whole file. The backend selector compares that projection
// against the memory budget before the real pass starts. The sample's
// transient salt set lives only inside Estimate; the counting pass
// re-opens the source and starts from nothing.
package preflight

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/hashlist-tools/saltscan/lib/extract"
	"github.com/hashlist-tools/saltscan/lib/linesource"
)

// Defaults for Options fields left at zero.
const (
	DefaultSampleLines          = 200000
	DefaultCompressedMultiplier = 10.0
	DefaultEntryOverheadBytes   = 200.0
	DefaultPerCharOverheadBytes = 2.0
)

// Options configures the estimator.
type Options struct {
	// SampleLines caps how many lines are read. Zero means
	// DefaultSampleLines.
	SampleLines int64

	// CompressedMultiplier inflates the projection when the total
	// line count is unknown (compressed input). Zero means
	// DefaultCompressedMultiplier.
	CompressedMultiplier float64

	// GrowthFactor scales the extrapolated unique growth. Zero means
	// 1.0. Raise it to bias selection toward the disk backend.
	GrowthFactor float64

	// EntryOverheadBytes is the assumed fixed cost per unique salt in
	// the memory backend. Zero means DefaultEntryOverheadBytes.
	EntryOverheadBytes float64

	// PerCharOverheadBytes is the assumed additional cost per salt
	// character. Zero means DefaultPerCharOverheadBytes.
	PerCharOverheadBytes float64

	// Model extrapolates unique-salt growth beyond the sample. Nil
	// means TailRateModel.
	Model GrowthModel
}

func (o Options) withDefaults() Options {
	if o.SampleLines <= 0 {
		o.SampleLines = DefaultSampleLines
	}
	if o.CompressedMultiplier <= 0 {
		o.CompressedMultiplier = DefaultCompressedMultiplier
	}
	if o.GrowthFactor <= 0 {
		o.GrowthFactor = 1.0
	}
	if o.EntryOverheadBytes <= 0 {
		o.EntryOverheadBytes = DefaultEntryOverheadBytes
	}
	if o.PerCharOverheadBytes <= 0 {
		o.PerCharOverheadBytes = DefaultPerCharOverheadBytes
	}
	if o.Model == nil {
		o.Model = TailRateModel{}
	}
	return o
}

// Sample is the estimator's projection, consumed once by the backend
// selector.
type Sample struct {
	// LinesSampled and ValidSampled count lines read and lines that
	// parsed into a salt.
	LinesSampled int64
	ValidSampled int64

	// UniqueSampled is the distinct-salt count inside the sample.
	UniqueSampled int64

	// AvgSaltLen is the mean salt length over valid sampled lines.
	AvgSaltLen float64

	// AvgBytesPerLine is the mean decoded line length including the
	// terminator, used to extrapolate total lines from file size.
	AvgBytesPerLine float64

	// TotalUnknown is true when the input is compressed and total
	// lines cannot be derived from file size.
	TotalUnknown bool

	// ProjectedLines is the extrapolated total line count, zero when
	// TotalUnknown.
	ProjectedLines int64

	// ProjectedUniques is the model's extrapolated distinct-salt
	// count for the whole input.
	ProjectedUniques int64

	// ProjectedBytes is the projected memory footprint of a memory
	// backend holding ProjectedUniques salts.
	ProjectedBytes int64

	// Model names the growth model that produced the projection.
	Model string

	// Degenerate is true when the sample held no parseable lines.
	// Projections are zero and selection falls back to the memory
	// backend.
	Degenerate bool
}

// String renders the sample for log output.
func (s Sample) String() string {
	if s.Degenerate {
		return fmt.Sprintf("degenerate sample (%d lines, 0 valid)", s.LinesSampled)
	}
	lines := "unknown"
	if s.ProjectedLines > 0 {
		lines = humanize.Comma(s.ProjectedLines)
	}
	return fmt.Sprintf(
		"sampled %s lines (%s unique salts), projecting %s lines, %s uniques, %s resident",
		humanize.Comma(s.LinesSampled), humanize.Comma(s.UniqueSampled),
		lines, humanize.Comma(s.ProjectedUniques), humanize.Bytes(uint64(s.ProjectedBytes)),
	)
}

// growthCheckpoint records the unique count after a given number of
// sampled lines, so the tail window can be located after the sample
// ends at an unpredictable point.
type growthCheckpoint struct {
	lines   int64
	uniques int64
}

// Estimate samples up to Options.SampleLines lines from source
// through the extractor and projects unique-salt cardinality and
// memory need. The source is left positioned mid-stream; callers
// close it and re-open for the counting pass.
//
// A read error mid-sample is returned alongside the Sample built from
// whatever was read; estimation failures are advisory, so callers
// typically log and continue.
func Estimate(source *linesource.Source, extractor extract.Config, opts Options) (Sample, error) {
	opts = opts.withDefaults()

	seen := make(map[string]struct{})
	var checkpoints []growthCheckpoint
	checkpointEvery := opts.SampleLines / 64
	if checkpointEvery < 1 {
		checkpointEvery = 1
	}

	var lines, valid, saltBytes int64
	for lines < opts.SampleLines && source.Scan() {
		lines++
		salt, ok := extractor.Extract(source.Text())
		if ok {
			valid++
			saltBytes += int64(len(salt))
			seen[salt] = struct{}{}
		}
		if lines%checkpointEvery == 0 {
			checkpoints = append(checkpoints, growthCheckpoint{lines: lines, uniques: int64(len(seen))})
		}
	}
	readErr := source.Err()

	sample := Sample{
		LinesSampled:  lines,
		ValidSampled:  valid,
		UniqueSampled: int64(len(seen)),
		TotalUnknown:  source.TotalUnknown(),
		Model:         opts.Model.Name(),
	}
	if lines == 0 || valid == 0 {
		sample.Degenerate = true
		return sample, readErr
	}

	sample.AvgSaltLen = float64(saltBytes) / float64(valid)
	sample.AvgBytesPerLine = float64(source.BytesConsumed()) / float64(lines)

	if !sample.TotalUnknown && sample.AvgBytesPerLine > 0 {
		projected := int64(float64(source.FileSizeBytes()) / sample.AvgBytesPerLine)
		if projected < 1 {
			projected = 1
		}
		if projected < lines {
			projected = lines
		}
		sample.ProjectedLines = projected
	}

	stats := Stats{
		LinesSampled:         lines,
		UniqueSampled:        sample.UniqueSampled,
		ProjectedLines:       sample.ProjectedLines,
		CompressedMultiplier: opts.CompressedMultiplier,
		GrowthFactor:         opts.GrowthFactor,
	}
	stats.TailLines, stats.TailNewUniques = tailWindow(checkpoints, lines, int64(len(seen)))

	sample.ProjectedUniques = opts.Model.ProjectUniques(stats)
	if sample.ProjectedUniques < sample.UniqueSampled {
		sample.ProjectedUniques = sample.UniqueSampled
	}
	if sample.ProjectedLines > 0 && sample.ProjectedUniques > sample.ProjectedLines {
		sample.ProjectedUniques = sample.ProjectedLines
	}

	perUnique := opts.EntryOverheadBytes + opts.PerCharOverheadBytes*sample.AvgSaltLen
	sample.ProjectedBytes = int64(perUnique * float64(sample.ProjectedUniques))

	return sample, readErr
}

// tailWindow locates the checkpoint nearest the three-quarter mark of
// the sample and returns the line and new-unique counts observed
// after it. With no usable checkpoint the window is the whole sample.
func tailWindow(checkpoints []growthCheckpoint, lines, uniques int64) (tailLines, tailNewUniques int64) {
	target := lines - lines/4
	base := growthCheckpoint{}
	for _, cp := range checkpoints {
		if cp.lines <= target && cp.lines > base.lines {
			base = cp
		}
	}
	if base.lines >= lines {
		base = growthCheckpoint{}
	}
	return lines - base.lines, uniques - base.uniques
}
