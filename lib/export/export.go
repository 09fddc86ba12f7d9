// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package export re-reads the input and routes matching lines into
// output files.
//
// The export pass is the second (optional) pass over the hashlist:
// every line is re-extracted with the same configuration as the
// counting pass, and lines whose salt is in the [Plan] are written,
// verbatim, to a combined file and/or one dedicated file per salt.
// Sinks are buffered and opened lazily, so a plan with thousands of
// per-salt targets only creates files for salts that actually occur.
package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/zeebo/blake3"

	"github.com/hashlist-tools/saltscan/lib/counter"
	"github.com/hashlist-tools/saltscan/lib/extract"
	"github.com/hashlist-tools/saltscan/lib/linesource"
	"github.com/hashlist-tools/saltscan/lib/progress"
)

// Plan names the salts whose lines the export pass routes. Both sets
// hold canonicalized salts; membership tests are O(1) per line.
type Plan struct {
	// Combined receives every matching line in one shared file.
	Combined map[string]struct{}
	// PerSalt receives each salt's lines in a dedicated file.
	PerSalt map[string]struct{}
}

// Empty reports whether the plan routes nothing.
func (p Plan) Empty() bool {
	return len(p.Combined) == 0 && len(p.PerSalt) == 0
}

// NewPlan builds a plan from the ranked entries and explicit
// selections. The top combinedN salts (plus selections) go to the
// combined set when combinedN > 0; the top perSaltN salts (plus
// selections) go to the per-salt set when perSaltN > 0. Selections
// with neither route requested fall back to per-salt files. Explicit
// selections pass through the extractor's canonicalization so they
// name the same buckets the counting pass produced.
func NewPlan(top []counter.Entry, combinedN, perSaltN int, selected []string, extractor extract.Config) Plan {
	var plan Plan

	take := func(n int) map[string]struct{} {
		set := make(map[string]struct{})
		for i, e := range top {
			if i >= n {
				break
			}
			set[e.Salt] = struct{}{}
		}
		return set
	}
	addSelected := func(set map[string]struct{}) {
		for _, raw := range selected {
			if raw == "" {
				continue
			}
			set[extractor.Canonicalize(raw)] = struct{}{}
		}
	}

	if combinedN > 0 {
		plan.Combined = take(combinedN)
		addSelected(plan.Combined)
	}
	if perSaltN > 0 {
		plan.PerSalt = take(perSaltN)
		addSelected(plan.PerSalt)
	}
	if combinedN <= 0 && perSaltN <= 0 && len(selected) > 0 {
		plan.PerSalt = make(map[string]struct{})
		addSelected(plan.PerSalt)
	}
	return plan
}

// Sinks configures where the export pass writes.
type Sinks struct {
	// Dir is the output directory, created if missing.
	Dir string

	// CombinedName is the file name of the combined sink, relative
	// to Dir. Required when the plan has combined targets.
	CombinedName string

	// Logger receives per-file summaries. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Result summarizes a completed export pass. Emitted is the total
// number of line writes across all sinks; a line routed to both the
// combined file and a per-salt file counts twice.
type Result struct {
	Examined     int64
	Emitted      int64
	CombinedPath string
	PerTarget    map[string]int64
	Files        map[string]string
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

const maxSanitizedLen = 80

// SinkName returns the per-salt file name: a sanitized, length-capped
// rendering of the salt plus a short fingerprint of its raw bytes.
// The fingerprint keeps distinct salts in distinct files even when
// sanitizing collides (e.g. "a/b" and "a_b").
func SinkName(salt string) string {
	sanitized := unsafeNameChars.ReplaceAllString(salt, "_")
	if len(sanitized) > maxSanitizedLen {
		sanitized = sanitized[:maxSanitizedLen]
	}
	sum := blake3.Sum256([]byte(salt))
	return fmt.Sprintf("salt_%s_%x.txt", sanitized, sum[:4])
}

// Run executes the export pass: one forward read of source, routing
// each line whose extracted salt is in the plan. Lines are written
// exactly as read. An empty plan is a no-op. On error the partial
// output files are left in place but the error is returned; callers
// should treat the result as incomplete.
func Run(ctx context.Context, source *linesource.Source, extractor extract.Config, plan Plan, sinks Sinks, meter *progress.Meter) (Result, error) {
	result := Result{
		PerTarget: make(map[string]int64),
		Files:     make(map[string]string),
	}
	if plan.Empty() {
		return result, nil
	}
	if len(plan.Combined) > 0 && sinks.CombinedName == "" {
		return Result{}, fmt.Errorf("export: CombinedName is required for combined targets")
	}
	logger := sinks.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(sinks.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("export: creating output dir: %w", err)
	}

	var combined *sink
	perSalt := make(map[string]*sink)

	closeAll := func() error {
		var errs []error
		if combined != nil {
			if err := combined.close(); err != nil {
				errs = append(errs, err)
			}
		}
		for _, s := range perSalt {
			if err := s.close(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	run := func() error {
		for source.Scan() {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("export: pass cancelled: %w", err)
			}
			result.Examined++
			meter.Tick()

			line := source.Text()
			salt, ok := extractor.Extract(line)
			if !ok {
				continue
			}

			if _, ok := plan.Combined[salt]; ok {
				if combined == nil {
					s, err := openSink(filepath.Join(sinks.Dir, sinks.CombinedName))
					if err != nil {
						return err
					}
					combined = s
					result.CombinedPath = s.path
				}
				if err := combined.writeLine(line); err != nil {
					return err
				}
				result.Emitted++
			}

			if _, ok := plan.PerSalt[salt]; ok {
				s, ok := perSalt[salt]
				if !ok {
					var err error
					s, err = openSink(filepath.Join(sinks.Dir, SinkName(salt)))
					if err != nil {
						return err
					}
					perSalt[salt] = s
					result.Files[salt] = s.path
				}
				if err := s.writeLine(line); err != nil {
					return err
				}
				result.PerTarget[salt]++
				result.Emitted++
			}
		}
		if err := source.Err(); err != nil {
			return fmt.Errorf("export: reading %s: %w", source.Path(), err)
		}
		return nil
	}

	if err := run(); err != nil {
		if closeErr := closeAll(); closeErr != nil {
			logger.Error("closing export sinks after failure", "error", closeErr)
		}
		return Result{}, err
	}
	if err := closeAll(); err != nil {
		return Result{}, fmt.Errorf("export: closing sinks: %w", err)
	}
	meter.Finish()

	if combined != nil {
		logger.Info("combined export written",
			"path", result.CombinedPath,
			"lines", combined.lines,
		)
	}
	for salt, path := range result.Files {
		logger.Debug("per-salt export written",
			"salt", salt,
			"path", path,
			"lines", result.PerTarget[salt],
		)
	}
	return result, nil
}

// sink is one lazily opened, buffered output file.
type sink struct {
	file  *os.File
	w     *bufio.Writer
	path  string
	lines int64
}

func openSink(path string) (*sink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("export: creating %s: %w", path, err)
	}
	return &sink{
		file: file,
		w:    bufio.NewWriterSize(file, 1<<16),
		path: path,
	}, nil
}

func (s *sink) writeLine(line string) error {
	if _, err := s.w.WriteString(line); err != nil {
		return fmt.Errorf("export: writing %s: %w", s.path, err)
	}
	if err := s.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("export: writing %s: %w", s.path, err)
	}
	s.lines++
	return nil
}

// close flushes the buffer and closes the file. A flush failure means
// lost lines, so it is reported even though the file still closes.
func (s *sink) close() error {
	flushErr := s.w.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return fmt.Errorf("export: flushing %s: %w", s.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("export: closing %s: %w", s.path, closeErr)
	}
	return nil
}
