// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package progress emits periodic structured progress reports for
// long file passes.
//
// A [Meter] counts lines and logs a progress record through slog
// every N lines, with the cumulative rate computed against an
// injected clock. A nil *Meter is valid and silent, so callers pass
// the meter straight through without guarding every Tick.
package progress

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/hashlist-tools/saltscan/lib/clock"
)

// Meter reports line progress through a logger at a fixed line
// interval. Not safe for concurrent use; each pass owns its meter.
type Meter struct {
	label   string
	every   int64
	logger  *slog.Logger
	clk     clock.Clock
	lines   int64
	started time.Time
}

// New returns a meter labelled with the pass name that reports every
// `every` lines. Returns nil when every <= 0; the nil meter is safe
// to use and does nothing. A nil logger discards reports and a nil
// clock uses real time.
func New(label string, every int64, logger *slog.Logger, clk clock.Clock) *Meter {
	if every <= 0 {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Meter{
		label:   label,
		every:   every,
		logger:  logger,
		clk:     clk,
		started: clk.Now(),
	}
}

// Tick records one processed line and reports when the line count
// reaches a multiple of the configured interval.
func (m *Meter) Tick() {
	if m == nil {
		return
	}
	m.lines++
	if m.lines%m.every == 0 {
		m.report("progress")
	}
}

// Lines returns the number of lines ticked so far.
func (m *Meter) Lines() int64 {
	if m == nil {
		return 0
	}
	return m.lines
}

// Finish emits a final report with the pass totals. Call once when
// the pass completes.
func (m *Meter) Finish() {
	if m == nil {
		return
	}
	m.report("pass complete")
}

func (m *Meter) report(msg string) {
	elapsed := m.clk.Now().Sub(m.started)
	perSec := int64(0)
	if seconds := elapsed.Seconds(); seconds > 0 {
		perSec = int64(float64(m.lines) / seconds)
	}
	m.logger.Info(msg,
		"pass", m.label,
		"lines", humanize.Comma(m.lines),
		"lines_per_sec", humanize.Comma(perSec),
		"elapsed", elapsed.Round(time.Millisecond).String(),
	)
}
