// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// DefaultMigrateThreshold is the live unique-salt count at which the
// Adaptive backend migrates from memory to disk.
const DefaultMigrateThreshold = 2_000_000

// AdaptiveConfig holds the parameters for the adaptive backend.
type AdaptiveConfig struct {
	// Threshold is the unique-salt count that triggers migration.
	// Defaults to DefaultMigrateThreshold when <= 0.
	Threshold int64

	// Disk configures the disk backend opened when migration
	// triggers. Disk.Path is required.
	Disk DiskConfig

	// Logger receives migration events. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Adaptive counts in memory until the unique-salt count crosses the
// configured threshold, then migrates once to disk: snapshot the
// memory table, replay it into a fresh disk store, and swap the
// active handle. The migration runs between Increment calls under the
// single-writer model, so no increment is lost or duplicated.
//
// A failed migration poisons the backend. Resuming in memory over a
// partially written disk store would undercount, so every later call
// returns the migration error.
type Adaptive struct {
	mem       *Memory
	disk      *Disk
	threshold int64
	diskCfg   DiskConfig
	logger    *slog.Logger
	failed    error
}

// NewAdaptive returns an adaptive backend starting in memory with the
// migration threshold armed.
func NewAdaptive(cfg AdaptiveConfig) (*Adaptive, error) {
	if cfg.Disk.Path == "" {
		return nil, fmt.Errorf("counter: adaptive backend: Disk.Path is required")
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = DefaultMigrateThreshold
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adaptive{
		mem:       NewMemory(),
		threshold: threshold,
		diskCfg:   cfg.Disk,
		logger:    logger,
	}, nil
}

// Migrated reports whether the backend has moved to disk.
func (a *Adaptive) Migrated() bool {
	return a.disk != nil
}

func (a *Adaptive) Increment(salt string) error {
	if a.failed != nil {
		return a.failed
	}
	if a.disk != nil {
		return a.disk.Increment(salt)
	}
	if err := a.mem.Increment(salt); err != nil {
		return err
	}
	uniques, err := a.mem.Len()
	if err != nil {
		return err
	}
	if uniques >= a.threshold {
		if err := a.migrate(uniques); err != nil {
			a.failed = err
			return err
		}
	}
	return nil
}

func (a *Adaptive) Len() (int64, error) {
	if a.failed != nil {
		return 0, a.failed
	}
	return a.active().Len()
}

func (a *Adaptive) Scan(fn func(Entry) error) error {
	if a.failed != nil {
		return a.failed
	}
	return a.active().Scan(fn)
}

func (a *Adaptive) ScanOrdered(fn func(Entry) error) error {
	if a.failed != nil {
		return a.failed
	}
	return a.active().ScanOrdered(fn)
}

func (a *Adaptive) Close() error {
	if a.disk != nil {
		return a.disk.Close()
	}
	return a.mem.Close()
}

func (a *Adaptive) active() Backend {
	if a.disk != nil {
		return a.disk
	}
	return a.mem
}

// migrate replays the memory snapshot into a fresh disk store and
// swaps the active handle. Counts and first-seen sequences carry over
// unchanged, so the resulting table is identical to one produced by
// an all-disk run over the same prefix.
func (a *Adaptive) migrate(uniques int64) error {
	a.logger.Info("unique salt threshold crossed, migrating counts to disk",
		"uniques", humanize.Comma(uniques),
		"threshold", humanize.Comma(a.threshold),
		"db", a.diskCfg.Path,
	)

	disk, err := OpenDisk(a.diskCfg)
	if err != nil {
		return fmt.Errorf("counter: migration: %w", err)
	}

	err = a.mem.Scan(func(e Entry) error {
		return disk.Import(e)
	})
	if err != nil {
		disk.Close()
		return fmt.Errorf("counter: migration: replaying snapshot: %w", err)
	}

	a.mem.Close()
	a.mem = nil
	a.disk = disk

	a.logger.Info("migration complete", "db", a.diskCfg.Path)
	return nil
}
