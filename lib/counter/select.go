// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package counter

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// DefaultBudgetFraction is the share of available memory the
// projected in-memory table may use before the selector starts on
// disk from the outset.
const DefaultBudgetFraction = 0.6

// Method is the user-facing backend choice.
type Method int

const (
	// MethodAuto selects from the projection and available memory.
	MethodAuto Method = iota
	// MethodMemory forces the in-memory backend, with no migration.
	MethodMemory
	// MethodDisk forces the disk backend from the first line.
	MethodDisk
)

func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodMemory:
		return "mem"
	case MethodDisk:
		return "disk"
	default:
		return "unknown"
	}
}

// ParseMethod parses a backend method name. "sqlite" is accepted as
// an alias for "disk".
func ParseMethod(s string) (Method, error) {
	switch s {
	case "", "auto":
		return MethodAuto, nil
	case "mem", "memory":
		return MethodMemory, nil
	case "disk", "sqlite":
		return MethodDisk, nil
	}
	return 0, fmt.Errorf("counter: unknown method %q (want auto, mem, or disk)", s)
}

// SelectorConfig holds the inputs to backend selection.
type SelectorConfig struct {
	// Method forces a backend when not MethodAuto.
	Method Method

	// DBPath is where the disk store lives when disk is chosen or
	// migration triggers. Required unless Method is MethodMemory.
	DBPath string

	// BudgetFraction is the share of AvailableBytes the projection
	// may use before disk is chosen outright. Defaults to
	// DefaultBudgetFraction when <= 0.
	BudgetFraction float64

	// MigrateThreshold arms the adaptive backend's migration.
	// Defaults to DefaultMigrateThreshold when <= 0.
	MigrateThreshold int64

	// BatchSize is passed through to the disk backend.
	BatchSize int

	// ProjectedBytes is the estimator's projected resident size of a
	// fully in-memory count table. Zero when no estimate is
	// available.
	ProjectedBytes int64

	// AvailableBytes is the memory-availability signal. Zero when
	// unknown; selection then starts in memory with migration armed
	// rather than guessing a budget.
	AvailableBytes uint64

	// Logger receives the selection decision and migration events.
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// Decision records how the backend was chosen, for operator logs.
type Decision struct {
	// Kind is the backend counting starts on.
	Kind Kind
	// MigrationArmed reports whether a mid-stream migration to disk
	// can still occur.
	MigrationArmed bool
	// Reason is a human-readable account of the choice.
	Reason string
}

// Select chooses and opens the counting backend. Forced methods are
// honored unconditionally. In auto mode the backend starts on disk
// when the projected table exceeds the memory budget, and otherwise
// starts in memory with the migration threshold armed.
func Select(cfg SelectorConfig) (Backend, Decision, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	diskCfg := DiskConfig{
		Path:      cfg.DBPath,
		BatchSize: cfg.BatchSize,
		Logger:    logger,
	}

	switch cfg.Method {
	case MethodMemory:
		return NewMemory(), Decision{
			Kind:   KindMemory,
			Reason: "memory backend forced",
		}, nil
	case MethodDisk:
		disk, err := OpenDisk(diskCfg)
		if err != nil {
			return nil, Decision{}, err
		}
		return disk, Decision{
			Kind:   KindDisk,
			Reason: "disk backend forced",
		}, nil
	}

	adaptiveCfg := AdaptiveConfig{
		Threshold: cfg.MigrateThreshold,
		Disk:      diskCfg,
		Logger:    logger,
	}

	if cfg.AvailableBytes == 0 {
		adaptive, err := NewAdaptive(adaptiveCfg)
		if err != nil {
			return nil, Decision{}, err
		}
		logger.Warn("available memory unknown, starting in memory with migration armed",
			"migrate_threshold", humanize.Comma(adaptive.threshold),
		)
		return adaptive, Decision{
			Kind:           KindMemory,
			MigrationArmed: true,
			Reason:         "available memory unknown",
		}, nil
	}

	budget := cfg.BudgetFraction
	if budget <= 0 {
		budget = DefaultBudgetFraction
	}
	budgetBytes := int64(budget * float64(cfg.AvailableBytes))

	if cfg.ProjectedBytes > budgetBytes {
		disk, err := OpenDisk(diskCfg)
		if err != nil {
			return nil, Decision{}, err
		}
		return disk, Decision{
			Kind: KindDisk,
			Reason: fmt.Sprintf("projected table %s exceeds memory budget %s",
				humanize.Bytes(uint64(cfg.ProjectedBytes)), humanize.Bytes(uint64(budgetBytes))),
		}, nil
	}

	adaptive, err := NewAdaptive(adaptiveCfg)
	if err != nil {
		return nil, Decision{}, err
	}
	return adaptive, Decision{
		Kind:           KindMemory,
		MigrationArmed: true,
		Reason: fmt.Sprintf("projected table %s fits memory budget %s",
			humanize.Bytes(uint64(cfg.ProjectedBytes)), humanize.Bytes(uint64(budgetBytes))),
	}, nil
}
