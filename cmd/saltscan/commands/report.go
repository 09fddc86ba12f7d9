// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/hashlist-tools/saltscan/cmd/saltscan/cli"
	"github.com/hashlist-tools/saltscan/lib/counter"
	"github.com/hashlist-tools/saltscan/lib/report"
)

func reportCommand() *cli.Command {
	var dbPath string
	var top int
	var csvPath string
	var colorMode string

	return &cli.Command{
		Name:    "report",
		Summary: "Re-rank an existing counts database",
		Description: `Rank and summarize a counts database from a previous analyze run,
without rescanning the input.

The database stores one row per distinct salt, so only counted (valid)
occurrences are available here; total and invalid line counts belong
to the original pass and are reported by analyze.`,
		Usage: "saltscan report --db <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the top 50 salts from a saved database",
				Command:     "saltscan report --db counts.sqlite --top 50",
			},
			{
				Description: "Dump the full ranked distribution to CSV",
				Command:     "saltscan report --db counts.sqlite --csv distribution.csv",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("report", pflag.ContinueOnError)
			flags.StringVar(&dbPath, "db", "", "counts database path (required)")
			flags.IntVar(&top, "top", 20, "salts to show")
			flags.StringVar(&csvPath, "csv", "", "write the full distribution to this CSV file")
			flags.StringVar(&colorMode, "color", "auto", "console color: auto, always, or never")
			return flags
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			if err := configureColor(colorMode); err != nil {
				return err
			}
			return runReport(dbPath, top, csvPath, logger.With("command", "report"))
		},
	}
}

func runReport(dbPath string, top int, csvPath string, logger *slog.Logger) error {
	if _, err := os.Stat(dbPath); err != nil {
		return fmt.Errorf("counts database %s: %w", dbPath, err)
	}
	backend, err := counter.OpenDisk(counter.DiskConfig{Path: dbPath, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("closing counts database", "error", err)
		}
	}()

	// The stored table holds only valid occurrences; their sum is
	// the valid-line denominator.
	var validLines int64
	if err := backend.Scan(func(e counter.Entry) error {
		validLines += e.Count
		return nil
	}); err != nil {
		return err
	}
	uniques, err := backend.Len()
	if err != nil {
		return err
	}

	topEntries, err := report.TopN(backend, top)
	if err != nil {
		return err
	}

	renderStoreSummary(os.Stdout, validLines, uniques, dbPath)
	renderTop(os.Stdout, topEntries, validLines)

	if csvPath != "" {
		if err := writeCSVFile(csvPath, backend, validLines); err != nil {
			return err
		}
		logger.Info("distribution written", "path", csvPath)
	}
	return nil
}
