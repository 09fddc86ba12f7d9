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
	"github.com/hashlist-tools/saltscan/lib/export"
	"github.com/hashlist-tools/saltscan/lib/extract"
	"github.com/hashlist-tools/saltscan/lib/linesource"
	"github.com/hashlist-tools/saltscan/lib/progress"
	"github.com/hashlist-tools/saltscan/lib/report"
)

// exportParams holds the standalone-export flags. The extractor
// settings must match the analyze run that built the database, or the
// re-derived keys will not line up with the stored ones.
type exportParams struct {
	dbPath       string
	separator    string
	hexSalts     string
	decodeErrors string

	emitCombined int
	emitPerSalt  int
	selectSalts  []string
	outputDir    string
	combinedName string

	progressEvery int64
	noProgress    bool
	colorMode     string
}

func exportCommand() *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Export salt groups using a saved counts database",
		Description: `Re-read a hashlist and write the original lines of selected salts into
per-salt and/or combined files, ranking targets from a counts database
saved by a previous analyze run.

Use the same --sep and --hex-salts settings as the analyze run:
extraction must produce the same salt keys for the stored ranking to
select the right lines.`,
		Usage: "saltscan export <file> --db <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Export the 10 most common salts into per-salt files",
				Command:     "saltscan export dump.txt --db counts.sqlite --emit-per-salt 10",
			},
			{
				Description: "Export one specific salt",
				Command:     "saltscan export dump.txt --db counts.sqlite --select-salt 'QXNkZg=='",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("export", pflag.ContinueOnError)
			flags.StringVar(&params.dbPath, "db", "", "counts database path (required)")
			flags.StringVar(&params.separator, "sep", ":", "separator between hash and salt")
			flags.StringVar(&params.hexSalts, "hex-salts", "keep", "$HEX[...] handling: keep or decode")
			flags.StringVar(&params.decodeErrors, "decode-errors", "replace", "invalid UTF-8 handling: replace, ignore, or strict")
			flags.IntVar(&params.emitCombined, "emit-combined", 0, "export the top N salts into one combined file")
			flags.IntVar(&params.emitPerSalt, "emit-per-salt", 0, "export the top N salts into per-salt files")
			flags.StringArrayVar(&params.selectSalts, "select-salt", nil, "export this exact salt (repeatable)")
			flags.StringVar(&params.outputDir, "output-dir", "salt_outputs", "directory for exported files")
			flags.StringVar(&params.combinedName, "combined-name", "", "combined export file name (default: combined_top<N>.txt)")
			flags.Int64Var(&params.progressEvery, "progress-every", 100000, "lines between progress reports")
			flags.BoolVar(&params.noProgress, "no-progress", false, "disable progress reports")
			flags.StringVar(&params.colorMode, "color", "auto", "console color: auto, always, or never")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one hashlist file argument, got %d", len(args))
			}
			if params.dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			if params.emitCombined <= 0 && params.emitPerSalt <= 0 && len(params.selectSalts) == 0 {
				return fmt.Errorf("nothing to export: set --emit-combined, --emit-per-salt, or --select-salt")
			}
			if err := configureColor(params.colorMode); err != nil {
				return err
			}
			return runExport(ctx, args[0], &params, logger.With("command", "export"))
		},
	}
}

func runExport(ctx context.Context, path string, params *exportParams, logger *slog.Logger) error {
	hexMode, err := extract.ParseHexMode(params.hexSalts)
	if err != nil {
		return err
	}
	if params.separator == "" {
		return fmt.Errorf("--sep must not be empty")
	}
	extractor := extract.Config{Separator: params.separator, HexMode: hexMode}

	policy, err := linesource.ParseDecodePolicy(params.decodeErrors)
	if err != nil {
		return err
	}

	if _, err := os.Stat(params.dbPath); err != nil {
		return fmt.Errorf("counts database %s: %w", params.dbPath, err)
	}
	backend, err := counter.OpenDisk(counter.DiskConfig{Path: params.dbPath, Logger: logger})
	if err != nil {
		return err
	}

	rankDepth := max(params.emitCombined, params.emitPerSalt)
	topEntries, err := report.TopN(backend, rankDepth)
	if err != nil {
		backend.Close()
		return err
	}
	if err := backend.Close(); err != nil {
		return err
	}

	plan := export.NewPlan(topEntries, params.emitCombined, params.emitPerSalt, params.selectSalts, extractor)
	if plan.Empty() {
		return fmt.Errorf("export plan is empty: the database holds no ranked salts and no selections were given")
	}

	combinedName := params.combinedName
	if combinedName == "" {
		combinedName = fmt.Sprintf("combined_top%d.txt", params.emitCombined)
	}

	src, err := linesource.Open(path, linesource.Options{Policy: policy})
	if err != nil {
		return err
	}
	defer src.Close()

	every := params.progressEvery
	if params.noProgress {
		every = 0
	}
	result, err := export.Run(ctx, src, extractor, plan, export.Sinks{
		Dir:          params.outputDir,
		CombinedName: combinedName,
		Logger:       logger,
	}, progress.New("export", every, logger, nil))
	if err != nil {
		return err
	}
	renderExportResult(os.Stdout, result)
	return nil
}
