// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/hashlist-tools/saltscan/cmd/saltscan/cli"
	"github.com/hashlist-tools/saltscan/lib/config"
	"github.com/hashlist-tools/saltscan/lib/counter"
	"github.com/hashlist-tools/saltscan/lib/export"
	"github.com/hashlist-tools/saltscan/lib/extract"
	"github.com/hashlist-tools/saltscan/lib/hashmode"
	"github.com/hashlist-tools/saltscan/lib/linesource"
	"github.com/hashlist-tools/saltscan/lib/meminfo"
	"github.com/hashlist-tools/saltscan/lib/preflight"
	"github.com/hashlist-tools/saltscan/lib/progress"
	"github.com/hashlist-tools/saltscan/lib/report"
)

// analyzeParams holds every analyze flag. Flags overlay the config
// file only when set, so the zero values here never mask file
// defaults.
type analyzeParams struct {
	configPath string
	colorMode  string

	mode         int
	separator    string
	hexSalts     string
	decodeErrors string

	noPreflight  bool
	sampleLines  int64
	gzMultiplier float64
	growthModel  string

	method           string
	dbPath           string
	memBudget        float64
	migrateThreshold int64
	batchSize        int

	top          int
	csvPath      string
	emitCombined int
	emitPerSalt  int
	selectSalts  []string
	outputDir    string
	combinedName string

	progressEvery int64
	noProgress    bool
}

func analyzeCommand() *cli.Command {
	var params analyzeParams
	var flags *pflag.FlagSet

	return &cli.Command{
		Name:    "analyze",
		Summary: "Count salt reuse in a hashlist",
		Description: `Analyze a hash:salt dump, counting how often each distinct salt occurs.

The input is read in one streaming pass; a preflight sample first
projects the unique-salt cardinality so counting can start on the
in-memory backend when the table fits the memory budget, or directly
on the SQLite disk backend when it will not. A run that starts in
memory migrates to disk once, automatically, if the live unique count
crosses the migration threshold.

With --emit-combined, --emit-per-salt, or --select-salt, a second pass
re-reads the input and writes the original lines of the selected salts
into the output directory.`,
		Usage: "saltscan analyze <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show the 20 most common salts",
				Command:     "saltscan analyze dump.txt",
			},
			{
				Description: "Analyze a gzipped dump and export the top 5 salt groups",
				Command:     "saltscan analyze dump.txt.gz --emit-per-salt 5",
			},
			{
				Description: "Force the disk backend into a reusable database",
				Command:     "saltscan analyze dump.txt --method disk --db counts.sqlite",
			},
			{
				Description: "Collapse $HEX[...] case variants and export one salt",
				Command:     "saltscan analyze dump.txt --hex-salts decode --select-salt '$HEX[c3a9]'",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags = pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flags.StringVar(&params.configPath, "config", "", "config file (overrides SALTSCAN_CONFIG)")
			flags.StringVar(&params.colorMode, "color", "auto", "console color: auto, always, or never")

			flags.IntVar(&params.mode, "mode", 0, "hashcat mode of the hashlist (label only; see 'saltscan modes')")
			flags.StringVar(&params.separator, "sep", ":", "separator between hash and salt")
			flags.StringVar(&params.hexSalts, "hex-salts", "keep", "$HEX[...] handling: keep or decode")
			flags.StringVar(&params.decodeErrors, "decode-errors", "replace", "invalid UTF-8 handling: replace, ignore, or strict")

			flags.BoolVar(&params.noPreflight, "no-preflight", false, "skip the sampling estimator")
			flags.Int64Var(&params.sampleLines, "sample-lines", preflight.DefaultSampleLines, "lines the estimator samples")
			flags.Float64Var(&params.gzMultiplier, "gz-multiplier", preflight.DefaultCompressedMultiplier, "projection multiplier for compressed input")
			flags.StringVar(&params.growthModel, "growth-model", "tail-rate", "unique-growth model: tail-rate or overall-rate")

			flags.StringVar(&params.method, "method", "auto", "counting backend: auto, mem, or disk")
			flags.StringVar(&params.dbPath, "db", "", "counts database path (default: fresh file under a temp dir)")
			flags.Float64Var(&params.memBudget, "mem-budget", counter.DefaultBudgetFraction, "fraction of available memory the table may use")
			flags.Int64Var(&params.migrateThreshold, "migrate-threshold", counter.DefaultMigrateThreshold, "unique salts that trigger migration to disk")
			flags.IntVar(&params.batchSize, "batch-size", counter.DefaultBatchSize, "disk backend increments per transaction")

			flags.IntVar(&params.top, "top", 20, "salts to show in the summary")
			flags.StringVar(&params.csvPath, "csv", "", "write the full distribution to this CSV file")
			flags.IntVar(&params.emitCombined, "emit-combined", 0, "export the top N salts into one combined file")
			flags.IntVar(&params.emitPerSalt, "emit-per-salt", 0, "export the top N salts into per-salt files")
			flags.StringArrayVar(&params.selectSalts, "select-salt", nil, "export this exact salt (repeatable)")
			flags.StringVar(&params.outputDir, "output-dir", "", "directory for exported files (default: salt_outputs)")
			flags.StringVar(&params.combinedName, "combined-name", "", "combined export file name (default: combined_top<N>.txt)")

			flags.Int64Var(&params.progressEvery, "progress-every", 100000, "lines between progress reports")
			flags.BoolVar(&params.noProgress, "no-progress", false, "disable progress reports")
			return flags
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one hashlist file argument, got %d", len(args))
			}
			return runAnalyze(ctx, args[0], &params, flags, logger.With("command", "analyze"))
		},
	}
}

// loadConfig merges the built-in defaults, the optional config file,
// and any changed flags, in that order.
func loadConfig(params *analyzeParams, flags *pflag.FlagSet) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if params.configPath != "" {
		cfg, err = config.LoadFile(params.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flags.Changed("sep") {
		cfg.Extract.Separator = params.separator
	}
	if flags.Changed("hex-salts") {
		cfg.Extract.HexSalts = params.hexSalts
	}
	if flags.Changed("decode-errors") {
		cfg.Extract.DecodeErrors = params.decodeErrors
	}
	if flags.Changed("sample-lines") {
		cfg.Preflight.SampleLines = params.sampleLines
	}
	if flags.Changed("gz-multiplier") {
		cfg.Preflight.CompressedMultiplier = params.gzMultiplier
	}
	if flags.Changed("growth-model") {
		cfg.Preflight.Model = params.growthModel
	}
	if flags.Changed("method") {
		cfg.Backend.Method = params.method
	}
	if flags.Changed("db") {
		cfg.Backend.DBPath = params.dbPath
	}
	if flags.Changed("mem-budget") {
		cfg.Backend.MemBudgetFraction = params.memBudget
	}
	if flags.Changed("migrate-threshold") {
		cfg.Backend.MigrateThreshold = params.migrateThreshold
	}
	if flags.Changed("batch-size") {
		cfg.Backend.BatchSize = params.batchSize
	}
	if flags.Changed("output-dir") {
		cfg.Output.Dir = params.outputDir
	}
	if flags.Changed("top") {
		cfg.Output.Top = params.top
	}
	if flags.Changed("progress-every") {
		cfg.Progress.Every = params.progressEvery
	}
	if params.noProgress {
		cfg.Progress.Every = 0
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runAnalyze(ctx context.Context, path string, params *analyzeParams, flags *pflag.FlagSet, logger *slog.Logger) error {
	cfg, err := loadConfig(params, flags)
	if err != nil {
		return err
	}
	if err := configureColor(params.colorMode); err != nil {
		return err
	}

	if flags.Changed("mode") {
		label, ok := hashmode.Description(params.mode)
		if !ok {
			return fmt.Errorf("unsupported hashcat mode %d (run 'saltscan modes' for the list)", params.mode)
		}
		logger.Info("hashlist mode", "mode", params.mode, "algorithm", label)
	}

	hexMode, err := extract.ParseHexMode(cfg.Extract.HexSalts)
	if err != nil {
		return err
	}
	extractor := extract.Config{Separator: cfg.Extract.Separator, HexMode: hexMode}

	policy, err := linesource.ParseDecodePolicy(cfg.Extract.DecodeErrors)
	if err != nil {
		return err
	}
	sourceOpts := linesource.Options{Policy: policy}

	model, err := preflight.ParseGrowthModel(cfg.Preflight.Model)
	if err != nil {
		return err
	}

	// Preflight: sample the front of the input, then discard the
	// sample state and re-open for the real pass.
	var sample preflight.Sample
	if !params.noPreflight {
		src, err := linesource.Open(path, sourceOpts)
		if err != nil {
			return err
		}
		sample, err = preflight.Estimate(src, extractor, preflight.Options{
			SampleLines:          cfg.Preflight.SampleLines,
			CompressedMultiplier: cfg.Preflight.CompressedMultiplier,
			GrowthFactor:         cfg.Preflight.GrowthFactor,
			Model:                model,
		})
		closeErr := src.Close()
		if err != nil {
			// Estimation is advisory: a truncated sample still
			// informs selection, and the counting pass will surface
			// any persistent read failure itself.
			logger.Warn("preflight sampling incomplete", "error", err)
		}
		if closeErr != nil {
			logger.Warn("closing preflight source", "error", closeErr)
		}
		logger.Info("preflight estimate", "sample", sample.String())
	}

	mem := meminfo.Probe()

	// A fresh temp-dir database per run unless the user pointed at
	// one. Memory-forced runs never touch disk and skip the setup.
	method, err := counter.ParseMethod(cfg.Backend.Method)
	if err != nil {
		return err
	}
	dbPath := cfg.Backend.DBPath
	if dbPath == "" && method != counter.MethodMemory {
		dir, err := os.MkdirTemp("", "saltscan-")
		if err != nil {
			return fmt.Errorf("creating counts database directory: %w", err)
		}
		dbPath = filepath.Join(dir, "salt_counts.sqlite")
		logger.Info("counts database", "path", dbPath)
	}

	backend, decision, err := counter.Select(counter.SelectorConfig{
		Method:           method,
		DBPath:           dbPath,
		BudgetFraction:   cfg.Backend.MemBudgetFraction,
		MigrateThreshold: cfg.Backend.MigrateThreshold,
		BatchSize:        cfg.Backend.BatchSize,
		ProjectedBytes:   sample.ProjectedBytes,
		AvailableBytes:   mem.AvailableBytes,
		Logger:           logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("closing backend", "error", err)
		}
	}()
	logger.Info("backend selected", "backend", decision.Kind.String(), "reason", decision.Reason)

	// Counting pass.
	src, err := linesource.Open(path, sourceOpts)
	if err != nil {
		return err
	}
	meter := progress.New("count", cfg.Progress.Every, logger, nil)
	stats, err := counter.Count(ctx, src, extractor, backend, meter)
	closeErr := src.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	summary, err := report.BuildSummary(stats, backend)
	if err != nil {
		return err
	}
	if adaptive, ok := backend.(*counter.Adaptive); ok && adaptive.Migrated() {
		logger.Info("counting migrated to disk mid-run", "db", dbPath)
	}

	rankDepth := max(cfg.Output.Top, params.emitCombined, params.emitPerSalt)
	topEntries, err := report.TopN(backend, rankDepth)
	if err != nil {
		return err
	}

	renderSummary(os.Stdout, summary)
	shown := topEntries
	if len(shown) > cfg.Output.Top {
		shown = shown[:cfg.Output.Top]
	}
	renderTop(os.Stdout, shown, summary.ValidLines)

	if params.csvPath != "" {
		if err := writeCSVFile(params.csvPath, backend, summary.ValidLines); err != nil {
			return err
		}
		logger.Info("distribution written", "path", params.csvPath)
	}

	// Export pass, only when the flags produce a non-empty plan.
	plan := export.NewPlan(topEntries, params.emitCombined, params.emitPerSalt, params.selectSalts, extractor)
	if plan.Empty() {
		return nil
	}

	combinedName := params.combinedName
	if combinedName == "" {
		combinedName = fmt.Sprintf("combined_top%d.txt", params.emitCombined)
	}
	exportSrc, err := linesource.Open(path, sourceOpts)
	if err != nil {
		return err
	}
	defer exportSrc.Close()

	result, err := export.Run(ctx, exportSrc, extractor, plan, export.Sinks{
		Dir:          cfg.Output.Dir,
		CombinedName: combinedName,
		Logger:       logger,
	}, progress.New("export", cfg.Progress.Every, logger, nil))
	if err != nil {
		return err
	}
	renderExportResult(os.Stdout, result)
	return nil
}

// writeCSVFile streams the full ranked distribution into path.
func writeCSVFile(path string, backend counter.Backend, validLines int64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := report.WriteCSV(file, backend, validLines); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
