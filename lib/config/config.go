// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/hashlist-tools/saltscan/lib/counter"
	"github.com/hashlist-tools/saltscan/lib/extract"
	"github.com/hashlist-tools/saltscan/lib/linesource"
	"github.com/hashlist-tools/saltscan/lib/preflight"
)

// Config is the full set of analyzer defaults the file may override.
type Config struct {
	// Extract configures how lines are split into salts.
	Extract ExtractConfig `yaml:"extract"`

	// Preflight configures the sampling estimator.
	Preflight PreflightConfig `yaml:"preflight"`

	// Backend configures counting storage selection.
	Backend BackendConfig `yaml:"backend"`

	// Output configures reporting and export destinations.
	Output OutputConfig `yaml:"output"`

	// Progress configures progress reporting.
	Progress ProgressConfig `yaml:"progress"`
}

// ExtractConfig configures salt extraction.
type ExtractConfig struct {
	// Separator splits hash from salt at its first occurrence.
	// Default: ":"
	Separator string `yaml:"separator"`

	// HexSalts selects $HEX[...] handling: "keep" or "decode".
	// Default: keep
	HexSalts string `yaml:"hex_salts"`

	// DecodeErrors selects invalid-UTF-8 handling: "replace",
	// "ignore", or "strict".
	// Default: replace
	DecodeErrors string `yaml:"decode_errors"`
}

// PreflightConfig configures the sampling estimator.
type PreflightConfig struct {
	// SampleLines is how many lines the estimator reads.
	// Default: 200000
	SampleLines int64 `yaml:"sample_lines"`

	// CompressedMultiplier inflates projections for compressed input
	// with unknown total size.
	// Default: 10.0
	CompressedMultiplier float64 `yaml:"compressed_multiplier"`

	// GrowthFactor scales extrapolated unique growth. Raise it to
	// bias selection toward the disk backend.
	// Default: 1.0
	GrowthFactor float64 `yaml:"growth_factor"`

	// Model selects the growth model: "tail-rate" or "overall-rate".
	// Default: tail-rate
	Model string `yaml:"model"`
}

// BackendConfig configures counting storage.
type BackendConfig struct {
	// Method forces a backend: "auto", "mem", or "disk".
	// Default: auto
	Method string `yaml:"method"`

	// DBPath is the counts database location. Empty means a fresh
	// database under a new temporary directory each run.
	DBPath string `yaml:"db_path"`

	// MemBudgetFraction is the share of available memory the
	// projected table may use before disk is chosen outright.
	// Default: 0.6
	MemBudgetFraction float64 `yaml:"mem_budget_fraction"`

	// MigrateThreshold is the unique-salt count that triggers
	// mid-run migration to disk.
	// Default: 2000000
	MigrateThreshold int64 `yaml:"migrate_threshold"`

	// BatchSize is the disk backend's increments-per-transaction.
	// Default: 5000
	BatchSize int `yaml:"batch_size"`
}

// OutputConfig configures reporting and export destinations.
type OutputConfig struct {
	// Dir receives exported hashlist files.
	// Default: salt_outputs
	Dir string `yaml:"dir"`

	// Top is how many salts the console summary shows.
	// Default: 20
	Top int `yaml:"top"`
}

// ProgressConfig configures progress reporting.
type ProgressConfig struct {
	// Every is the line interval between progress reports. Zero or
	// negative disables them.
	// Default: 100000
	Every int64 `yaml:"every"`
}

// Default returns the built-in configuration. These are the values
// every run starts from; a config file and then flags override them.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Separator:    ":",
			HexSalts:     "keep",
			DecodeErrors: "replace",
		},
		Preflight: PreflightConfig{
			SampleLines:          preflight.DefaultSampleLines,
			CompressedMultiplier: preflight.DefaultCompressedMultiplier,
			GrowthFactor:         1.0,
			Model:                "tail-rate",
		},
		Backend: BackendConfig{
			Method:            "auto",
			MemBudgetFraction: counter.DefaultBudgetFraction,
			MigrateThreshold:  counter.DefaultMigrateThreshold,
			BatchSize:         counter.DefaultBatchSize,
		},
		Output: OutputConfig{
			Dir: "salt_outputs",
			Top: 20,
		},
		Progress: ProgressConfig{
			Every: 100000,
		},
	}
}

// Load loads configuration from the SALTSCAN_CONFIG environment
// variable. An unset variable is not an error: the config file is
// optional and the built-in defaults are returned.
func Load() (*Config, error) {
	path := os.Getenv("SALTSCAN_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults. The only expansion performed is ${VAR} and
// ${VAR:-default} in path fields, for portability of shared config
// files.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in the
// path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Output.Dir = expandVars(c.Output.Dir, vars)
	c.Backend.DBPath = expandVars(c.Backend.DBPath, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors, reporting all of them
// at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Extract.Separator == "" {
		errs = append(errs, fmt.Errorf("extract.separator is required"))
	}
	if _, err := extract.ParseHexMode(c.Extract.HexSalts); err != nil {
		errs = append(errs, fmt.Errorf("extract.hex_salts: %w", err))
	}
	if _, err := linesource.ParseDecodePolicy(c.Extract.DecodeErrors); err != nil {
		errs = append(errs, fmt.Errorf("extract.decode_errors: %w", err))
	}

	if c.Preflight.SampleLines <= 0 {
		errs = append(errs, fmt.Errorf("preflight.sample_lines must be positive"))
	}
	if c.Preflight.CompressedMultiplier < 1 {
		errs = append(errs, fmt.Errorf("preflight.compressed_multiplier must be at least 1"))
	}
	if c.Preflight.GrowthFactor <= 0 {
		errs = append(errs, fmt.Errorf("preflight.growth_factor must be positive"))
	}
	if _, err := preflight.ParseGrowthModel(c.Preflight.Model); err != nil {
		errs = append(errs, fmt.Errorf("preflight.model: %w", err))
	}

	if _, err := counter.ParseMethod(c.Backend.Method); err != nil {
		errs = append(errs, fmt.Errorf("backend.method: %w", err))
	}
	if c.Backend.MemBudgetFraction <= 0 || c.Backend.MemBudgetFraction > 1 {
		errs = append(errs, fmt.Errorf("backend.mem_budget_fraction must be in (0, 1]"))
	}
	if c.Backend.MigrateThreshold <= 0 {
		errs = append(errs, fmt.Errorf("backend.migrate_threshold must be positive"))
	}
	if c.Backend.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("backend.batch_size must be positive"))
	}

	if c.Output.Dir == "" {
		errs = append(errs, fmt.Errorf("output.dir is required"))
	}
	if c.Output.Top < 0 {
		errs = append(errs, fmt.Errorf("output.top must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
