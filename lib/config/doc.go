// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the saltscan
// CLI.
//
// Configuration is loaded from a single file specified by either the
// SALTSCAN_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search; without an explicit file the built-in
// defaults in [Default] apply unchanged. Command-line flags override
// file values, and file values override the defaults.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- full defaults struct: Extract, Preflight, Backend,
//     Output, Progress
//   - [Default] -- returns the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- checks every field, reporting all errors
//     at once
package config
