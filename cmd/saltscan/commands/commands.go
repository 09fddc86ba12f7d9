// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the saltscan CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashlist-tools/saltscan/cmd/saltscan/cli"
	"github.com/hashlist-tools/saltscan/lib/version"
)

// Root builds and returns the complete saltscan command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "saltscan",
		Description: `saltscan: salt-reuse analyzer for salted hashlists.

Count how often each distinct salt occurs in a hash:salt dump, report
the most common salts, and optionally re-export the original lines
grouped by salt. Inputs larger than memory spill transparently to a
SQLite counting backend.`,
		Subcommands: []*cli.Command{
			analyzeCommand(),
			reportCommand(),
			exportCommand(),
			modesCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("saltscan %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Analyze a dump and show the top 20 salts",
				Command:     "saltscan analyze dump.txt",
			},
			{
				Description: "Export the 5 most reused salt groups from a gzipped dump",
				Command:     "saltscan analyze dump.txt.gz --emit-per-salt 5",
			},
		},
	}
}
