// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/hashlist-tools/saltscan/cmd/saltscan/cli"
	"github.com/hashlist-tools/saltscan/lib/hashmode"
)

func modesCommand() *cli.Command {
	return &cli.Command{
		Name:    "modes",
		Summary: "List supported hashcat modes",
		Description: `List the salted hashcat modes this tool knows labels for.

The mode is metadata only: the analyzer never inspects the hash field,
so any hash:salt list works regardless of mode. Passing --mode to
analyze just validates the number and labels the run.`,
		Usage: "saltscan modes",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			fmt.Println(titleStyle.Render("Supported hashcat modes"))
			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
			for _, mode := range hashmode.All() {
				fmt.Fprintf(tw, "  %s\t%s\n",
					countStyle.Render(fmt.Sprintf("%d", mode.Number)),
					mode.Label)
			}
			return tw.Flush()
		},
	}
}
