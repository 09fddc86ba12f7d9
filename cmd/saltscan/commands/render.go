// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"

	"github.com/hashlist-tools/saltscan/lib/counter"
	"github.com/hashlist-tools/saltscan/lib/export"
	"github.com/hashlist-tools/saltscan/lib/report"
)

// Console palette. ANSI 256-color codes for broad terminal
// compatibility, matching what lipgloss degrades gracefully from.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	saltStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("150"))
	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	percentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
)

// configureColor applies the --color flag. "auto" leaves lipgloss's
// own terminal detection in charge; "always" and "never" pin the
// profile regardless of where stdout points.
func configureColor(mode string) error {
	switch mode {
	case "", "auto":
		return nil
	case "always":
		lipgloss.SetColorProfile(termenv.ANSI256)
		return nil
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
		return nil
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always, or never)", mode)
	}
}

// renderSummary writes the headline counting results.
func renderSummary(w io.Writer, summary report.Summary) {
	fmt.Fprintln(w, titleStyle.Render("Salt distribution"))
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("total lines"), humanize.Comma(summary.TotalLines))
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("valid lines"), humanize.Comma(summary.ValidLines))
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("invalid lines"), humanize.Comma(summary.InvalidLines))
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("unique salts"), humanize.Comma(summary.UniqueSalts))
	tw.Flush()
}

// renderStoreSummary writes the headline results for a reopened
// counts database, where only valid occurrences survive. Total and
// invalid line counts belong to the original pass and are not stored.
func renderStoreSummary(w io.Writer, validLines, uniqueSalts int64, path string) {
	fmt.Fprintln(w, titleStyle.Render("Salt distribution"))
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("counts database"), path)
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("counted lines"), humanize.Comma(validLines))
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("unique salts"), humanize.Comma(uniqueSalts))
	tw.Flush()
}

// renderTop writes the ranked salt table. Percentages are relative to
// validLines, the denominator every saltscan surface uses.
func renderTop(w io.Writer, entries []counter.Entry, validLines int64) {
	if len(entries) == 0 {
		fmt.Fprintln(w, faintStyle.Render("no salts counted"))
		return
	}
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render(fmt.Sprintf("Top %d salts", len(entries))))
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n",
		headerStyle.Render("#"), headerStyle.Render("count"),
		headerStyle.Render("share"), headerStyle.Render("salt"))
	summary := report.Summary{ValidLines: validLines}
	for i, entry := range entries {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n",
			i+1,
			countStyle.Render(humanize.Comma(entry.Count)),
			percentStyle.Render(fmt.Sprintf("%.4f%%", summary.Percent(entry.Count))),
			saltStyle.Render(entry.Salt))
	}
	tw.Flush()
}

// renderExportResult writes the export pass outcome.
func renderExportResult(w io.Writer, result export.Result) {
	fmt.Fprintf(w, "\n%s\n", titleStyle.Render("Export"))
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("lines examined"), humanize.Comma(result.Examined))
	fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("lines written"), humanize.Comma(result.Emitted))
	if result.CombinedPath != "" {
		fmt.Fprintf(tw, "  %s\t%s\n", faintStyle.Render("combined file"), result.CombinedPath)
	}
	fmt.Fprintf(tw, "  %s\t%d\n", faintStyle.Render("per-salt files"), len(result.Files))
	tw.Flush()
	salts := make([]string, 0, len(result.Files))
	for salt := range result.Files {
		salts = append(salts, salt)
	}
	slices.Sort(salts)
	for _, salt := range salts {
		fmt.Fprintf(w, "    %s  %s\n",
			saltStyle.Render(salt),
			faintStyle.Render(fmt.Sprintf("%s (%s lines)", result.Files[salt], humanize.Comma(result.PerTarget[salt]))))
	}
}
