// Copyright 2026 The Saltscan Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "saltscan",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "analyze",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					called = "analyze"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"analyze"}, discardLogger()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "analyze" {
		t.Errorf("dispatched to %q, want %q", called, "analyze")
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var separator string
	var target string

	command := &Command{
		Name: "analyze",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.StringVar(&separator, "sep", ":", "field separator")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	err := command.Execute(context.Background(), []string{"--sep", ";", "dump.txt"}, discardLogger())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if separator != ";" {
		t.Errorf("separator = %q, want %q", separator, ";")
	}
	if target != "dump.txt" {
		t.Errorf("target = %q, want %q", target, "dump.txt")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "analyze",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.Bool("no-preflight", false, "skip the sampling estimator")
			flagSet.String("method", "auto", "counting backend")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--mehtod", "mem"}, discardLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --method") {
		t.Errorf("error = %q, want suggestion for '--method'", errStr)
	}
	if !strings.Contains(errStr, "mehtod") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "analyze",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.Bool("no-preflight", false, "skip the sampling estimator")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--zzzzzzzzz"}, discardLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not suggest for distant flag", err.Error())
	}
	if !strings.Contains(err.Error(), "--help") {
		t.Errorf("error = %q, should point to --help", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name: "saltscan",
		Subcommands: []*Command{
			{Name: "analyze"},
			{Name: "report"},
			{Name: "version"},
		},
	}

	err := root.Execute(context.Background(), []string{"anaylze"}, discardLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"analyze\"") {
		t.Errorf("error = %q, want suggestion for 'analyze'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "saltscan",
		Subcommands: []*Command{
			{Name: "analyze"},
			{Name: "report"},
		},
	}

	err := root.Execute(context.Background(), []string{"zzzzzzz"}, discardLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %q, should not contain suggestion for distant input", err.Error())
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	for _, helpArg := range []string{"-h", "--help", "help"} {
		t.Run(helpArg, func(t *testing.T) {
			root := &Command{
				Name:    "saltscan",
				Summary: "Salt-reuse analyzer",
				Subcommands: []*Command{
					{Name: "analyze", Summary: "Count salts in a hashlist"},
				},
			}

			err := root.Execute(context.Background(), []string{helpArg}, discardLogger())
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "saltscan",
		Subcommands: []*Command{
			{Name: "analyze", Summary: "Count salts in a hashlist"},
		},
	}

	err := root.Execute(context.Background(), nil, discardLogger())
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "saltscan",
		Description: "Salt-reuse analyzer for salted hashlists.",
		Subcommands: []*Command{
			{Name: "analyze", Summary: "Count salts in a hashlist"},
			{Name: "modes", Summary: "List supported hashcat modes"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Analyze a dump and show the top 20 salts",
				Command:     "saltscan analyze dump.txt",
			},
			{
				Description: "Force the disk backend",
				Command:     "saltscan analyze dump.txt.gz --method disk --db counts.sqlite",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"Salt-reuse analyzer for salted hashlists.",
		"Usage:",
		"saltscan <command> [flags]",
		"Commands:",
		"analyze",
		"Count salts in a hashlist",
		"modes",
		"List supported hashcat modes",
		"Examples:",
		"saltscan analyze dump.txt",
		"Run 'saltscan <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "analyze",
		Summary: "Count salts in a hashlist",
		Usage:   "saltscan analyze <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
			flagSet.String("sep", ":", "hash/salt separator")
			flagSet.Int("top", 20, "salts to show")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"saltscan analyze <file> [flags]",
		"Flags:",
		"sep",
		"top",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "saltscan"}
	analyze := &Command{Name: "analyze", parent: root}

	if got := root.fullName(); got != "saltscan" {
		t.Errorf("root.fullName() = %q, want %q", got, "saltscan")
	}
	if got := analyze.fullName(); got != "saltscan analyze" {
		t.Errorf("analyze.fullName() = %q, want %q", got, "saltscan analyze")
	}
}
