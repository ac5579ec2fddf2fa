// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "recoveryctl",
		Subcommands: []*Command{
			{
				Name: "version",
				Run: func(args []string) error {
					called = "version"
					return nil
				},
			},
			{
				Name: "guardian",
				Run: func(args []string) error {
					called = "guardian"
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"guardian"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "guardian" {
		t.Errorf("dispatched to %q, want %q", called, "guardian")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "recoveryctl",
		Subcommands: []*Command{
			{
				Name: "guardian",
				Subcommands: []*Command{
					{
						Name: "accept",
						Run: func(args []string) error {
							called = "guardian accept"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute([]string{"guardian", "accept", "0x01"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "guardian accept" {
		t.Errorf("dispatched to %q, want %q", called, "guardian accept")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "0x01" {
		t.Errorf("args = %v, want [0x01]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var socketPath string
	var target string

	command := &Command{
		Name: "status",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flagSet.StringVar(&socketPath, "socket", "/default.sock", "socket path")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				target = args[0]
			}
			return nil
		},
	}

	if err := command.Execute([]string{"--socket", "/custom.sock", "extra"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if socketPath != "/custom.sock" {
		t.Errorf("socketPath = %q, want %q", socketPath, "/custom.sock")
	}
	if target != "extra" {
		t.Errorf("target = %q, want %q", target, "extra")
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.Bool("json", false, "output as JSON")
			flagSet.String("account", "", "account address")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--accuont", "0x01"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown flag")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "did you mean --account") {
		t.Errorf("error = %q, want suggestion for '--account'", errStr)
	}
	// Suggestion should be on the same line as the error, not buried.
	if !strings.Contains(errStr, "accuont") {
		t.Errorf("error = %q, should mention the bad flag", errStr)
	}
	// Should include a pointer to --help.
	if !strings.Contains(errStr, "--help") {
		t.Errorf("error = %q, should point to --help", errStr)
	}
}

func TestCommand_Execute_UnknownFlagNoSuggestion(t *testing.T) {
	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.Bool("json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--zzzzzzzzz"})
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
		Name: "recoveryctl",
		Subcommands: []*Command{
			{Name: "guardian"},
			{Name: "threshold"},
			{Name: "version"},
		},
	}

	err := root.Execute([]string{"guardain"})
	if err == nil {
		t.Fatal("Execute() = nil, want error for unknown subcommand")
	}
	if !strings.Contains(err.Error(), "did you mean \"guardian\"") {
		t.Errorf("error = %q, want suggestion for 'guardian'", err.Error())
	}
}

func TestCommand_Execute_UnknownSubcommandNoSuggestion(t *testing.T) {
	root := &Command{
		Name: "recoveryctl",
		Subcommands: []*Command{
			{Name: "guardian"},
			{Name: "threshold"},
		},
	}

	err := root.Execute([]string{"zzzzzzz"})
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
				Name:    "recoveryctl",
				Summary: "Guardian registry operations",
				Subcommands: []*Command{
					{Name: "guardian", Summary: "Guardian lifecycle"},
				},
			}

			err := root.Execute([]string{helpArg})
			if err != nil {
				t.Errorf("Execute(%q) error: %v", helpArg, err)
			}
		})
	}
}

func TestCommand_Execute_NoArgsShowsHelp(t *testing.T) {
	root := &Command{
		Name: "recoveryctl",
		Subcommands: []*Command{
			{Name: "guardian", Summary: "Guardian lifecycle"},
		},
	}

	err := root.Execute([]string{})
	if err == nil {
		t.Fatal("Execute() = nil, want error for missing subcommand")
	}
	if !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %q, want 'subcommand required'", err.Error())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	command := &Command{
		Name:        "recoveryctl",
		Description: "Social-recovery guardian administration.",
		Subcommands: []*Command{
			{Name: "guardian", Summary: "Guardian lifecycle operations"},
			{Name: "threshold", Summary: "Recovery threshold operations"},
			{Name: "version", Summary: "Print version information"},
		},
		Examples: []Example{
			{
				Description: "Set up an account's guardians from a manifest",
				Command:     "recoveryctl guardian setup --manifest guardians.jsonc",
			},
			{
				Description: "List an account's guardians",
				Command:     "recoveryctl guardian list --account 0xa0...",
			},
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	// Verify structural elements are present.
	for _, want := range []string{
		"Social-recovery guardian administration.",
		"Usage:",
		"recoveryctl <command> [flags]",
		"Commands:",
		"guardian",
		"Guardian lifecycle operations",
		"threshold",
		"Recovery threshold operations",
		"Examples:",
		"recoveryctl guardian setup --manifest guardians.jsonc",
		"recoveryctl guardian list",
		"Run 'recoveryctl <command> --help'",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_PrintHelp_WithFlags(t *testing.T) {
	command := &Command{
		Name:    "list",
		Summary: "List an account's guardians",
		Usage:   "recoveryctl guardian list --account <address> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.String("account", "", "account address")
			flagSet.Bool("json", false, "output as JSON")
			return flagSet
		},
	}

	var buffer bytes.Buffer
	command.PrintHelp(&buffer)
	output := buffer.String()

	for _, want := range []string{
		"recoveryctl guardian list --account <address> [flags]",
		"Flags:",
		"account",
		"json",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q\n\nFull output:\n%s", want, output)
		}
	}
}

func TestCommand_FullName(t *testing.T) {
	root := &Command{Name: "recoveryctl"}
	guardianCmd := &Command{Name: "guardian", parent: root}
	accept := &Command{Name: "accept", parent: guardianCmd}

	if got := root.fullName(); got != "recoveryctl" {
		t.Errorf("root.fullName() = %q, want %q", got, "recoveryctl")
	}
	if got := guardianCmd.fullName(); got != "recoveryctl guardian" {
		t.Errorf("guardian.fullName() = %q, want %q", got, "recoveryctl guardian")
	}
	if got := accept.fullName(); got != "recoveryctl guardian accept" {
		t.Errorf("accept.fullName() = %q, want %q", got, "recoveryctl guardian accept")
	}
}
