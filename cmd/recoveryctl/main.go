// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/soloking1412/email-recovery/lib/cli"
	"github.com/soloking1412/email-recovery/lib/version"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (guardian get,
		// threshold get --check) return an ExitError with the desired
		// exit code. Don't print a redundant "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return root().Execute(os.Args[1:])
}

// root builds the complete recoveryctl command tree.
func root() *cli.Command {
	return &cli.Command{
		Name: "recoveryctl",
		Description: `recoveryctl: operator CLI for the email recovery daemon.

Manage per-account guardian sets, inspect recovery thresholds,
validate recovery email subjects, and export sealed guardian backups.`,
		Subcommands: []*cli.Command{
			guardianCommand(),
			thresholdCommand(),
			subjectCommand(),
			manifestCommand(),
			exportCommand(),
			importCommand(),
			keygenCommand(),
			eventsCommand(),
			statusCommand(),
			versionCommand(),
		},
	}
}

// versionCommand prints build information. Works without a daemon.
func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(_ []string) error {
			fmt.Printf("recoveryctl %s\n", version.Full())
			return nil
		},
	}
}
