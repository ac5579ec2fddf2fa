// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/cli"
)

// socketExempt lists the commands that deliberately work without a
// daemon connection.
var socketExempt = map[string]bool{
	"recoveryctl version":           true,
	"recoveryctl keygen":            true,
	"recoveryctl manifest validate": true,
}

// TestCommandTree walks the full tree checking structural invariants:
// unique paths, a Run or subcommands on every node, and a --socket
// flag on every command that talks to the daemon. Calling Flags()
// also exercises every params struct's tag binding, which panics on
// mistakes.
func TestCommandTree(t *testing.T) {
	seen := make(map[string]bool)

	var walk func(prefix string, command *cli.Command)
	walk = func(prefix string, command *cli.Command) {
		if command.Name == "" {
			t.Errorf("command under %q has no name", prefix)
			return
		}
		path := command.Name
		if prefix != "" {
			path = prefix + " " + command.Name
		}
		if seen[path] {
			t.Errorf("duplicate command path %q", path)
		}
		seen[path] = true

		if prefix != "" && command.Summary == "" {
			t.Errorf("%q has no summary", path)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%q has neither Run nor subcommands", path)
		}

		var flagSet *pflag.FlagSet
		if command.Flags != nil {
			flagSet = command.Flags()
			if flagSet == nil {
				t.Errorf("%q Flags() returned nil", path)
			}
		}

		if command.Run != nil && len(command.Subcommands) == 0 {
			hasSocket := flagSet != nil && flagSet.Lookup("socket") != nil
			if hasSocket && socketExempt[path] {
				t.Errorf("%q has --socket but is listed as daemon-free", path)
			}
			if !hasSocket && !socketExempt[path] {
				t.Errorf("%q talks to the daemon but has no --socket flag", path)
			}
		}

		for _, sub := range command.Subcommands {
			walk(path, sub)
		}
	}

	walk("", root())
}

func TestSocketFlagEnvDefault(t *testing.T) {
	t.Setenv("RECOVERY_SOCKET", "/tmp/elsewhere.sock")

	var connection DaemonConnection
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	connection.AddFlags(flagSet)

	if connection.SocketPath != "/tmp/elsewhere.sock" {
		t.Errorf("SocketPath = %q, want env override", connection.SocketPath)
	}
}

func TestSocketFlagDefault(t *testing.T) {
	t.Setenv("RECOVERY_SOCKET", "")

	var connection DaemonConnection
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	connection.AddFlags(flagSet)

	if connection.SocketPath != defaultSocketPath {
		t.Errorf("SocketPath = %q, want %q", connection.SocketPath, defaultSocketPath)
	}
}
