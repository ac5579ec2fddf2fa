// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for recoveryctl.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree in cmd/recoveryctl
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3). This is implemented in
// suggest.go.
//
// Command parameter structs bind their flags declaratively through
// struct tags via [FlagsFromParams]; embedding [JSONOutput] adds the
// --json flag and [JSONOutput.EmitJSON] for script-friendly output.
// [ExitError] lets a command exit non-zero without an error message,
// for checks whose failure is an answer rather than a fault.
package cli
