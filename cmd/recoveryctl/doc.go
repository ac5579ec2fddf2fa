// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// recoveryctl is the operator CLI for the recovery daemon. It speaks
// the daemon's CBOR socket API for guardian lifecycle operations,
// threshold management, subject validation, and event queries, and
// handles the client-side halves the daemon deliberately stays out
// of: manifest files (guardian setup --manifest) and age encryption
// for sealed backups (export, import, keygen).
//
// Every command that talks to the daemon takes --socket (or the
// RECOVERY_SOCKET environment variable) to locate the daemon's unix
// socket, and --json to emit machine-readable output instead of
// tables.
//
// Exit codes: 0 on success, 1 on error. Two commands use exit code 1
// as a queryable outcome rather than a failure: "guardian get" when
// the address is not a guardian, and "threshold get --check" when the
// accepted weight has not met the threshold.
package main
