// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [SocketDir] creates a temporary directory directly under /tmp for
// Unix domain sockets. Unix socket paths are limited to 108 bytes
// (sun_path in sockaddr_un), and t.TempDir() can exceed that on
// systems with deeply nested temp roots; a socket bind then fails
// with "invalid argument" far from the actual cause.
//
// [RequireReceive] wraps a channel receive with a timeout so a broken
// test fails with a message instead of hanging until the suite
// deadline.
package testutil

import (
	"os"
	"testing"
)

// SocketDir creates a short-pathed temporary directory for Unix
// domain sockets, removed when the test completes.
func SocketDir(t *testing.T) string {
	t.Helper()
	directory, err := os.MkdirTemp("/tmp", "recovery-test-*")
	if err != nil {
		t.Fatalf("creating socket directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.RemoveAll(directory)
	})
	return directory
}
