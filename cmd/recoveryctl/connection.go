// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/soloking1412/email-recovery/lib/socketapi"
)

// defaultSocketPath mirrors the daemon's default daemon.socket_path.
const defaultSocketPath = "/run/email-recovery/daemon.sock"

// DaemonConnection carries the --socket flag shared by every command
// that talks to the daemon. Params structs embed it; AddFlags makes
// it a [cli.FlagBinder] so flag registration happens once, here.
type DaemonConnection struct {
	SocketPath string
}

// AddFlags registers the --socket flag. The default comes from the
// RECOVERY_SOCKET environment variable when set, so scripts and
// sandboxes can point every invocation at a non-standard socket
// without repeating the flag.
func (c *DaemonConnection) AddFlags(flagSet *pflag.FlagSet) {
	defaultPath := defaultSocketPath
	if fromEnv := os.Getenv("RECOVERY_SOCKET"); fromEnv != "" {
		defaultPath = fromEnv
	}
	flagSet.StringVar(&c.SocketPath, "socket", defaultPath, "path to the recovery daemon socket")
}

// client returns a socket client for the configured path. Each call
// opens its own connection; there is no state to clean up.
func (c *DaemonConnection) client() *socketapi.Client {
	return socketapi.NewClient(c.SocketPath)
}

// callContext returns a context with a timeout covering one daemon
// round trip. Registry operations are in-memory with a synchronous
// SQLite mirror write; they complete in milliseconds unless the
// daemon host is badly overloaded.
func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
