// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Recovery-daemon is the long-running process that owns guardian
// bookkeeping for social recovery. It hosts one guardian registry over
// a SQLite-backed store, journals every state transition to an
// append-only hash-chained log, and serves queries and mutations over
// a Unix socket using the CBOR protocol.
//
// # Startup
//
// The daemon reads its configuration from the file named by the
// RECOVERY_CONFIG environment variable (or --config). It creates the
// state directories, loads guardian records and aggregates from the
// store, loads the static owner sets used for recovery subject
// validation, and starts listening on the configured socket path.
//
// # Socket API
//
// Recoveryctl and other local tooling connect to the daemon's Unix
// socket and send CBOR requests (one request per connection). The
// "action" field determines the operation: status, guardian/setup,
// guardian/add, guardian/accept, config/threshold, subject/recover,
// and so on. Failures carry the registry's machine-readable error
// kind in the response envelope, so callers can distinguish
// guardian-not-found from threshold-exceeds-total-weight without
// parsing message text.
//
// # Trust boundary
//
// The socket file's filesystem permissions are the access control.
// The daemon performs guardian bookkeeping and subject validation
// only; it verifies no email proofs and executes no recoveries.
package main
