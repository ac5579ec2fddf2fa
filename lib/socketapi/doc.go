// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package socketapi implements the CBOR request-response protocol
// between the recovery daemon and its clients, over a Unix socket.
//
// Each connection carries exactly one request and one response. A
// request is a single CBOR map with a required "action" field naming
// the operation plus action-specific fields; the response envelope is
// {ok, error, kind, data}. CBOR is self-delimiting, so there is no
// framing layer.
//
// The "kind" field carries the machine-readable failure kind when a
// handler's error implements [KindedError], which the registry and
// subject error types do. Clients dispatch on kinds via [HasKind]
// instead of matching message text.
//
// Access control is the socket file's filesystem permissions. The
// daemon serves local operators; there is no token or identity layer
// in the protocol.
package socketapi
