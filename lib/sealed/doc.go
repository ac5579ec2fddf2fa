// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed implements encrypted guardian-set backups.
//
// A [Bundle] captures one account's guardian set as the registry sees
// it: every guardian with its weight and lifecycle status, plus the
// threshold. [Snapshot] builds a bundle from a live registry under the
// account lock, [Seal] encodes it with deterministic CBOR and encrypts
// it to one or more age recipients, and [Open] reverses that with an
// identity key held in a secret.Buffer. [Bundle.Replay] restores the
// set into an empty account by driving the ordinary registry
// operations, so aggregates rebuild exactly and the restore itself is
// journaled like any other mutation.
//
// Identity private keys stay in mmap-backed secret.Buffer memory. The
// bundle plaintext itself is account metadata rather than key
// material, so Open decodes it directly into a Bundle value.
package sealed
