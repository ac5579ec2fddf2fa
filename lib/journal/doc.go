// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal persists registry events as a tamper-evident,
// append-only log on disk.
//
// A journal is a directory of segment files. Records are CBOR-encoded
// registry events, each carrying a BLAKE3 chain value that binds it to
// every record before it. Sealed segments are compressed as a whole
// and written atomically; the segment currently being written lives
// uncompressed in journal.open, so appends are cheap and a crash loses
// at most the unflushed suffix.
//
// Verification recomputes the chain from the first available segment
// and compares it against the stored value of every record. This
// detects corruption, reordering and splicing, but not removal of the
// newest records: the chain keys are public constants, so anyone able
// to rewrite the whole suffix can forge a consistent chain.
// Deployments that need to rule that out must compare the chain head
// from Verify against a copy kept elsewhere, such as the daemon's
// status output.
//
// A Writer implements guardian.Sink and can be handed straight to the
// registry:
//
//	w, err := journal.OpenWriter("/var/lib/recovery/journal")
//	if err != nil {
//		...
//	}
//	defer w.Close()
//	registry := guardian.NewRegistry(store, guardian.WithSink(w))
package journal
