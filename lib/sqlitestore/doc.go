// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitestore persists the guardian registry in SQLite.
//
// [Store] implements guardian.Store with an in-memory working set in
// front of a write-through database mirror: reads are answered from
// memory, mutations update memory first and then their table row, and
// [Open] reloads the working set from the rows on disk. Three tables
// carry the state: guardians (one row per account/guardian pair),
// accounts (one row per aggregate config), and events (the append-only
// audit feed written by [Store.EventSink]).
//
// The guardian.Store contract has no error returns, so mirror writes
// fail softly: memory stays authoritative for the running process, the
// failure is logged, and [Store.Err] reports it until restart. Because
// record and aggregate updates mirror as separate statements, a crash
// between the two can reload aggregates one operation behind their
// records. That divergence is the same shape the registry itself
// produces when an account is torn down half-way, and the registry
// already defines behavior for it; the hash-chained journal holds the
// authoritative history of what happened.
package sqlitestore
