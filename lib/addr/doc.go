// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package addr provides the validated account address type used
// throughout the recovery module.
//
// An [Address] is a 20-byte account identifier in the standard
// 0x-prefixed hex notation. Accounts and guardians are both addresses;
// a guardian identity is only meaningful relative to the account it
// guards, so the same address may appear as a guardian for many
// accounts. The type is an immutable value: once parsed it cannot be
// mutated, it is comparable (usable as a map key), and it round-trips
// through JSON and CBOR as its text form via MarshalText/UnmarshalText.
//
// The zero value is the zero address. Unlike most identifier types,
// the zero address is not rejected at parse time — it is a legal wire
// value that the registry and subject validators reject with their own
// domain errors (a guardian may never be the zero address, a new owner
// may never be the zero address). Use [Address.IsZero] to test for it.
//
// [SentinelOwner] is the owner-list head marker (0x…01) used by
// linked-list owner storage: when the owner being swapped out is the
// first entry, the sentinel stands in as its predecessor.
//
// This package has no dependencies on other recovery packages.
package addr
