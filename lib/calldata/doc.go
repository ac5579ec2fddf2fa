// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package calldata builds and hashes the owner-rotation calls that
// guardians collectively authorize.
//
// A recovery ultimately executes one low-level call against the target
// account's owner-management interface: swapOwner(prevOwner, oldOwner,
// newOwner). This package produces that call payload byte-for-byte —
// a 4-byte selector followed by 32-byte left-padded address operands —
// and computes the commitment digest binding a target account to the
// exact payload it will later execute. The outer recovery flow compares
// digests before acting: any drift between authorization time and
// execution time (a changed owner list, a reordered list, a different
// new owner) produces a different digest and invalidates the request
// instead of silently adapting.
//
// Selectors follow the standard convention: the first four bytes of the
// Keccak-256 hash of the canonical signature string. Digests are
// Keccak-256 as well, so they are directly comparable with hashes
// computed on-chain.
package calldata
