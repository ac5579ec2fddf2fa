// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package subject validates acceptance and recovery subjects: the
// structured messages through which untrusted input crosses into the
// guardian core's trust boundary.
//
// A subject is a fixed token template with typed {address} slots. Two
// templates exist, each the sole entry (index 0) of its flow:
//
//	Accept guardian request for {address}
//	Recover account {address} from old owner {address} to new owner {address}
//
// Callers hand in the template index and the already-extracted slot
// parameters; this package checks the shape (index 0, exact parameter
// count, each parameter a well-formed address) and the semantics
// against the target account's current owner set. How the parameters
// were extracted from an email or message, and whether the message
// itself is authentic, is the outer verification layer's concern and
// out of scope here.
//
// ValidateAcceptanceSubject returns the account a guardian is
// accepting for; nothing more is checked because the subsequent
// registry lookup (only requested guardians may accept) rejects
// invalid accounts implicitly.
//
// The Validator pairs the recovery-side checks with an OwnerProvider,
// the read-only query for an account's current authorized signers.
// ValidateRecoverySubject confirms the old owner currently is one and
// the new owner validly is not. RecoveryDataHash re-derives, byte for
// byte, the exact swap-owner call the recovery will eventually execute
// (including the linked-list predecessor of the old owner, with the
// sentinel when the old owner heads the list) and returns a Keccak-256
// commitment over the account and that payload. The executing layer
// must match this commitment exactly before acting; a stale or
// reordered owner list changes the hash and invalidates the request
// rather than silently adapting.
package subject
