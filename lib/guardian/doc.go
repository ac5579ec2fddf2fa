// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package guardian implements the social-recovery guardian registry: a
// per-account set of guardian identities, each with a voting weight,
// whose combined accepted weight must reach an account-configured
// threshold before a recovery action is authorizable.
//
// Per (account, guardian) the registry keeps a Record{Status, Weight};
// per account it keeps the aggregate Config{GuardianCount, TotalWeight,
// AcceptedWeight, Threshold}. A guardian's lifecycle is
//
//	absent → requested → accepted | revoked → absent
//
// created by AddGuardian (or SetupGuardians in batch), transitioned by
// UpdateGuardianStatus / AcceptGuardian / RevokeGuardian, and destroyed
// by RemoveGuardian / RemoveAllGuardians.
//
// # Invariants
//
// After every mutation:
//
//   - Threshold == 0 exactly when setup has never completed.
//   - Threshold <= TotalWeight whenever Threshold != 0. RemoveGuardian
//     enforces this on its pre-mutation snapshot: a removal that would
//     make the threshold unreachable is rejected outright.
//   - AcceptedWeight equals the sum of weights over accepted records,
//     maintained incrementally, never by scanning.
//   - TotalWeight equals the sum of weights over all live records.
//   - A guardian address is never zero and never the account it guards.
//   - At most one live record per (account, guardian).
//
// # Concurrency
//
// State is partitioned per account. Mutations on one account serialize
// through a per-account lock; accounts never contend with each other.
// Each operation reads, validates against the pre-mutation snapshot,
// and only then writes, so failures leave no partial state behind.
//
// # Errors and events
//
// Every failure is a *Error carrying one Kind from a closed set;
// callers dispatch with errors.As or IsKind. Absence deliberately
// doubles as "not authorized": the registry has no ACL, so
// KindGuardianNotFound and KindAddressNotGuardianForAccount are raised
// where an unauthorized actor would otherwise be rejected.
//
// Mutations emit Events (AddedGuardian, GuardianStatusUpdated,
// RemovedGuardian, ChangedThreshold) to a configurable Sink after they
// have fully applied. Events are the audit trail; a journal-backed
// sink makes them durable.
//
// Out of scope: verifying acceptance or recovery messages (package
// subject extracts and validates those), and deciding when a recovery
// may execute. ThresholdMet exposes the aggregate read; the decision
// stays with the caller.
package guardian
