// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package guardian

import (
	"errors"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// Kind identifies a registry failure. The set is closed: every error
// returned by registry operations carries exactly one of these kinds,
// and callers dispatch on the kind rather than on message text.
type Kind string

const (
	// KindIncorrectNumberOfWeights: a setup call supplied guardian and
	// weight slices of different lengths. Always a caller bug.
	KindIncorrectNumberOfWeights Kind = "incorrect-number-of-weights"

	// KindThresholdCannotBeZero: zero is the "never set up" sentinel,
	// not a legal operating threshold.
	KindThresholdCannotBeZero Kind = "threshold-cannot-be-zero"

	// KindThresholdExceedsTotalWeight: the requested threshold (or the
	// threshold implied by a removal) exceeds the account's total
	// guardian weight, which would make recovery permanently
	// unauthorizable.
	KindThresholdExceedsTotalWeight Kind = "threshold-exceeds-total-weight"

	// KindInvalidGuardianAddress: the guardian address is zero or equal
	// to the account it would guard.
	KindInvalidGuardianAddress Kind = "invalid-guardian-address"

	// KindInvalidGuardianWeight: a guardian weight of zero carries no
	// voting power and is rejected.
	KindInvalidGuardianWeight Kind = "invalid-guardian-weight"

	// KindAddressAlreadyGuardian: the address already has a live record
	// for this account.
	KindAddressAlreadyGuardian Kind = "address-already-guardian"

	// KindStatusCannotBeTheSame: a status update must change the
	// status; self-transitions are forbidden.
	KindStatusCannotBeTheSame Kind = "status-cannot-be-the-same"

	// KindGuardianNotFound: lookup and status-update paths raise this
	// when no record exists. Absence doubles as "not authorized" at
	// this layer; there is no separate ACL.
	KindGuardianNotFound Kind = "guardian-not-found"

	// KindAddressNotGuardianForAccount: the removal path's variant of
	// absence-as-unauthorized. Kept distinct from KindGuardianNotFound
	// to preserve the observable error taxonomy.
	KindAddressNotGuardianForAccount Kind = "address-not-guardian-for-account"

	// KindSetupNotCalled: the operation requires a completed setup
	// (threshold != 0) for the account.
	KindSetupNotCalled Kind = "setup-not-called"

	// KindUnexpectedGuardianStatus: an acceptance or revocation flow
	// found the guardian in a status it cannot proceed from.
	KindUnexpectedGuardianStatus Kind = "unexpected-guardian-status"
)

// Error is a structured registry failure. Callers use errors.As (or
// the IsKind helper) to extract it:
//
//	var regErr *guardian.Error
//	if errors.As(err, &regErr) {
//	    if regErr.Kind == guardian.KindSetupNotCalled { ... }
//	}
//
// Fields beyond Kind are populated where relevant: the offending
// guardian, the conflicting status, the threshold and total weight for
// reachability failures, and got/want counts for shape failures.
type Error struct {
	Kind     Kind
	Account  addr.Address
	Guardian addr.Address

	// Status is the conflicting or unexpected current status.
	Status Status
	// WantStatus is the status a flow required, for
	// KindUnexpectedGuardianStatus.
	WantStatus Status

	// Threshold and TotalWeight describe a reachability failure.
	Threshold   uint64
	TotalWeight uint64

	// Got and Want are slice lengths for shape failures.
	Got  int
	Want int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindIncorrectNumberOfWeights:
		return fmt.Sprintf("guardian: %d weights for %d guardians", e.Got, e.Want)
	case KindThresholdCannotBeZero:
		return fmt.Sprintf("guardian: threshold for %s cannot be zero", e.Account)
	case KindThresholdExceedsTotalWeight:
		return fmt.Sprintf("guardian: threshold %d exceeds total weight %d for %s",
			e.Threshold, e.TotalWeight, e.Account)
	case KindInvalidGuardianAddress:
		return fmt.Sprintf("guardian: invalid guardian address %s for %s", e.Guardian, e.Account)
	case KindInvalidGuardianWeight:
		return fmt.Sprintf("guardian: zero weight for guardian %s of %s", e.Guardian, e.Account)
	case KindAddressAlreadyGuardian:
		return fmt.Sprintf("guardian: %s is already a guardian for %s", e.Guardian, e.Account)
	case KindStatusCannotBeTheSame:
		return fmt.Sprintf("guardian: %s already has status %s for %s", e.Guardian, e.Status, e.Account)
	case KindGuardianNotFound:
		return fmt.Sprintf("guardian: %s is not a guardian for %s", e.Guardian, e.Account)
	case KindAddressNotGuardianForAccount:
		return fmt.Sprintf("guardian: %s is not a guardian for account %s", e.Guardian, e.Account)
	case KindSetupNotCalled:
		return fmt.Sprintf("guardian: no setup has completed for %s", e.Account)
	case KindUnexpectedGuardianStatus:
		return fmt.Sprintf("guardian: %s has status %s for %s, need %s",
			e.Guardian, e.Status, e.Account, e.WantStatus)
	default:
		return fmt.Sprintf("guardian: %s", e.Kind)
	}
}

// ErrorKind returns the kind as a plain string, for transports that
// carry the kind in a response envelope.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// IsKind checks whether err is a *Error with the given kind.
func IsKind(err error, kind Kind) bool {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Kind == kind
	}
	return false
}
