// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package subject

import (
	"errors"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// Kind identifies a subject validation failure.
type Kind string

const (
	// KindInvalidTemplateIndex: each flow has exactly one template, so
	// any index other than 0 is rejected.
	KindInvalidTemplateIndex Kind = "invalid-template-index"

	// KindInvalidSubjectParams: wrong parameter count for the
	// template, or a parameter that does not decode as an address.
	KindInvalidSubjectParams Kind = "invalid-subject-params"

	// KindInvalidOldOwner: the claimed old owner is not currently an
	// owner of the target account.
	KindInvalidOldOwner Kind = "invalid-old-owner"

	// KindInvalidNewOwner: the proposed new owner is the zero address
	// or already an owner of the target account.
	KindInvalidNewOwner Kind = "invalid-new-owner"
)

// Error is a structured subject validation failure. Shape failures
// carry the offending counts or parameter; owner failures carry the
// offending address.
type Error struct {
	Kind Kind

	// TemplateIndex is the rejected index.
	TemplateIndex int

	// Got and Want are parameter counts for count mismatches.
	Got  int
	Want int

	// Param is the raw parameter that failed to decode.
	Param string

	// Address is the offending owner address.
	Address addr.Address
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidTemplateIndex:
		return fmt.Sprintf("subject: template index %d, only 0 exists", e.TemplateIndex)
	case KindInvalidSubjectParams:
		if e.Param != "" {
			return fmt.Sprintf("subject: parameter %q is not an address", e.Param)
		}
		return fmt.Sprintf("subject: %d parameters, want %d", e.Got, e.Want)
	case KindInvalidOldOwner:
		return fmt.Sprintf("subject: %s is not a current owner", e.Address)
	case KindInvalidNewOwner:
		return fmt.Sprintf("subject: %s is not a valid new owner", e.Address)
	default:
		return fmt.Sprintf("subject: %s", e.Kind)
	}
}

// ErrorKind returns the kind as a plain string, for transports that
// carry the kind in a response envelope.
func (e *Error) ErrorKind() string { return string(e.Kind) }

// IsKind checks whether err is a *Error with the given kind.
func IsKind(err error, kind Kind) bool {
	var subjErr *Error
	if errors.As(err, &subjErr) {
		return subjErr.Kind == kind
	}
	return false
}
