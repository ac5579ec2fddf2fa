// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package subject

import (
	"context"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// OwnerProvider is the read-only query for an account's current
// authorized signers. The sequence is opaque and ordered; validators
// query it fresh on every call and never cache, so a commitment hash
// always reflects the list as it stands.
type OwnerProvider interface {
	Owners(ctx context.Context, account addr.Address) ([]addr.Address, error)
}

// StaticOwners is an OwnerProvider over a fixed account → owners
// mapping. It backs tests and daemon deployments whose owner sets come
// from configuration rather than a live account query.
type StaticOwners map[addr.Address][]addr.Address

// Owners returns a copy of the account's configured owner list.
func (s StaticOwners) Owners(_ context.Context, account addr.Address) ([]addr.Address, error) {
	owners := s[account]
	result := make([]addr.Address, len(owners))
	copy(result, owners)
	return result, nil
}

// ValidateAcceptanceSubject checks an acceptance subject's shape and
// returns the account the guardian is accepting for. The template
// index must be 0 and exactly one parameter must decode as an address.
// The account is returned verbatim: the registry's own status check
// (only requested guardians may accept) rejects invalid accounts.
func ValidateAcceptanceSubject(templateIndex int, params []string) (addr.Address, error) {
	if templateIndex != 0 {
		return addr.Address{}, &Error{Kind: KindInvalidTemplateIndex, TemplateIndex: templateIndex}
	}
	if len(params) != acceptanceSlots {
		return addr.Address{}, &Error{Kind: KindInvalidSubjectParams, Got: len(params), Want: acceptanceSlots}
	}
	return decodeAddress(params[0])
}

// Validator performs the recovery-side subject checks that need the
// target account's owner set.
type Validator struct {
	owners OwnerProvider
}

// NewValidator creates a Validator querying owners.
func NewValidator(owners OwnerProvider) *Validator {
	return &Validator{owners: owners}
}

// ValidateRecoverySubject checks a recovery subject's shape and
// semantics and returns the target account. The template index must be
// 0 and exactly three parameters must decode as addresses: account,
// old owner, new owner. Against the account's current owner set, the
// old owner must be an owner (KindInvalidOldOwner) and the new owner
// must be nonzero and not already an owner (KindInvalidNewOwner).
func (v *Validator) ValidateRecoverySubject(ctx context.Context, templateIndex int, params []string) (addr.Address, error) {
	account, oldOwner, newOwner, err := decodeRecoveryParams(templateIndex, params)
	if err != nil {
		return addr.Address{}, err
	}

	owners, err := v.owners.Owners(ctx, account)
	if err != nil {
		return addr.Address{}, fmt.Errorf("querying owners of %s: %w", account, err)
	}
	if !containsOwner(owners, oldOwner) {
		return addr.Address{}, &Error{Kind: KindInvalidOldOwner, Address: oldOwner}
	}
	if newOwner.IsZero() || containsOwner(owners, newOwner) {
		return addr.Address{}, &Error{Kind: KindInvalidNewOwner, Address: newOwner}
	}
	return account, nil
}

func decodeRecoveryParams(templateIndex int, params []string) (account, oldOwner, newOwner addr.Address, err error) {
	if templateIndex != 0 {
		err = &Error{Kind: KindInvalidTemplateIndex, TemplateIndex: templateIndex}
		return
	}
	if len(params) != recoverySlots {
		err = &Error{Kind: KindInvalidSubjectParams, Got: len(params), Want: recoverySlots}
		return
	}
	if account, err = decodeAddress(params[0]); err != nil {
		return
	}
	if oldOwner, err = decodeAddress(params[1]); err != nil {
		return
	}
	newOwner, err = decodeAddress(params[2])
	return
}

func decodeAddress(param string) (addr.Address, error) {
	address, err := addr.Parse(param)
	if err != nil {
		return addr.Address{}, &Error{Kind: KindInvalidSubjectParams, Param: param}
	}
	return address, nil
}

func containsOwner(owners []addr.Address, candidate addr.Address) bool {
	for _, owner := range owners {
		if owner == candidate {
			return true
		}
	}
	return false
}
