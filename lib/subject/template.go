// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package subject

import (
	"strings"

	"github.com/soloking1412/email-recovery/lib/addr"
)

// AddressSlot is the placeholder token for an address parameter.
const AddressSlot = "{address}"

// Slot counts for the two templates. Parameter slices must match
// exactly.
const (
	acceptanceSlots = 1
	recoverySlots   = 3
)

// AcceptanceTemplate returns the acceptance subject's token sequence:
// 5 tokens, 1 address slot. The caller owns the returned slice.
func AcceptanceTemplate() []string {
	return []string{"Accept", "guardian", "request", "for", AddressSlot}
}

// RecoveryTemplate returns the recovery subject's token sequence:
// 11 tokens, 3 address slots (account, old owner, new owner). The
// caller owns the returned slice.
func RecoveryTemplate() []string {
	return []string{
		"Recover", "account", AddressSlot,
		"from", "old", "owner", AddressSlot,
		"to", "new", "owner", AddressSlot,
	}
}

// RenderAcceptance fills the acceptance template for display.
func RenderAcceptance(account addr.Address) string {
	return render(AcceptanceTemplate(), account)
}

// RenderRecovery fills the recovery template for display.
func RenderRecovery(account, oldOwner, newOwner addr.Address) string {
	return render(RecoveryTemplate(), account, oldOwner, newOwner)
}

func render(template []string, params ...addr.Address) string {
	tokens := make([]string, len(template))
	next := 0
	for i, token := range template {
		if token == AddressSlot {
			tokens[i] = params[next].String()
			next++
			continue
		}
		tokens[i] = token
	}
	return strings.Join(tokens, " ")
}
