// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package subject

import (
	"context"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/calldata"
)

// RecoveryDataHash re-derives the exact swap-owner call a recovery
// subject commits to and returns the Keccak-256 digest over the target
// account and that calldata. The executing layer matches this digest
// byte for byte before acting, so any drift between authorization and
// execution (a changed or reordered owner list) produces a different
// digest and invalidates the request.
//
// The swap-owner operation names the old owner's predecessor in the
// account's owner list. The predecessor is resolved by a linear scan
// of the provider's current list, with addr.SentinelOwner standing in
// when the old owner is at index 0. An old owner absent from the list
// fails with KindInvalidOldOwner: there is no call to commit to.
func (v *Validator) RecoveryDataHash(ctx context.Context, templateIndex int, params []string) (calldata.Digest, error) {
	account, oldOwner, newOwner, err := decodeRecoveryParams(templateIndex, params)
	if err != nil {
		return calldata.Digest{}, err
	}

	owners, err := v.owners.Owners(ctx, account)
	if err != nil {
		return calldata.Digest{}, fmt.Errorf("querying owners of %s: %w", account, err)
	}
	prevOwner, found := predecessor(owners, oldOwner)
	if !found {
		return calldata.Digest{}, &Error{Kind: KindInvalidOldOwner, Address: oldOwner}
	}

	payload := calldata.SwapOwnerCall(prevOwner, oldOwner, newOwner)
	return calldata.DigestOf(account.Bytes(), payload), nil
}

// predecessor returns the owner preceding target in the list, or the
// sentinel when target is the list head.
func predecessor(owners []addr.Address, target addr.Address) (addr.Address, bool) {
	for i, owner := range owners {
		if owner != target {
			continue
		}
		if i == 0 {
			return addr.SentinelOwner, true
		}
		return owners[i-1], true
	}
	return addr.Address{}, false
}
