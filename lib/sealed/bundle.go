// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package sealed

import (
	"fmt"
	"time"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

// Bundle is the plaintext payload of a guardian-set backup: the full
// set for one account, enough to rebuild its records and aggregates
// exactly.
type Bundle struct {
	Account    addr.Address     `json:"account"`
	Guardians  []BundleGuardian `json:"guardians"`
	Threshold  uint64           `json:"threshold"`
	ExportedAt time.Time        `json:"exported_at"`
}

// BundleGuardian is one guardian in a bundle.
type BundleGuardian struct {
	Address addr.Address    `json:"address"`
	Weight  uint64          `json:"weight"`
	Status  guardian.Status `json:"status"`
}

// Snapshot captures the account's guardian set from the registry as a
// Bundle. The view is taken under the account lock, so it is one
// consistent state. Fails if the account has never completed setup.
func Snapshot(registry *guardian.Registry, account addr.Address, now time.Time) (Bundle, error) {
	config, entries := registry.Entries(account)
	if !config.SetUp() {
		return Bundle{}, fmt.Errorf("sealed: account %s has no completed guardian setup", account)
	}

	guardians := make([]BundleGuardian, 0, len(entries))
	for _, entry := range entries {
		guardians = append(guardians, BundleGuardian{
			Address: entry.Address,
			Weight:  entry.Weight,
			Status:  entry.Status,
		})
	}
	return Bundle{
		Account:    account,
		Guardians:  guardians,
		Threshold:  config.Threshold,
		ExportedAt: now,
	}, nil
}

// Validate checks the bundle against the same preconditions the
// registry enforces, so a bundle that validates will replay.
func (b Bundle) Validate() error {
	if b.Account.IsZero() {
		return fmt.Errorf("sealed: bundle has no account")
	}
	if len(b.Guardians) == 0 {
		return fmt.Errorf("sealed: bundle for %s has no guardians", b.Account)
	}
	if b.Threshold == 0 {
		return fmt.Errorf("sealed: bundle for %s has zero threshold", b.Account)
	}

	seen := make(map[addr.Address]struct{}, len(b.Guardians))
	var totalWeight uint64
	for _, entry := range b.Guardians {
		if entry.Address.IsZero() || entry.Address == b.Account {
			return fmt.Errorf("sealed: bundle for %s has invalid guardian address %s", b.Account, entry.Address)
		}
		if entry.Weight == 0 {
			return fmt.Errorf("sealed: guardian %s has zero weight", entry.Address)
		}
		switch entry.Status {
		case guardian.StatusRequested, guardian.StatusAccepted, guardian.StatusRevoked:
		default:
			return fmt.Errorf("sealed: guardian %s has invalid status %d", entry.Address, entry.Status)
		}
		if _, duplicate := seen[entry.Address]; duplicate {
			return fmt.Errorf("sealed: duplicate guardian %s", entry.Address)
		}
		seen[entry.Address] = struct{}{}
		totalWeight += entry.Weight
	}
	if b.Threshold > totalWeight {
		return fmt.Errorf("sealed: threshold %d exceeds total weight %d", b.Threshold, totalWeight)
	}
	return nil
}

// Replay restores the bundle into the registry by running the normal
// operations: one setup with every guardian and the threshold, then an
// accept or revoke per guardian whose exported status requires it.
// Rebuilding through the operations (rather than writing records
// directly) reproduces the aggregates exactly and emits regular events
// along the way.
//
// The target account must be empty: no records and no completed setup.
func (b Bundle) Replay(registry *guardian.Registry) error {
	if err := b.Validate(); err != nil {
		return err
	}
	config, entries := registry.Entries(b.Account)
	if config.SetUp() || len(entries) > 0 {
		return fmt.Errorf("sealed: account %s already has guardian state; reset it before importing", b.Account)
	}

	addresses := make([]addr.Address, len(b.Guardians))
	weights := make([]uint64, len(b.Guardians))
	for i, entry := range b.Guardians {
		addresses[i] = entry.Address
		weights[i] = entry.Weight
	}
	if _, _, err := registry.SetupGuardians(b.Account, addresses, weights, b.Threshold); err != nil {
		return fmt.Errorf("sealed: replaying setup: %w", err)
	}

	for _, entry := range b.Guardians {
		switch entry.Status {
		case guardian.StatusAccepted:
			if err := registry.AcceptGuardian(b.Account, entry.Address); err != nil {
				return fmt.Errorf("sealed: replaying acceptance of %s: %w", entry.Address, err)
			}
		case guardian.StatusRevoked:
			if err := registry.RevokeGuardian(b.Account, entry.Address); err != nil {
				return fmt.Errorf("sealed: replaying revocation of %s: %w", entry.Address, err)
			}
		}
	}
	return nil
}
