// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package subject

import (
	"context"
	"errors"
	"testing"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/calldata"
)

func recoveryParams(oldOwner, newOwner addr.Address) []string {
	return []string{account.String(), oldOwner.String(), newOwner.String()}
}

func TestRecoveryDataHash_Deterministic(t *testing.T) {
	validator := testValidator(t)
	ctx := context.Background()

	first, err := validator.RecoveryDataHash(ctx, 0, recoveryParams(ownerOne, incoming))
	if err != nil {
		t.Fatalf("RecoveryDataHash: %v", err)
	}
	second, err := validator.RecoveryDataHash(ctx, 0, recoveryParams(ownerOne, incoming))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("identical inputs and owner list produced different hashes")
	}
}

func TestRecoveryDataHash_OwnerOrderSensitive(t *testing.T) {
	ctx := context.Background()

	forward := NewValidator(StaticOwners{account: {ownerOne, ownerTwo}})
	reversed := NewValidator(StaticOwners{account: {ownerTwo, ownerOne}})

	// ownerTwo's predecessor is ownerOne in one list and the sentinel
	// in the other, so the committed calldata differs.
	params := recoveryParams(ownerTwo, incoming)
	first, err := forward.RecoveryDataHash(ctx, 0, params)
	if err != nil {
		t.Fatal(err)
	}
	second, err := reversed.RecoveryDataHash(ctx, 0, params)
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Error("reordered owner list produced the same hash")
	}
}

func TestRecoveryDataHash_SentinelAtListHead(t *testing.T) {
	validator := testValidator(t)

	// ownerOne heads the list: the committed call names the sentinel
	// as predecessor.
	got, err := validator.RecoveryDataHash(context.Background(), 0,
		recoveryParams(ownerOne, incoming))
	if err != nil {
		t.Fatal(err)
	}

	payload := calldata.SwapOwnerCall(addr.SentinelOwner, ownerOne, incoming)
	want := calldata.DigestOf(account.Bytes(), payload)
	if got != want {
		t.Errorf("hash = %s, want sentinel-predecessor commitment %s", got, want)
	}
}

func TestRecoveryDataHash_MidListPredecessor(t *testing.T) {
	validator := testValidator(t)

	got, err := validator.RecoveryDataHash(context.Background(), 0,
		recoveryParams(ownerTwo, incoming))
	if err != nil {
		t.Fatal(err)
	}

	payload := calldata.SwapOwnerCall(ownerOne, ownerTwo, incoming)
	want := calldata.DigestOf(account.Bytes(), payload)
	if got != want {
		t.Errorf("hash = %s, want ownerOne-predecessor commitment %s", got, want)
	}
}

func TestRecoveryDataHash_UnknownOldOwner(t *testing.T) {
	validator := testValidator(t)

	_, err := validator.RecoveryDataHash(context.Background(), 0,
		recoveryParams(incoming, ownerOne))
	if !IsKind(err, KindInvalidOldOwner) {
		t.Errorf("unknown old owner error = %v, want invalid-old-owner", err)
	}
}

// failingOwners is an OwnerProvider whose query always fails.
type failingOwners struct{}

func (failingOwners) Owners(context.Context, addr.Address) ([]addr.Address, error) {
	return nil, errors.New("owner backend unreachable")
}

func TestRecoveryDataHash_ProviderErrorWraps(t *testing.T) {
	validator := NewValidator(failingOwners{})

	_, err := validator.RecoveryDataHash(context.Background(), 0,
		recoveryParams(ownerOne, incoming))
	if err == nil {
		t.Fatal("provider failure did not surface")
	}
	// Provider failures are plumbing, not subject kinds.
	var subjErr *Error
	if errors.As(err, &subjErr) {
		t.Errorf("provider failure surfaced as subject error %v", subjErr)
	}
}
