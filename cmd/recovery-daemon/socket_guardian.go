// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/codec"
	"github.com/soloking1412/email-recovery/lib/guardian"
)

// --- Request types ---

// setupRequest is the input for the "guardian/setup" action. The
// slices are parallel: weights[i] belongs to guardians[i]. Recoveryctl
// produces these fields from a validated manifest file.
type setupRequest struct {
	Account   addr.Address   `cbor:"account"`
	Guardians []addr.Address `cbor:"guardians"`
	Weights   []uint64       `cbor:"weights"`
	Threshold uint64         `cbor:"threshold"`
}

// addRequest is the input for the "guardian/add" action.
type addRequest struct {
	Account  addr.Address `cbor:"account"`
	Guardian addr.Address `cbor:"guardian"`
	Weight   uint64       `cbor:"weight"`
}

// guardianTarget is the shared input for the actions that name one
// (account, guardian) pair: guardian/accept, guardian/revoke,
// guardian/remove, and guardian/get.
type guardianTarget struct {
	Account  addr.Address `cbor:"account"`
	Guardian addr.Address `cbor:"guardian"`
}

// updateStatusRequest is the input for the "guardian/update-status"
// action. Status is the target status name ("requested", "accepted",
// "revoked"); parsing it here gives a clean error instead of a CBOR
// decode failure.
type updateStatusRequest struct {
	Account  addr.Address `cbor:"account"`
	Guardian addr.Address `cbor:"guardian"`
	Status   string       `cbor:"status"`
}

// removeAllRequest is the input for the "guardian/remove-all" action.
// Reset additionally zeroes the account's aggregate config, returning
// the account to the never-set-up state instead of leaving the
// aggregates in place for a re-run of setup.
type removeAllRequest struct {
	Account addr.Address `cbor:"account"`
	Reset   bool         `cbor:"reset,omitempty"`
}

// accountRequest is the shared input for the per-account queries:
// guardian/list and config/get.
type accountRequest struct {
	Account addr.Address `cbor:"account"`
}

// thresholdRequest is the input for the "config/threshold" action.
type thresholdRequest struct {
	Account   addr.Address `cbor:"account"`
	Threshold uint64       `cbor:"threshold"`
}

// --- Response types ---

// setupResponse is returned by the "guardian/setup" action.
type setupResponse struct {
	Account       addr.Address `json:"account"`
	GuardianCount uint64       `json:"guardian_count"`
	TotalWeight   uint64       `json:"total_weight"`
	Threshold     uint64       `json:"threshold"`
}

// guardianResponse is the common response for single-guardian actions:
// the guardian's record (absent after a remove) plus the account
// aggregates after the operation.
type guardianResponse struct {
	Account  addr.Address    `json:"account"`
	Guardian addr.Address    `json:"guardian"`
	Status   guardian.Status `json:"status,omitempty"`
	Weight   uint64          `json:"weight,omitempty"`
	Config   guardian.Config `json:"config"`
}

// removeAllResponse is returned by the "guardian/remove-all" action.
type removeAllResponse struct {
	Account addr.Address    `json:"account"`
	Removed int             `json:"removed"`
	Config  guardian.Config `json:"config"`
}

// listResponse is returned by the "guardian/list" action. Guardians
// are sorted by address.
type listResponse struct {
	Account   addr.Address     `json:"account"`
	Config    guardian.Config  `json:"config"`
	Guardians []guardian.Entry `json:"guardians"`
}

// configResponse is returned by the "config/get" and
// "config/threshold" actions.
type configResponse struct {
	Account      addr.Address    `json:"account"`
	Config       guardian.Config `json:"config"`
	SetUp        bool            `json:"set_up"`
	ThresholdMet bool            `json:"threshold_met"`
}

// guardianView assembles the common single-guardian response after an
// operation: the current record when one exists, and the aggregates.
func (d *Daemon) guardianView(account, guardianAddress addr.Address) guardianResponse {
	response := guardianResponse{
		Account:  account,
		Guardian: guardianAddress,
		Config:   d.registry.Config(account),
	}
	if record, err := d.registry.Guardian(account, guardianAddress); err == nil {
		response.Status = record.Status
		response.Weight = record.Weight
	}
	return response
}

// configView assembles the aggregate response for an account.
func (d *Daemon) configView(account addr.Address) configResponse {
	config := d.registry.Config(account)
	return configResponse{
		Account:      account,
		Config:       config,
		SetUp:        config.SetUp(),
		ThresholdMet: config.ThresholdMet(),
	}
}

// --- Handlers ---

// handleGuardianSetup registers the account's initial guardian set and
// threshold in one atomic step.
func (d *Daemon) handleGuardianSetup(ctx context.Context, raw []byte) (any, error) {
	var request setupRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	count, totalWeight, err := d.registry.SetupGuardians(request.Account, request.Guardians, request.Weights, request.Threshold)
	if err != nil {
		return nil, err
	}
	return setupResponse{
		Account:       request.Account,
		GuardianCount: count,
		TotalWeight:   totalWeight,
		Threshold:     request.Threshold,
	}, nil
}

// handleGuardianAdd adds one guardian in the requested state.
func (d *Daemon) handleGuardianAdd(ctx context.Context, raw []byte) (any, error) {
	var request addRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := d.registry.AddGuardian(request.Account, request.Guardian, request.Weight); err != nil {
		return nil, err
	}
	return d.guardianView(request.Account, request.Guardian), nil
}

// handleGuardianAccept moves a requested guardian to accepted.
func (d *Daemon) handleGuardianAccept(ctx context.Context, raw []byte) (any, error) {
	var request guardianTarget
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := d.registry.AcceptGuardian(request.Account, request.Guardian); err != nil {
		return nil, err
	}
	return d.guardianView(request.Account, request.Guardian), nil
}

// handleGuardianUpdateStatus forces a guardian to an arbitrary status,
// bypassing the accept/revoke lifecycle rules. The accepted weight is
// not reconciled; a transition into or out of accepted through this
// action leaves it stale, which is why accept and revoke exist.
func (d *Daemon) handleGuardianUpdateStatus(ctx context.Context, raw []byte) (any, error) {
	var request updateStatusRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	status, err := guardian.ParseStatus(request.Status)
	if err != nil {
		return nil, err
	}
	if err := d.registry.UpdateGuardianStatus(request.Account, request.Guardian, status); err != nil {
		return nil, err
	}
	return d.guardianView(request.Account, request.Guardian), nil
}

// handleGuardianRevoke moves an accepted guardian to revoked.
func (d *Daemon) handleGuardianRevoke(ctx context.Context, raw []byte) (any, error) {
	var request guardianTarget
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := d.registry.RevokeGuardian(request.Account, request.Guardian); err != nil {
		return nil, err
	}
	return d.guardianView(request.Account, request.Guardian), nil
}

// handleGuardianRemove deletes a guardian's record entirely.
func (d *Daemon) handleGuardianRemove(ctx context.Context, raw []byte) (any, error) {
	var request guardianTarget
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := d.registry.RemoveGuardian(request.Account, request.Guardian); err != nil {
		return nil, err
	}
	return d.guardianView(request.Account, request.Guardian), nil
}

// handleGuardianRemoveAll empties the account's guardian set. With
// reset it also zeroes the aggregates, so the account reads as never
// set up afterwards.
func (d *Daemon) handleGuardianRemoveAll(ctx context.Context, raw []byte) (any, error) {
	var request removeAllRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	var removed int
	if request.Reset {
		removed = d.registry.ResetAccount(request.Account)
	} else {
		removed = d.registry.RemoveAllGuardians(request.Account)
	}
	return removeAllResponse{
		Account: request.Account,
		Removed: removed,
		Config:  d.registry.Config(request.Account),
	}, nil
}

// handleGuardianGet returns one guardian's record, or the
// guardian-not-found kind.
func (d *Daemon) handleGuardianGet(ctx context.Context, raw []byte) (any, error) {
	var request guardianTarget
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	record, err := d.registry.Guardian(request.Account, request.Guardian)
	if err != nil {
		return nil, err
	}
	return guardianResponse{
		Account:  request.Account,
		Guardian: request.Guardian,
		Status:   record.Status,
		Weight:   record.Weight,
		Config:   d.registry.Config(request.Account),
	}, nil
}

// handleGuardianList returns the account's full guardian set and
// aggregates as one consistent view.
func (d *Daemon) handleGuardianList(ctx context.Context, raw []byte) (any, error) {
	var request accountRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	config, entries := d.registry.Entries(request.Account)
	return listResponse{
		Account:   request.Account,
		Config:    config,
		Guardians: entries,
	}, nil
}

// handleConfigGet returns the account's aggregates.
func (d *Daemon) handleConfigGet(ctx context.Context, raw []byte) (any, error) {
	var request accountRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}
	return d.configView(request.Account), nil
}

// handleConfigThreshold changes the account's threshold.
func (d *Daemon) handleConfigThreshold(ctx context.Context, raw []byte) (any, error) {
	var request thresholdRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := d.registry.ChangeThreshold(request.Account, request.Threshold); err != nil {
		return nil, err
	}
	return d.configView(request.Account), nil
}
