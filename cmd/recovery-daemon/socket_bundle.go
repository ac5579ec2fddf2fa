// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/codec"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/sealed"
	"github.com/soloking1412/email-recovery/lib/sqlitestore"
)

// importRequest is the input for the "guardian/import" action: a
// plaintext backup bundle to replay. Recoveryctl opens the sealed
// file with the operator's identity before sending; the daemon never
// touches sealing keys.
type importRequest struct {
	Bundle sealed.Bundle `cbor:"bundle"`
}

// importResponse is returned by the "guardian/import" action.
type importResponse struct {
	Account   addr.Address    `json:"account"`
	Guardians int             `json:"guardians"`
	Config    guardian.Config `json:"config"`
}

// eventsRequest is the input for the "events" action. The zero account
// and empty type mean no filtering; limit zero means the store's
// default page.
type eventsRequest struct {
	Account addr.Address `cbor:"account,omitempty"`
	Type    string       `cbor:"type,omitempty"`
	Limit   int          `cbor:"limit,omitempty"`
}

// eventsResponse is returned by the "events" action, newest first.
type eventsResponse struct {
	Events []sqlitestore.StoredEvent `json:"events"`
}

// handleGuardianExport snapshots the account's guardian set as a
// plaintext bundle. Sealing to recipients happens client-side; the
// socket's filesystem permissions already gate who can read this.
func (d *Daemon) handleGuardianExport(ctx context.Context, raw []byte) (any, error) {
	var request accountRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	bundle, err := sealed.Snapshot(d.registry, request.Account, d.clock.Now())
	if err != nil {
		return nil, err
	}
	return bundle, nil
}

// handleGuardianImport validates a backup bundle and replays it into
// the registry. The target account must have no existing guardian
// state.
func (d *Daemon) handleGuardianImport(ctx context.Context, raw []byte) (any, error) {
	var request importRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := request.Bundle.Replay(d.registry); err != nil {
		return nil, err
	}
	account := request.Bundle.Account
	d.logger.Info("guardian set imported",
		"account", account.String(),
		"guardians", len(request.Bundle.Guardians),
	)
	return importResponse{
		Account:   account,
		Guardians: len(request.Bundle.Guardians),
		Config:    d.registry.Config(account),
	}, nil
}

// handleEvents queries the store's event table.
func (d *Daemon) handleEvents(ctx context.Context, raw []byte) (any, error) {
	var request eventsRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	events, err := d.store.Events(ctx, sqlitestore.EventFilter{
		Account: request.Account,
		Type:    guardian.EventType(request.Type),
		Limit:   request.Limit,
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []sqlitestore.StoredEvent{}
	}
	return eventsResponse{Events: events}, nil
}
