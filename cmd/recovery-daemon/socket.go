// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/soloking1412/email-recovery/lib/clock"
	"github.com/soloking1412/email-recovery/lib/guardian"
	"github.com/soloking1412/email-recovery/lib/journal"
	"github.com/soloking1412/email-recovery/lib/socketapi"
	"github.com/soloking1412/email-recovery/lib/sqlitestore"
	"github.com/soloking1412/email-recovery/lib/subject"
	"github.com/soloking1412/email-recovery/lib/version"
)

// Daemon is the core service state: one registry over one store, one
// journal, and the owner sets for subject validation.
type Daemon struct {
	registry  *guardian.Registry
	store     *sqlitestore.Store
	journal   *journal.Writer
	validator *subject.Validator
	clock     clock.Clock

	startedAt  time.Time
	binaryHash string

	logger *slog.Logger
}

// registerActions registers all socket API actions on the server.
// Action names are category/verb; recoveryctl maps its subcommands
// onto them one to one.
func (d *Daemon) registerActions(server *socketapi.Server) {
	server.Handle("status", d.handleStatus)

	server.Handle("guardian/setup", d.handleGuardianSetup)
	server.Handle("guardian/add", d.handleGuardianAdd)
	server.Handle("guardian/accept", d.handleGuardianAccept)
	server.Handle("guardian/update-status", d.handleGuardianUpdateStatus)
	server.Handle("guardian/revoke", d.handleGuardianRevoke)
	server.Handle("guardian/remove", d.handleGuardianRemove)
	server.Handle("guardian/remove-all", d.handleGuardianRemoveAll)
	server.Handle("guardian/get", d.handleGuardianGet)
	server.Handle("guardian/list", d.handleGuardianList)
	server.Handle("guardian/export", d.handleGuardianExport)
	server.Handle("guardian/import", d.handleGuardianImport)

	server.Handle("config/get", d.handleConfigGet)
	server.Handle("config/threshold", d.handleConfigThreshold)

	server.Handle("subject/accept", d.handleSubjectAccept)
	server.Handle("subject/recover", d.handleSubjectRecover)
	server.Handle("subject/recovery-hash", d.handleSubjectRecoveryHash)

	server.Handle("events", d.handleEvents)
}

// statusResponse is the response to the "status" action.
type statusResponse struct {
	// Version is the build version string.
	Version string `json:"version"`

	// BinaryHash is the SHA256 of the running binary, when known.
	BinaryHash string `json:"binary_hash,omitempty"`

	// UptimeSeconds is how long the daemon has been running.
	UptimeSeconds float64 `json:"uptime_seconds"`

	// JournalSequence is the last appended journal sequence number.
	JournalSequence uint64 `json:"journal_sequence"`

	// JournalChain is the current hash chain head.
	JournalChain string `json:"journal_chain"`

	// Store reports row counts and database size.
	Store sqlitestore.Stats `json:"store"`

	// StoreError is set when the SQLite mirror has failed. The
	// in-memory registry keeps serving; durability is degraded.
	StoreError string `json:"store_error,omitempty"`
}

// handleStatus reports build identity, uptime, journal position, and
// store health.
func (d *Daemon) handleStatus(ctx context.Context, raw []byte) (any, error) {
	response := statusResponse{
		Version:         version.Info(),
		BinaryHash:      d.binaryHash,
		UptimeSeconds:   d.clock.Now().Sub(d.startedAt).Seconds(),
		JournalSequence: d.journal.Sequence(),
		JournalChain:    d.journal.Chain().String(),
	}

	stats, err := d.store.Stats(ctx)
	if err != nil {
		response.StoreError = err.Error()
	} else {
		response.Store = stats
	}
	if err := d.store.Err(); err != nil {
		response.StoreError = err.Error()
	}
	return response, nil
}
