// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/soloking1412/email-recovery/lib/addr"
	"github.com/soloking1412/email-recovery/lib/calldata"
	"github.com/soloking1412/email-recovery/lib/codec"
	"github.com/soloking1412/email-recovery/lib/subject"
)

// subjectRequest is the shared input for the subject actions: the
// command template index and the filled-in template parameters, as
// extracted from a recovery email's subject line.
type subjectRequest struct {
	TemplateIndex int      `cbor:"template_index"`
	Params        []string `cbor:"params"`
}

// subjectResponse is returned by the "subject/accept" and
// "subject/recover" actions: the account the validated subject names.
type subjectResponse struct {
	Account addr.Address `json:"account"`
}

// recoveryHashResponse is returned by the "subject/recovery-hash"
// action: the digest the recovery subject commits to. The executing
// layer compares this byte for byte before acting.
type recoveryHashResponse struct {
	Hash calldata.Digest `json:"hash"`
}

// handleSubjectAccept validates an acceptance subject's shape and
// returns the account the guardian is accepting for.
func (d *Daemon) handleSubjectAccept(ctx context.Context, raw []byte) (any, error) {
	var request subjectRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	account, err := subject.ValidateAcceptanceSubject(request.TemplateIndex, request.Params)
	if err != nil {
		return nil, err
	}
	return subjectResponse{Account: account}, nil
}

// handleSubjectRecover validates a recovery subject against the
// account's current owner set: the old owner must be an owner, the
// new owner must not be.
func (d *Daemon) handleSubjectRecover(ctx context.Context, raw []byte) (any, error) {
	var request subjectRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	account, err := d.validator.ValidateRecoverySubject(ctx, request.TemplateIndex, request.Params)
	if err != nil {
		return nil, err
	}
	return subjectResponse{Account: account}, nil
}

// handleSubjectRecoveryHash computes the digest a recovery subject
// commits to, resolving the old owner's predecessor in the account's
// current owner list.
func (d *Daemon) handleSubjectRecoveryHash(ctx context.Context, raw []byte) (any, error) {
	var request subjectRequest
	if err := codec.Unmarshal(raw, &request); err != nil {
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	hash, err := d.validator.RecoveryDataHash(ctx, request.TemplateIndex, request.Params)
	if err != nil {
		return nil, err
	}
	return recoveryHashResponse{Hash: hash}, nil
}
