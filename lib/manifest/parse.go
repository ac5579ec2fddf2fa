// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest provides parsing and validation for guardian-set
// manifests: the on-disk authoring format for an account's initial
// guardian configuration.
//
// Manifests are JSONC files (JSON extended with // line comments,
// /* block comments */, and trailing commas) declaring the account,
// its guardians with weights, and the threshold:
//
//	{
//	    // the account being protected
//	    "account": "0x00000000000000000000000000000000000000a0",
//	    "guardians": [
//	        {"address": "0x0000000000000000000000000000000000000001", "weight": 2},
//	        {"address": "0x0000000000000000000000000000000000000002", "weight": 1},
//	    ],
//	    "threshold": 2,
//	}
//
// The typical flow is ReadFile or Parse, then Validate for a full
// issue list (or Resolve, which validates and returns typed values
// ready for the registry's setup call). Validation mirrors the
// registry's own preconditions so a manifest that validates will not
// be rejected at setup time.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Manifest is a parsed guardian-set manifest. Addresses stay as
// strings here; Validate and Resolve parse them.
type Manifest struct {
	// Account is the protected account's address.
	Account string `json:"account"`

	// Guardians lists the guardian set in setup order.
	Guardians []Entry `json:"guardians"`

	// Threshold is the accepted weight required to authorize a
	// recovery.
	Threshold uint64 `json:"threshold"`
}

// Entry is one guardian declaration.
type Entry struct {
	Address string `json:"address"`
	Weight  uint64 `json:"weight"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var m Manifest
	if err := json.Unmarshal(stripped, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// ReadFile reads and parses a JSONC manifest file.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
