// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soloking1412/email-recovery/lib/addr"
)

func TestParseAddressFlag(t *testing.T) {
	t.Parallel()

	address, err := parseAddressFlag("account", "0x00000000000000000000000000000000000000a0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address.IsZero() {
		t.Error("parsed address is zero")
	}

	if _, err := parseAddressFlag("account", ""); err == nil || !strings.Contains(err.Error(), "--account is required") {
		t.Errorf("empty value: error = %v, want required message", err)
	}

	if _, err := parseAddressFlag("guardian", "0xnope"); err == nil || !strings.Contains(err.Error(), "--guardian") {
		t.Errorf("bad value: error = %v, want flag name in message", err)
	}
}

func TestSetupFieldsFromFlags(t *testing.T) {
	t.Parallel()

	params := &setupParams{
		Account: "0x00000000000000000000000000000000000000a0",
		Guardians: []string{
			"0x0000000000000000000000000000000000000001",
			"0x0000000000000000000000000000000000000002",
		},
		Weights:   []string{"2", "1"},
		Threshold: 3,
	}

	fields, err := setupFields(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	guardians := fields["guardians"].([]addr.Address)
	if len(guardians) != 2 {
		t.Fatalf("guardians = %d entries, want 2", len(guardians))
	}
	weights := fields["weights"].([]uint64)
	if len(weights) != 2 || weights[0] != 2 || weights[1] != 1 {
		t.Errorf("weights = %v, want [2 1]", weights)
	}
	if fields["threshold"] != uint64(3) {
		t.Errorf("threshold = %v, want 3", fields["threshold"])
	}
}

func TestSetupFieldsFromManifest(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "guardians.jsonc")
	content := `{
	// comments and trailing commas are fine in manifests
	"account": "0x00000000000000000000000000000000000000a0",
	"guardians": [
		{"address": "0x0000000000000000000000000000000000000001", "weight": 2},
		{"address": "0x0000000000000000000000000000000000000002", "weight": 1},
	],
	"threshold": 2,
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fields, err := setupFields(&setupParams{Manifest: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account := fields["account"].(addr.Address)
	if account.String() != "0x00000000000000000000000000000000000000a0" {
		t.Errorf("account = %s", account)
	}
	if got := fields["guardians"].([]addr.Address); len(got) != 2 {
		t.Errorf("guardians = %d entries, want 2", len(got))
	}
	if fields["threshold"] != uint64(2) {
		t.Errorf("threshold = %v, want 2", fields["threshold"])
	}
}

func TestSetupFieldsRejectsBadInput(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params setupParams
		want   string
	}{
		{
			name:   "missing account",
			params: setupParams{Guardians: []string{"0x0000000000000000000000000000000000000001"}},
			want:   "--account is required",
		},
		{
			name:   "missing guardians",
			params: setupParams{Account: "0x00000000000000000000000000000000000000a0"},
			want:   "--guardian is required",
		},
		{
			name: "bad guardian address",
			params: setupParams{
				Account:   "0x00000000000000000000000000000000000000a0",
				Guardians: []string{"not-an-address"},
			},
			want: "--guardian",
		},
		{
			name: "bad weight",
			params: setupParams{
				Account:   "0x00000000000000000000000000000000000000a0",
				Guardians: []string{"0x0000000000000000000000000000000000000001"},
				Weights:   []string{"two"},
			},
			want: "--weight",
		},
		{
			name:   "missing manifest file",
			params: setupParams{Manifest: "/nonexistent/guardians.jsonc"},
			want:   "guardians.jsonc",
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			_, err := setupFields(&testCase.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), testCase.want) {
				t.Errorf("error = %v, want substring %q", err, testCase.want)
			}
		})
	}
}

// An invalid manifest should report its issues without any daemon
// contact; setupFields folds them into one error.
func TestSetupFieldsManifestIssues(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.jsonc")
	content := `{
	"account": "0x00000000000000000000000000000000000000a0",
	"guardians": [
		{"address": "0x0000000000000000000000000000000000000001", "weight": 0},
	],
	"threshold": 9,
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := setupFields(&setupParams{Manifest: path})
	if err == nil {
		t.Fatal("expected validation error")
	}
	message := err.Error()
	if !strings.Contains(message, "weight must be positive") {
		t.Errorf("error = %v, want zero-weight issue", err)
	}
	if !strings.Contains(message, "exceeds the total guardian weight") {
		t.Errorf("error = %v, want threshold issue", err)
	}
}
