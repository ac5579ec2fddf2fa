// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	savedDirty := GitDirty
	defer func() { GitDirty = savedDirty }()

	GitDirty = "false"
	if strings.Contains(Info(), "-dirty") {
		t.Errorf("Info() = %q, should not contain -dirty for a clean build", Info())
	}

	GitDirty = "true"
	if !strings.Contains(Info(), "-dirty") {
		t.Errorf("Info() = %q, should contain -dirty for a dirty build", Info())
	}
	if !strings.Contains(Info(), Version) {
		t.Errorf("Info() = %q, should contain the version %q", Info(), Version)
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, "Go: ") {
		t.Errorf("Full() = %q, should report the Go version", full)
	}
	if !strings.Contains(full, "Platform: ") {
		t.Errorf("Full() = %q, should report the platform", full)
	}
}

func TestComputeSelfHash(t *testing.T) {
	hash, binaryPath, err := ComputeSelfHash()
	if err != nil {
		t.Fatalf("ComputeSelfHash: %v", err)
	}
	if length := len(hash); length != 64 {
		t.Errorf("hash length = %d, want 64 (hex-encoded SHA256)", length)
	}
	if binaryPath == "" {
		t.Error("binaryPath should not be empty")
	}

	// Deterministic: hashing the same running binary twice.
	hash2, binaryPath2, err := ComputeSelfHash()
	if err != nil {
		t.Fatalf("ComputeSelfHash (second): %v", err)
	}
	if hash != hash2 {
		t.Error("ComputeSelfHash hash should be deterministic")
	}
	if binaryPath != binaryPath2 {
		t.Error("ComputeSelfHash path should be deterministic")
	}
}
