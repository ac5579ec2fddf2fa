// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soloking1412/email-recovery/lib/journal"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}

	if cfg.Daemon.SocketPath != "/run/email-recovery/daemon.sock" {
		t.Errorf("expected socket_path=/run/email-recovery/daemon.sock, got %s", cfg.Daemon.SocketPath)
	}

	if cfg.Daemon.RequireOwners {
		t.Error("expected require_owners=false for development")
	}

	if cfg.Journal.Compression != "zstd" {
		t.Errorf("expected compression=zstd, got %s", cfg.Journal.Compression)
	}

	if cfg.Paths.Store != filepath.Join(cfg.Paths.Root, "guardians.db") {
		t.Errorf("expected store under root, got %s", cfg.Paths.Store)
	}
}

func TestLoad_RequiresRecoveryConfig(t *testing.T) {
	// Save and restore RECOVERY_CONFIG.
	origConfig := os.Getenv("RECOVERY_CONFIG")
	defer os.Setenv("RECOVERY_CONFIG", origConfig)

	// Unset RECOVERY_CONFIG - Load() should fail.
	os.Unsetenv("RECOVERY_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when RECOVERY_CONFIG not set, got nil")
	}

	expectedMsg := "RECOVERY_CONFIG environment variable not set"
	if err.Error()[:len(expectedMsg)] != expectedMsg {
		t.Errorf("expected error message to start with %q, got %q", expectedMsg, err.Error())
	}
}

func TestLoad_WithRecoveryConfig(t *testing.T) {
	// Save and restore RECOVERY_CONFIG.
	origConfig := os.Getenv("RECOVERY_CONFIG")
	defer os.Setenv("RECOVERY_CONFIG", origConfig)

	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recovery.yaml")

	configContent := `
environment: staging
paths:
  root: /test/root
daemon:
  socket_path: /test/daemon.sock
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	// Set RECOVERY_CONFIG and load.
	os.Setenv("RECOVERY_CONFIG", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Paths.Root != "/test/root" {
		t.Errorf("expected root=/test/root, got %s", cfg.Paths.Root)
	}
}

func TestLoadFile(t *testing.T) {
	// Create temp config file.
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recovery.yaml")

	configContent := `
environment: staging

paths:
  root: /custom/root
  store: /custom/guardians.db
  owners: /custom/owners.yaml

daemon:
  socket_path: /custom/daemon.sock
  require_owners: true

store:
  pool_size: 2

journal:
  compression: lz4
  segment_bytes: 65536
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}

	if cfg.Paths.Root != "/custom/root" {
		t.Errorf("expected root=/custom/root, got %s", cfg.Paths.Root)
	}

	if cfg.Paths.Store != "/custom/guardians.db" {
		t.Errorf("expected store=/custom/guardians.db, got %s", cfg.Paths.Store)
	}

	if cfg.Daemon.SocketPath != "/custom/daemon.sock" {
		t.Errorf("expected socket_path=/custom/daemon.sock, got %s", cfg.Daemon.SocketPath)
	}

	if !cfg.Daemon.RequireOwners {
		t.Error("expected require_owners=true")
	}

	if cfg.Store.PoolSize != 2 {
		t.Errorf("expected pool_size=2, got %d", cfg.Store.PoolSize)
	}

	if cfg.Journal.Compression != "lz4" {
		t.Errorf("expected compression=lz4, got %s", cfg.Journal.Compression)
	}

	if cfg.Journal.SegmentBytes != 65536 {
		t.Errorf("expected segment_bytes=65536, got %d", cfg.Journal.SegmentBytes)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recovery.yaml")

	configContent := `
environment: production

paths:
  root: /default/root
  owners: /default/owners.yaml

journal:
  compression: zstd

production:
  paths:
    root: /prod/root
  daemon:
    require_owners: true
  journal:
    compression: lz4
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// Production overrides should be applied.
	if cfg.Paths.Root != "/prod/root" {
		t.Errorf("expected root=/prod/root, got %s", cfg.Paths.Root)
	}

	if !cfg.Daemon.RequireOwners {
		t.Error("expected require_owners=true from production override")
	}

	if cfg.Journal.Compression != "lz4" {
		t.Errorf("expected compression=lz4, got %s", cfg.Journal.Compression)
	}
}

func TestProductionDefaultsWithoutSection(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recovery.yaml")

	// No production section: the implicit production defaults apply.
	configContent := `
environment: production
paths:
  root: /prod/root
  owners: /prod/owners.yaml
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if !cfg.Daemon.RequireOwners {
		t.Error("expected require_owners=true from implicit production defaults")
	}
}

func TestEnvVarsDoNotOverride(t *testing.T) {
	// Verify that environment variables do NOT override config file values.
	// The config file is the single source of truth for deterministic configuration.

	// Save and restore env vars.
	origRoot := os.Getenv("RECOVERY_ROOT")
	origSocket := os.Getenv("RECOVERY_SOCKET")
	origEnv := os.Getenv("RECOVERY_ENVIRONMENT")
	defer func() {
		os.Setenv("RECOVERY_ROOT", origRoot)
		os.Setenv("RECOVERY_SOCKET", origSocket)
		os.Setenv("RECOVERY_ENVIRONMENT", origEnv)
	}()

	// Set env vars that should be ignored.
	os.Setenv("RECOVERY_ROOT", "/env/root")
	os.Setenv("RECOVERY_SOCKET", "/env/daemon.sock")
	os.Setenv("RECOVERY_ENVIRONMENT", "staging")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recovery.yaml")

	configContent := `
environment: development
paths:
  root: /file/root
daemon:
  socket_path: /file/daemon.sock
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	// File values should be used, NOT env vars.
	if cfg.Environment != Development {
		t.Errorf("expected environment=development from file, got %s (env vars should not override)", cfg.Environment)
	}

	if cfg.Paths.Root != "/file/root" {
		t.Errorf("expected root=/file/root from file, got %s (env vars should not override)", cfg.Paths.Root)
	}

	if cfg.Daemon.SocketPath != "/file/daemon.sock" {
		t.Errorf("expected socket_path=/file/daemon.sock from file, got %s (env vars should not override)", cfg.Daemon.SocketPath)
	}
}

func TestExpandsRootInDependentPaths(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "recovery.yaml")

	configContent := `
environment: development
paths:
  root: /data/recovery
  store: ${RECOVERY_ROOT}/db/guardians.db
  journal: ${RECOVERY_ROOT}/journal
daemon:
  socket_path: ${RECOVERY_ROOT}/daemon.sock
`

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Paths.Store != "/data/recovery/db/guardians.db" {
		t.Errorf("expected store under root, got %s", cfg.Paths.Store)
	}
	if cfg.Paths.Journal != "/data/recovery/journal" {
		t.Errorf("expected journal under root, got %s", cfg.Paths.Journal)
	}
	if cfg.Daemon.SocketPath != "/data/recovery/daemon.sock" {
		t.Errorf("expected socket under root, got %s", cfg.Daemon.SocketPath)
	}
}

func TestExpandVars(t *testing.T) {
	tests := []struct {
		input    string
		vars     map[string]string
		expected string
	}{
		{
			input:    "${HOME}/recovery",
			vars:     map[string]string{"HOME": "/home/user"},
			expected: "/home/user/recovery",
		},
		{
			input:    "${MISSING:-default}",
			vars:     map[string]string{},
			expected: "default",
		},
		{
			input:    "${PRESENT:-default}",
			vars:     map[string]string{"PRESENT": "value"},
			expected: "value",
		},
		{
			input:    "${A}/${B}",
			vars:     map[string]string{"A": "first", "B": "second"},
			expected: "first/second",
		},
		{
			input:    "no variables here",
			vars:     map[string]string{},
			expected: "no variables here",
		},
	}

	for _, tt := range tests {
		result := expandVars(tt.input, tt.vars)
		if result != tt.expected {
			t.Errorf("expandVars(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "invalid environment",
			modify: func(c *Config) {
				c.Environment = "invalid"
			},
			wantErr: true,
		},
		{
			name: "empty root path",
			modify: func(c *Config) {
				c.Paths.Root = ""
			},
			wantErr: true,
		},
		{
			name: "empty socket path",
			modify: func(c *Config) {
				c.Daemon.SocketPath = ""
			},
			wantErr: true,
		},
		{
			name: "require_owners without owners file",
			modify: func(c *Config) {
				c.Daemon.RequireOwners = true
				c.Paths.Owners = ""
			},
			wantErr: true,
		},
		{
			name: "unknown compression",
			modify: func(c *Config) {
				c.Journal.Compression = "brotli"
			},
			wantErr: true,
		},
		{
			name: "negative pool size",
			modify: func(c *Config) {
				c.Store.PoolSize = -1
			},
			wantErr: true,
		},
		{
			name: "negative segment bytes",
			modify: func(c *Config) {
				c.Journal.SegmentBytes = -1
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestJournalOptions(t *testing.T) {
	cfg := Default()
	cfg.Journal.Compression = "lz4"
	cfg.Journal.SegmentBytes = 1 << 16

	options, err := cfg.JournalOptions()
	if err != nil {
		t.Fatalf("JournalOptions failed: %v", err)
	}
	if len(options) != 2 {
		t.Errorf("expected 2 options (compression and segment size), got %d", len(options))
	}

	cfg.Journal.Compression = "nope"
	if _, err := cfg.JournalOptions(); err == nil {
		t.Error("expected error for unknown compression")
	}

	// The option list must be consumable by the journal writer.
	cfg.Journal.Compression = "none"
	cfg.Journal.SegmentBytes = 0
	options, err = cfg.JournalOptions()
	if err != nil {
		t.Fatalf("JournalOptions failed: %v", err)
	}
	writer, err := journal.OpenWriter(t.TempDir(), options...)
	if err != nil {
		t.Fatalf("OpenWriter with config options failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestEnsurePaths(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.Paths.Root = filepath.Join(tmpDir, "recovery")
	cfg.Paths.Store = filepath.Join(cfg.Paths.Root, "db", "guardians.db")
	cfg.Paths.Journal = filepath.Join(cfg.Paths.Root, "journal")

	if err := cfg.EnsurePaths(); err != nil {
		t.Fatalf("EnsurePaths failed: %v", err)
	}

	// Verify directories were created. The store path itself is a
	// file; only its parent directory is created.
	for _, path := range []string{cfg.Paths.Root, cfg.Paths.Journal, filepath.Dir(cfg.Paths.Store)} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("path %s not created: %v", path, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("path %s is not a directory", path)
		}
	}
}
