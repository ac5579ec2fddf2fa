// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/soloking1412/email-recovery/lib/journal"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the master configuration for the recovery daemon and its
// tooling.
type Config struct {
	// Environment identifies the deployment type (development, staging,
	// production).
	Environment Environment `yaml:"environment"`

	// Paths configures file and directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Daemon configures the recovery daemon.
	Daemon DaemonConfig `yaml:"daemon"`

	// Store configures the SQLite guardian store.
	Store StoreConfig `yaml:"store"`

	// Journal configures the audit journal.
	Journal JournalConfig `yaml:"journal"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths   *PathsConfig   `yaml:"paths,omitempty"`
	Daemon  *DaemonConfig  `yaml:"daemon,omitempty"`
	Store   *StoreConfig   `yaml:"store,omitempty"`
	Journal *JournalConfig `yaml:"journal,omitempty"`
}

// PathsConfig configures file and directory locations.
type PathsConfig struct {
	// Root is the base directory for recovery daemon state.
	Root string `yaml:"root"`

	// Store is the SQLite database file holding guardian records.
	// Default: ${root}/guardians.db
	Store string `yaml:"store"`

	// Journal is the directory holding audit journal segments.
	// Default: ${root}/journal
	Journal string `yaml:"journal"`

	// Owners is a YAML file declaring account owner sets for recovery
	// subject validation. Optional: without it the daemon still serves
	// guardian bookkeeping, but every recovery subject is rejected
	// because no account has owners.
	Owners string `yaml:"owners"`
}

// DaemonConfig configures the recovery daemon.
type DaemonConfig struct {
	// SocketPath is the Unix socket the daemon serves on.
	// Default: /run/email-recovery/daemon.sock
	SocketPath string `yaml:"socket_path"`

	// RequireOwners refuses daemon startup when no owners file is
	// configured. Recovery subjects can never validate without owner
	// sets, so strict deployments fail at boot instead of serving a
	// daemon that rejects every recovery.
	// Default: false (development), true (production)
	RequireOwners bool `yaml:"require_owners"`
}

// StoreConfig configures the SQLite guardian store.
type StoreConfig struct {
	// PoolSize is the number of pooled SQLite connections.
	// Zero derives the size from the CPU count.
	PoolSize int `yaml:"pool_size"`
}

// JournalConfig configures the audit journal.
type JournalConfig struct {
	// Compression selects the algorithm for sealed segments:
	// "none", "lz4", or "zstd".
	// Default: zstd
	Compression string `yaml:"compression"`

	// SegmentBytes is the body size at which open segments are sealed.
	// Zero uses the journal's built-in default.
	SegmentBytes int `yaml:"segment_bytes"`
}

// Default returns the default configuration.
// These defaults are used as a base before loading the config file.
// They exist primarily to ensure all fields have sensible zero-values,
// not as a fallback - the config file is required.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(homeDir, ".local", "state", "email-recovery")

	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Root:    defaultRoot,
			Store:   filepath.Join(defaultRoot, "guardians.db"),
			Journal: filepath.Join(defaultRoot, "journal"),
			Owners:  "",
		},
		Daemon: DaemonConfig{
			SocketPath:    "/run/email-recovery/daemon.sock",
			RequireOwners: false,
		},
		Store: StoreConfig{
			PoolSize: 0,
		},
		Journal: JournalConfig{
			Compression:  "zstd",
			SegmentBytes: 0,
		},
	}
}

// Load loads configuration from the RECOVERY_CONFIG environment
// variable.
//
// This is the only way to load configuration without an explicit path.
// There are no fallbacks or defaults - if RECOVERY_CONFIG is not set,
// this fails. This ensures deterministic, auditable configuration with
// no hidden overrides.
func Load() (*Config, error) {
	configPath := os.Getenv("RECOVERY_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("RECOVERY_CONFIG environment variable not set; " +
			"set it to the path of your recovery.yaml config file, or use --config flag")
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
//
// The config file is the single source of truth. Environment variables
// do not override config values - this ensures deterministic, auditable
// configuration. The only expansion performed is ${HOME} and similar
// path variables for portability.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, c)
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
		// Production defaults: a daemon without owner sets rejects
		// every recovery, which is a misconfiguration to catch at boot.
		if overrides == nil {
			overrides = &ConfigOverrides{
				Daemon: &DaemonConfig{
					RequireOwners: true,
				},
			}
		}
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil {
		if overrides.Paths.Root != "" {
			c.Paths.Root = overrides.Paths.Root
		}
		if overrides.Paths.Store != "" {
			c.Paths.Store = overrides.Paths.Store
		}
		if overrides.Paths.Journal != "" {
			c.Paths.Journal = overrides.Paths.Journal
		}
		if overrides.Paths.Owners != "" {
			c.Paths.Owners = overrides.Paths.Owners
		}
	}

	if overrides.Daemon != nil {
		if overrides.Daemon.SocketPath != "" {
			c.Daemon.SocketPath = overrides.Daemon.SocketPath
		}
		// RequireOwners is a bool, so we always apply it from overrides.
		c.Daemon.RequireOwners = overrides.Daemon.RequireOwners
	}

	if overrides.Store != nil {
		if overrides.Store.PoolSize != 0 {
			c.Store.PoolSize = overrides.Store.PoolSize
		}
	}

	if overrides.Journal != nil {
		if overrides.Journal.Compression != "" {
			c.Journal.Compression = overrides.Journal.Compression
		}
		if overrides.Journal.SegmentBytes != 0 {
			c.Journal.SegmentBytes = overrides.Journal.SegmentBytes
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"RECOVERY_ROOT": c.Paths.Root,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Root = expandVars(c.Paths.Root, vars)
	vars["RECOVERY_ROOT"] = c.Paths.Root // Update for dependent paths.

	c.Paths.Store = expandVars(c.Paths.Store, vars)
	c.Paths.Journal = expandVars(c.Paths.Journal, vars)
	c.Paths.Owners = expandVars(c.Paths.Owners, vars)
	c.Daemon.SocketPath = expandVars(c.Daemon.SocketPath, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Root == "" {
		errs = append(errs, fmt.Errorf("paths.root is required"))
	}

	if c.Paths.Store == "" {
		errs = append(errs, fmt.Errorf("paths.store is required"))
	}

	if c.Paths.Journal == "" {
		errs = append(errs, fmt.Errorf("paths.journal is required"))
	}

	if c.Daemon.SocketPath == "" {
		errs = append(errs, fmt.Errorf("daemon.socket_path is required"))
	}

	if c.Daemon.RequireOwners && c.Paths.Owners == "" {
		errs = append(errs, fmt.Errorf("daemon.require_owners is set but paths.owners is not configured"))
	}

	if c.Store.PoolSize < 0 {
		errs = append(errs, fmt.Errorf("store.pool_size must not be negative"))
	}

	if _, err := journal.ParseCompressionTag(c.Journal.Compression); err != nil {
		errs = append(errs, fmt.Errorf("journal.compression: %w", err))
	}

	if c.Journal.SegmentBytes < 0 {
		errs = append(errs, fmt.Errorf("journal.segment_bytes must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// JournalOptions translates the journal section into writer options.
// Call Validate first; an unknown compression name is an error here
// too.
func (c *Config) JournalOptions() ([]journal.WriterOption, error) {
	tag, err := journal.ParseCompressionTag(c.Journal.Compression)
	if err != nil {
		return nil, fmt.Errorf("journal.compression: %w", err)
	}

	options := []journal.WriterOption{journal.WithCompression(tag)}
	if c.Journal.SegmentBytes > 0 {
		options = append(options, journal.WithSegmentBytes(c.Journal.SegmentBytes))
	}
	return options, nil
}

// EnsurePaths creates the configured state directories if they don't
// exist. The socket directory is not created here: its lifecycle
// belongs to the init system (RuntimeDirectory or equivalent).
func (c *Config) EnsurePaths() error {
	paths := []string{
		c.Paths.Root,
		c.Paths.Journal,
		filepath.Dir(c.Paths.Store),
	}

	for _, path := range paths {
		if path == "" || path == "." {
			continue
		}
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}

	return nil
}
