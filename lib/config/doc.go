// Copyright 2026 The Email Recovery Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the recovery
// daemon and its tooling.
//
// Configuration is loaded from a single file specified by either the
// RECOVERY_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. This ensures deterministic, auditable
// configuration with no hidden overrides.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production defaults are stricter: a
// missing owners file fails daemon startup instead of silently
// rejecting every recovery subject.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${RECOVERY_ROOT}, and ${VAR:-default} patterns are
// expanded. No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Daemon, Store, Journal
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// The journal section translates directly into writer options via
// [Config.JournalOptions].
package config
