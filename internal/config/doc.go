// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parlance.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Sources, in order of precedence:
//   - PARLANCE_* environment variables
//   - ~/.parlance/config.toml
//   - Built-in defaults
package config
