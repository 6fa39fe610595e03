// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and handlers for parlance.
//
// Parsing is two-stage: Parse picks the command and global flags, each
// handler parses its own subcommands and options with ArgParser. Handlers
// wire config, credential storage, and the session stack through App.
package cli
