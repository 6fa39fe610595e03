// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package service provides the typed operations of the Parlance API.
//
// Each service is a thin wrapper over the HTTP client: it serializes the
// request, decodes the response, and keeps the query cache coherent. Reads
// go through the cache; mutations invalidate exactly the key set declared
// for them in invalidation.go, and only after the server confirms success.
//
// Services surface *api.APIError unchanged - no rewrapping, so callers can
// inspect status, kind, and field errors directly.
//
// # Services
//
//   - Auth: register, login, profile, password, logout
//   - Conversations: list, create, get, update, archive, delete, search
//   - Models: list, test
//   - Chat: send, stream
//   - Preferences: get, update
package service
