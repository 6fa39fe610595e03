// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package credentials stores the session's access/refresh token pair.
//
// The store is the single holder of credentials for a session: login and
// register write a full pair, the refresh path replaces the access token
// only, and logout clears both. All updates are atomic with respect to
// concurrent readers - a reader never observes a half-updated pair.
//
// # Key Types
//
//   - Store: the storage interface consumed by the HTTP client
//   - BoltStore: persistent implementation over a bbolt database
//   - MemoryStore: volatile implementation for tests and one-shot sessions
//
// # Storage Layout
//
// BoltStore keeps both tokens in a single bucket under the literal keys
// "access_token" and "refresh_token".
package credentials
