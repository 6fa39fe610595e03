// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session ties the credential store, API client, cache, and domain
// services into a single authenticated session with idle-timeout tracking.
//
// # Key Types
//
//   - Session: owns the wired client stack for one authenticated user
//   - Config: construction parameters (base URL, idle timeout, callbacks)
//
// # Usage
//
//	store, _ := credentials.OpenBoltStore(path)
//	sess := session.New(session.Config{BaseURL: url}, store)
//	user, err := sess.Login(ctx, model.LoginRequest{...})
//	convs, err := sess.Services().Conversations.List(ctx)
//
// Login and Register persist the returned token pair and reset the cache so
// no data from a previous account survives. Logout tears local state down
// unconditionally, even when the server-side revocation call fails. A
// terminal token-refresh failure inside the API client triggers the same
// teardown through the session-expired hook.
package session
