// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the data types exchanged with the Parlance API.
//
// The types mirror the platform's REST serializers field-for-field, so a
// decoded response can be used directly without a mapping layer.
//
// # Key Types
//
//   - User: account profile returned by the auth endpoints
//   - TokenPair: access/refresh credential pair issued on login
//   - Model: a language-model configuration registered on the platform
//   - Conversation, ConversationSummary: full and list views of a conversation
//   - Message: a single chat message with role and token accounting
//   - Preferences: per-user model defaults
//   - ChatRequest, ChatResponse: the chat endpoint payloads
package model
