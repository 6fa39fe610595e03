// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/morganforge/parlance/internal/util"
)

// =============================================================================
// MESSAGE
// =============================================================================

// Role identifies the author of a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is a single chat message within a conversation.
type Message struct {
	ID         int            `json:"id"`
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	TokensUsed int            `json:"tokens_used,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// =============================================================================
// CONVERSATION
// =============================================================================

// Conversation is the full detail view: metadata plus all messages.
type Conversation struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	ModelID      int       `json:"model"`
	ModelName    string    `json:"model_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	IsArchived   bool      `json:"is_archived"`
	Messages     []Message `json:"messages"`
	MessageCount int       `json:"message_count"`
}

// Preview returns a short preview from the first user message, or empty
// string if there is none.
func (c *Conversation) Preview() string {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return util.TruncateRunes(msg.Content, 80)
		}
	}
	return ""
}

// LastMessage is the truncated trailing message carried in list views.
type LastMessage struct {
	Content   string    `json:"content"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ConversationSummary is the list view of a conversation: metadata and the
// last message, without the full message history.
type ConversationSummary struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	ModelID      int          `json:"model"`
	ModelName    string       `json:"model_name"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	IsArchived   bool         `json:"is_archived"`
	MessageCount int          `json:"message_count"`
	LastMessage  *LastMessage `json:"last_message"`
}

// ConversationUpdate carries the mutable fields for PATCH requests. Nil
// fields are omitted so untouched fields keep their server-side values.
type ConversationUpdate struct {
	Title   *string `json:"title,omitempty"`
	ModelID *int    `json:"model,omitempty"`
}

// SearchResult wraps the search endpoint's response envelope.
type SearchResult struct {
	Conversations []ConversationSummary `json:"conversations"`
}
