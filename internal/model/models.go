// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// MODEL CONFIGURATIONS
// =============================================================================

// Model backend types known to the platform.
const (
	ModelTypeHuggingFace = "huggingface"
	ModelTypeOllama      = "ollama"
	ModelTypeCustom      = "custom"
)

// Model is a language-model configuration registered on the platform.
// Inference runs server-side; the client only selects configurations by ID.
type Model struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	ModelType   string         `json:"model_type"`
	ModelID     string         `json:"model_id"`
	Description string         `json:"description,omitempty"`
	IsActive    bool           `json:"is_active"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	TopP        float64        `json:"top_p"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Config      map[string]any `json:"config,omitempty"`
}

// ModelTestRequest is the payload for POST /llm/test-model/.
type ModelTestRequest struct {
	ModelID     int     `json:"model_id"`
	TestPrompt  string  `json:"test_prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// ModelTestResponse is the result of a model test run.
type ModelTestResponse struct {
	Model      string `json:"model"`
	Response   string `json:"response"`
	TestPrompt string `json:"test_prompt"`
}

// =============================================================================
// PREFERENCES
// =============================================================================

// Preferences holds per-user model defaults.
type Preferences struct {
	DefaultModelID     *int      `json:"default_model"`
	DefaultModelName   string    `json:"default_model_name,omitempty"`
	DefaultTemperature float64   `json:"default_temperature"`
	DefaultMaxTokens   int       `json:"default_max_tokens"`
	PreferredModels    []Model   `json:"preferred_models,omitempty"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
	UpdatedAt          time.Time `json:"updated_at,omitempty"`
}

// PreferencesUpdate carries the mutable preference fields for PUT requests.
type PreferencesUpdate struct {
	DefaultModelID     *int     `json:"default_model,omitempty"`
	DefaultTemperature *float64 `json:"default_temperature,omitempty"`
	DefaultMaxTokens   *int     `json:"default_max_tokens,omitempty"`
}

// =============================================================================
// CHAT
// =============================================================================

// Default sampling parameters applied when a ChatRequest leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultTopP        = 0.9
)

// ChatRequest is the payload for POST /llm/chat/ and /llm/chat/stream/.
// A nil ConversationID starts a new conversation; a nil ModelID uses the
// user's default model.
type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *int    `json:"conversation_id,omitempty"`
	ModelID        *int    `json:"model_id,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty"`
	TopP           float64 `json:"top_p,omitempty"`
	Stream         bool    `json:"stream,omitempty"`
	SystemPrompt   string  `json:"system_prompt,omitempty"`
}

// ApplyDefaults fills unset sampling parameters with the platform defaults.
func (r *ChatRequest) ApplyDefaults() {
	if r.Temperature == 0 {
		r.Temperature = DefaultTemperature
	}
	if r.MaxTokens == 0 {
		r.MaxTokens = DefaultMaxTokens
	}
	if r.TopP == 0 {
		r.TopP = DefaultTopP
	}
}

// ChatResponse is the non-streaming chat result.
type ChatResponse struct {
	Response       string `json:"response"`
	ConversationID int    `json:"conversation_id"`
	MessageID      int    `json:"message_id"`
	TokensUsed     int    `json:"tokens_used"`
	ModelUsed      string `json:"model_used"`
}
