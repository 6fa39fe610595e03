// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
)

func TestTokenPairIsZero(t *testing.T) {
	var empty TokenPair
	if !empty.IsZero() {
		t.Error("empty pair should be zero")
	}
	if (TokenPair{Access: "a"}).IsZero() {
		t.Error("pair with access token should not be zero")
	}
	if (TokenPair{Refresh: "r"}).IsZero() {
		t.Error("pair with refresh token should not be zero")
	}
}

func TestChatRequestApplyDefaults(t *testing.T) {
	req := ChatRequest{Message: "hello"}
	req.ApplyDefaults()

	if req.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, DefaultTemperature)
	}
	if req.MaxTokens != DefaultMaxTokens {
		t.Errorf("max_tokens = %v, want %v", req.MaxTokens, DefaultMaxTokens)
	}
	if req.TopP != DefaultTopP {
		t.Errorf("top_p = %v, want %v", req.TopP, DefaultTopP)
	}

	// Explicit values are left alone.
	req2 := ChatRequest{Message: "hi", Temperature: 1.2, MaxTokens: 64, TopP: 0.5}
	req2.ApplyDefaults()
	if req2.Temperature != 1.2 || req2.MaxTokens != 64 || req2.TopP != 0.5 {
		t.Errorf("explicit sampling params were overwritten: %+v", req2)
	}
}

func TestConversationPreview(t *testing.T) {
	conv := Conversation{
		Messages: []Message{
			NewSystemMessage("you are helpful"),
			NewUserMessage("what is the capital of France?"),
			NewAssistantMessage("Paris."),
		},
	}
	if got := conv.Preview(); got != "what is the capital of France?" {
		t.Errorf("Preview() = %q", got)
	}

	empty := Conversation{}
	if got := empty.Preview(); got != "" {
		t.Errorf("Preview() on empty conversation = %q, want empty", got)
	}
}

func TestConversationUpdateOmitsNilFields(t *testing.T) {
	title := "renamed"
	data, err := json.Marshal(ConversationUpdate{Title: &title})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `{"title":"renamed"}` {
		t.Errorf("unexpected payload: %s", data)
	}
}

func TestAuthResponseTokenPair(t *testing.T) {
	resp := AuthResponse{Access: "acc", Refresh: "ref", User: User{ID: 7}}
	pair := resp.TokenPair()
	if pair.Access != "acc" || pair.Refresh != "ref" {
		t.Errorf("unexpected pair: %+v", pair)
	}
}

func TestConversationSummaryDecode(t *testing.T) {
	data := []byte(`{
		"id": 3,
		"title": "Trip planning",
		"model": 1,
		"model_name": "llama3",
		"is_archived": false,
		"message_count": 4,
		"last_message": {"content": "sounds good", "role": "assistant"}
	}`)

	var summary ConversationSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if summary.ID != 3 || summary.ModelName != "llama3" || summary.MessageCount != 4 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.LastMessage == nil || summary.LastMessage.Role != RoleAssistant {
		t.Errorf("last_message not decoded: %+v", summary.LastMessage)
	}
}
