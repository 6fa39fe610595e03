// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"
)

func TestStreamReader_AccumulatesChunks(t *testing.T) {
	raw := `data: {"chunk": "Hel", "conversation_id": 9, "model_used": "llama3"}

data: {"chunk": "lo ", "conversation_id": 9, "model_used": "llama3"}

data: {"chunk": "world", "conversation_id": 9, "model_used": "llama3"}

data: [DONE]

`
	var seen []string
	reader := newStreamReader(strings.NewReader(raw))
	result, err := reader.process(context.Background(), func(chunk StreamChunk) {
		seen = append(seen, chunk.Content)
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	if result.Content != "Hello world" {
		t.Errorf("content = %q", result.Content)
	}
	if result.ConversationID != 9 {
		t.Errorf("conversation id = %d", result.ConversationID)
	}
	if result.ModelUsed != "llama3" {
		t.Errorf("model = %q", result.ModelUsed)
	}
	if result.Chunks != 3 {
		t.Errorf("chunks = %d", result.Chunks)
	}
	if strings.Join(seen, "") != "Hello world" {
		t.Errorf("callback order broken: %v", seen)
	}
}

func TestStreamReader_SkipsMalformedLines(t *testing.T) {
	raw := "data: not json at all\n\n" +
		"data: {\"chunk\": \"ok\", \"conversation_id\": 1}\n\n" +
		"data: [DONE]\n\n"

	reader := newStreamReader(strings.NewReader(raw))
	result, err := reader.process(context.Background(), nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.Content != "ok" || result.Chunks != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestStreamReader_ServerErrorChunk(t *testing.T) {
	raw := "data: {\"chunk\": \"par\", \"conversation_id\": 2}\n\n" +
		"data: {\"error\": \"model unavailable\"}\n\n"

	reader := newStreamReader(strings.NewReader(raw))
	_, err := reader.process(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected server error, got %v", err)
	}
}

func TestStreamReader_EOFWithoutDoneMarker(t *testing.T) {
	// A connection that drops before [DONE] still yields what arrived.
	raw := "data: {\"chunk\": \"partial\", \"conversation_id\": 3}\n\n"

	reader := newStreamReader(strings.NewReader(raw))
	result, err := reader.process(context.Background(), nil)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if result.Content != "partial" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestStreamReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := newStreamReader(strings.NewReader("data: {\"chunk\": \"x\"}\n\n"))
	if _, err := reader.process(ctx, nil); err == nil {
		t.Fatal("expected context error")
	}
}
