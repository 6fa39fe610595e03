// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"net/http"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/model"
)

// ChatService wraps the chat completion endpoints.
type ChatService struct {
	client *api.Client
	cache  *cache.Cache
}

// Send posts a message and waits for the complete response. The response
// names the conversation (created server-side when the request carried no
// conversation_id), and that conversation's cached state is invalidated.
func (s *ChatService) Send(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	req.ApplyDefaults()
	req.Stream = false

	var out model.ChatResponse
	if err := s.client.Post(ctx, "/llm/chat/", req, &out); err != nil {
		return nil, err
	}
	invalidate(s.cache, OpChatSend, out.ConversationID)
	return &out, nil
}

// Stream posts a message and delivers the response incrementally through
// callback. Blocks until the stream completes, the context is cancelled, or
// the server reports an error. Returns the accumulated result.
func (s *ChatService) Stream(ctx context.Context, req model.ChatRequest, callback StreamCallback) (*StreamResult, error) {
	req.ApplyDefaults()
	req.Stream = true

	body, err := s.client.Stream(ctx, http.MethodPost, "/llm/chat/stream/", req)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	reader := newStreamReader(body)
	result, err := reader.process(ctx, callback)
	if err != nil {
		return nil, err
	}

	// The first chunk names the conversation; invalidate only once the
	// stream has fully completed, never mid-flight.
	if result.ConversationID != 0 {
		invalidate(s.cache, OpChatSend, result.ConversationID)
	}
	return result, nil
}
