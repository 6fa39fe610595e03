// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/model"
)

// ConversationService wraps the conversation CRUD, archive, and search
// endpoints.
type ConversationService struct {
	client *api.Client
	cache  *cache.Cache
}

// convPath builds "/llm/conversations/<id>/<suffix>".
func convPath(id int, suffix string) string {
	return "/llm/conversations/" + strconv.Itoa(id) + "/" + suffix
}

// List returns the user's unarchived conversations, most recent first.
func (s *ConversationService) List(ctx context.Context) ([]model.ConversationSummary, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyConversations, func(ctx context.Context) ([]model.ConversationSummary, error) {
		var out []model.ConversationSummary
		err := s.client.Get(ctx, "/llm/conversations/", &out)
		return out, err
	})
}

// Create starts a new conversation with the given title and model.
func (s *ConversationService) Create(ctx context.Context, title string, modelID int) (*model.ConversationSummary, error) {
	body := map[string]any{"title": title, "model": modelID}
	var out model.ConversationSummary
	if err := s.client.Post(ctx, "/llm/conversations/", body, &out); err != nil {
		return nil, err
	}
	invalidate(s.cache, OpCreateConversation, out.ID)
	return &out, nil
}

// Get returns a conversation with its full message history.
func (s *ConversationService) Get(ctx context.Context, id int) (*model.Conversation, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyConversation(id), func(ctx context.Context) (*model.Conversation, error) {
		var out model.Conversation
		if err := s.client.Get(ctx, convPath(id, ""), &out); err != nil {
			return nil, err
		}
		return &out, nil
	})
}

// Messages returns a conversation's messages.
func (s *ConversationService) Messages(ctx context.Context, id int) ([]model.Message, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyConversationMessages(id), func(ctx context.Context) ([]model.Message, error) {
		var out []model.Message
		err := s.client.Get(ctx, convPath(id, "messages/"), &out)
		return out, err
	})
}

// Update patches mutable conversation fields (title, model).
func (s *ConversationService) Update(ctx context.Context, id int, update model.ConversationUpdate) (*model.Conversation, error) {
	var out model.Conversation
	if err := s.client.Patch(ctx, convPath(id, ""), update, &out); err != nil {
		return nil, err
	}
	invalidate(s.cache, OpUpdateConversation, id)
	return &out, nil
}

// Delete permanently removes a conversation.
func (s *ConversationService) Delete(ctx context.Context, id int) error {
	if err := s.client.Delete(ctx, convPath(id, "delete/"), nil); err != nil {
		return err
	}
	invalidate(s.cache, OpDeleteConversation, id)
	return nil
}

// Archive hides a conversation from the main list.
func (s *ConversationService) Archive(ctx context.Context, id int) error {
	if err := s.client.Post(ctx, convPath(id, "archive/"), nil, nil); err != nil {
		return err
	}
	invalidate(s.cache, OpArchiveConversation, id)
	return nil
}

// Unarchive restores an archived conversation to the main list.
func (s *ConversationService) Unarchive(ctx context.Context, id int) error {
	if err := s.client.Post(ctx, convPath(id, "unarchive/"), nil, nil); err != nil {
		return err
	}
	invalidate(s.cache, OpUnarchiveConversation, id)
	return nil
}

// Search finds conversations whose title or message content matches query.
// An empty query returns no results without a network call.
func (s *ConversationService) Search(ctx context.Context, query string) ([]model.ConversationSummary, error) {
	if query == "" {
		return nil, nil
	}
	return cache.Fetch(ctx, s.cache, cache.KeySearch(query), func(ctx context.Context) ([]model.ConversationSummary, error) {
		var out model.SearchResult
		path := "/llm/conversations/search/?q=" + url.QueryEscape(query)
		if err := s.client.Get(ctx, path, &out); err != nil {
			return nil, err
		}
		return out.Conversations, nil
	})
}
