// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
)

// Services bundles the typed API surfaces over one client and one cache.
type Services struct {
	Auth          *AuthService
	Conversations *ConversationService
	Models        *ModelService
	Chat          *ChatService
	Preferences   *PreferenceService
}

// New wires the services to a client and cache.
func New(client *api.Client, c *cache.Cache) *Services {
	return &Services{
		Auth:          &AuthService{client: client, cache: c},
		Conversations: &ConversationService{client: client, cache: c},
		Models:        &ModelService{client: client, cache: c},
		Chat:          &ChatService{client: client, cache: c},
		Preferences:   &PreferenceService{client: client, cache: c},
	}
}
