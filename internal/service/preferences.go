// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/model"
)

// PreferenceService wraps the per-user model preference endpoints.
type PreferenceService struct {
	client *api.Client
	cache  *cache.Cache
}

// Get returns the user's preferences, served from cache when fresh.
func (s *PreferenceService) Get(ctx context.Context) (model.Preferences, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyPreferences, func(ctx context.Context) (model.Preferences, error) {
		var out model.Preferences
		err := s.client.Get(ctx, "/llm/preferences/", &out)
		return out, err
	})
}

// Update changes preference fields and invalidates the cached copy.
func (s *PreferenceService) Update(ctx context.Context, update model.PreferencesUpdate) (model.Preferences, error) {
	var out model.Preferences
	if err := s.client.Put(ctx, "/llm/preferences/update/", update, &out); err != nil {
		return model.Preferences{}, err
	}
	invalidate(s.cache, OpUpdatePreferences, 0)
	return out, nil
}
