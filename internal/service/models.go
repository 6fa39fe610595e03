// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/model"
)

// ModelService wraps the model catalog endpoints.
type ModelService struct {
	client *api.Client
	cache  *cache.Cache
}

// List returns the active model configurations, served from cache when fresh.
func (s *ModelService) List(ctx context.Context) ([]model.Model, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyModels, func(ctx context.Context) ([]model.Model, error) {
		var out []model.Model
		err := s.client.Get(ctx, "/llm/models/", &out)
		return out, err
	})
}

// Test runs a one-off prompt against a model. Results are never cached; the
// whole point is a fresh generation.
func (s *ModelService) Test(ctx context.Context, req model.ModelTestRequest) (*model.ModelTestResponse, error) {
	var out model.ModelTestResponse
	if err := s.client.Post(ctx, "/llm/test-model/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
