// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/model"
)

// AuthService wraps the authentication endpoints. Token storage and session
// state transitions are the session layer's responsibility; this service
// only moves payloads.
type AuthService struct {
	client *api.Client
	cache  *cache.Cache
}

// Register creates an account and returns the issued tokens plus the user.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := s.client.Post(ctx, "/auth/register/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and returns the issued tokens plus the user.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := s.client.Post(ctx, "/auth/login/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profile returns the authenticated user's profile, served from cache when
// fresh.
func (s *AuthService) Profile(ctx context.Context) (model.User, error) {
	return cache.Fetch(ctx, s.cache, cache.KeyProfile, func(ctx context.Context) (model.User, error) {
		var user model.User
		err := s.client.Get(ctx, "/auth/profile/", &user)
		return user, err
	})
}

// UpdateProfile updates profile fields and invalidates the cached profile.
func (s *AuthService) UpdateProfile(ctx context.Context, fields map[string]any) (model.User, error) {
	var user model.User
	if err := s.client.Put(ctx, "/auth/profile/update/", fields, &user); err != nil {
		return model.User{}, err
	}
	invalidate(s.cache, OpUpdateProfile, 0)
	return user, nil
}

// ChangePassword changes the account password. Existing tokens stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, req model.PasswordChangeRequest) error {
	return s.client.Post(ctx, "/auth/change-password/", req, nil)
}

// Logout asks the server to blacklist the refresh token. Callers tear down
// local state regardless of this call's outcome.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh": refreshToken}
	return s.client.Post(ctx, "/auth/logout/", body, nil)
}
