// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// AUTH TYPES
// =============================================================================

// TokenPair holds the access/refresh credential pair issued by the platform.
// The access token authorizes API requests; the refresh token obtains a new
// access token without re-authentication.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IsZero reports whether the pair holds no credentials.
func (p TokenPair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// User is the account profile returned by the auth endpoints.
type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// RegisterRequest is the payload for POST /auth/register/.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// LoginRequest is the payload for POST /auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by login and register: tokens plus the user.
type AuthResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// TokenPair returns the credential pair carried in the response.
func (r *AuthResponse) TokenPair() TokenPair {
	return TokenPair{Access: r.Access, Refresh: r.Refresh}
}

// PasswordChangeRequest is the payload for POST /auth/change-password/.
type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
