// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
)

// =============================================================================
// SINGLE-FLIGHT TOKEN REFRESH
// =============================================================================

// refreshGroupKey is the constant singleflight key: there is at most one
// refresh in flight per client, ever.
const refreshGroupKey = "refresh"

// refreshRequest is the payload for POST /auth/token/refresh/.
type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// refreshResponse carries the new access token. The platform does not
// rotate refresh tokens.
type refreshResponse struct {
	Access string `json:"access"`
}

// refreshAccessToken performs (or joins) the silent token refresh.
//
// Any number of requests failing with 401 while a refresh is outstanding
// share the single in-flight call and observe the same outcome. On success
// the store holds the new access token; on failure the store is cleared,
// the session-expired hook fires, and ErrRefreshFailed is returned.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do(refreshGroupKey, func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

// doRefresh executes the actual refresh exchange. Runs on exactly one
// goroutine at a time; everyone else waits on the singleflight result.
func (c *Client) doRefresh(ctx context.Context) error {
	pair, ok := c.store.Get()
	if !ok || pair.Refresh == "" {
		c.expireSession()
		return fmt.Errorf("%w: %w", ErrRefreshFailed, ErrNoCredentials)
	}

	var resp refreshResponse
	// The refresh call goes through Do like any other request; send skips
	// the interceptor for refreshPath, so a 401 here cannot recurse.
	err := c.Do(ctx, http.MethodPost, refreshPath, refreshRequest{Refresh: pair.Refresh}, &resp)
	if err != nil {
		// Refresh failure is terminal for the session and never retried.
		c.expireSession()
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	if err := c.store.SetAccess(resp.Access); err != nil {
		c.expireSession()
		return fmt.Errorf("%w: storing refreshed token: %w", ErrRefreshFailed, err)
	}

	log.Printf("API auth: access token refreshed")
	return nil
}

// expireSession clears credentials and notifies the session layer. The cache
// clear and logged-out transition happen in the registered hook.
func (c *Client) expireSession() {
	if err := c.store.Clear(); err != nil {
		log.Printf("API auth: failed to clear credentials: %v", err)
	}
	if c.onSessionExpired != nil {
		c.onSessionExpired()
	}
}
