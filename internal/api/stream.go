// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// =============================================================================
// STREAMING REQUESTS
// =============================================================================

// Stream performs a request whose response is consumed incrementally. The
// returned body has no read deadline; cancellation is the caller's context.
// The caller must Close the body.
//
// The auth-refresh contract matches Do: a 401 triggers one shared refresh
// and one retry before the error propagates.
func (c *Client) Stream(ctx context.Context, method, path string, body any) (io.ReadCloser, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	rc, apiErr := c.openStream(ctx, method, path, payload)
	if apiErr == nil {
		return rc, nil
	}
	if apiErr.Kind != KindAuth || path == refreshPath {
		return nil, apiErr
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		return nil, apiErr
	}

	rc, retryErr := c.openStream(ctx, method, path, payload)
	if retryErr != nil {
		return nil, retryErr
	}
	return rc, nil
}

// openStream opens a single streaming exchange. Error responses are drained
// and normalized; success hands the live body to the caller.
func (c *Client) openStream(ctx context.Context, method, path string, payload []byte) (io.ReadCloser, *APIError) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiRoot+path, reader)
	if err != nil {
		return nil, newNetworkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if pair, ok := c.store.Get(); ok && pair.Access != "" {
		req.Header.Set("Authorization", "Bearer "+pair.Access)
	}

	c.logRequest(req)
	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		errBody, readErr := readResponse(resp)
		if readErr != nil {
			return nil, newNetworkError(readErr)
		}
		return nil, newAPIError(resp.StatusCode, errBody)
	}

	return resp.Body, nil
}
