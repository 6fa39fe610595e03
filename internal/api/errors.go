// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================

// ErrorKind categorizes API errors for handling.
type ErrorKind int

const (
	// KindUnknown is the fallback for errors that fit no other category.
	KindUnknown ErrorKind = iota
	// KindNetwork means no response was received at all.
	KindNetwork
	// KindAuth is an authorization failure (HTTP 401).
	KindAuth
	// KindValidation is a 4xx with field-level details for forms.
	KindValidation
	// KindServer is a 5xx from the platform.
	KindServer
)

// String returns a human-readable category name.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Sentinel errors for common failures.
var (
	// ErrUnauthorized indicates the request was rejected with HTTP 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRefreshFailed indicates the silent token refresh was rejected.
	// Terminal for the session: the caller must treat it as a logout.
	ErrRefreshFailed = errors.New("token refresh failed")

	// ErrNoCredentials indicates a refresh was needed but no refresh token
	// is stored.
	ErrNoCredentials = errors.New("no stored credentials")
)

// =============================================================================
// API ERROR
// =============================================================================

// APIError is the normalized error for any non-2xx response. Every failed
// request surfaces one, so callers always see a uniform shape regardless of
// which endpoint produced it.
type APIError struct {
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	// Kind is the error category derived from Status.
	Kind ErrorKind
	// Message is a human-readable message extracted from the response body.
	Message string
	// Details is the raw response body for callers that need field-level
	// validation errors.
	Details json.RawMessage
	// cause is the underlying transport error for network failures.
	cause error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("api: %s error (HTTP %d): %s", e.Kind, e.Status, e.Message)
}

// Unwrap exposes the underlying cause, if any, to errors.Is/As.
func (e *APIError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	if e.Kind == KindAuth {
		return ErrUnauthorized
	}
	return nil
}

// FieldErrors parses the body as a map of field name to error messages, the
// shape the platform uses for form validation failures. Returns nil if the
// body has a different shape.
func (e *APIError) FieldErrors() map[string][]string {
	if len(e.Details) == 0 {
		return nil
	}
	var fields map[string][]string
	if err := json.Unmarshal(e.Details, &fields); err != nil {
		return nil
	}
	return fields
}

// kindForStatus maps an HTTP status to an error category.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status >= 400 && status < 500:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// newNetworkError wraps a transport failure where no response arrived.
func newNetworkError(err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: "request failed: " + err.Error(),
		cause:   err,
	}
}

// newAPIError normalizes a non-2xx response into an APIError. The message is
// extracted from the body by checking, in order: a plain-string body, then a
// "message" field, then a "detail" field, then an "error" field, falling
// back to a generic message.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		Status:  status,
		Kind:    kindForStatus(status),
		Message: extractMessage(status, body),
		Details: json.RawMessage(body),
	}
}

// extractMessage pulls a human-readable message out of an error body.
func extractMessage(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return genericMessage(status)
	}

	// Plain JSON string body.
	var s string
	if err := json.Unmarshal(body, &s); err == nil && s != "" {
		return s
	}

	// Object body: message, then detail, then error.
	var envelope struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Message != "":
			return envelope.Message
		case envelope.Detail != "":
			return envelope.Detail
		case envelope.Error != "":
			return envelope.Error
		}
		return genericMessage(status)
	}

	// Non-JSON body: treat the raw text as the message.
	return trimmed
}

// genericMessage is the fallback when the body carries no usable message.
func genericMessage(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	return "request failed"
}
