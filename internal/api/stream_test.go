// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/morganforge/parlance/internal/credentials"
	"github.com/morganforge/parlance/internal/model"
)

func TestStream_DeliversChunkedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/llm/chat/stream/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/plain")
		for _, chunk := range []string{"data: Hel\n\n", "data: lo\n\n", "data: [DONE]\n\n"} {
			io.WriteString(w, chunk)
			flusher.Flush()
		}
	}))
	defer server.Close()

	store := credentials.NewMemoryStore()
	store.Set(model.TokenPair{Access: "acc", Refresh: "ref"})
	client := NewClient(server.URL, store)

	body, err := client.Stream(context.Background(), http.MethodPost, "/llm/chat/stream/", map[string]string{"message": "hi"})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading stream failed: %v", err)
	}
	want := "data: Hel\n\ndata: lo\n\ndata: [DONE]\n\n"
	if string(data) != want {
		t.Errorf("stream body = %q, want %q", data, want)
	}
}

func TestStream_RefreshesOnceOn401(t *testing.T) {
	const goodToken = "access-refreshed"

	mux := http.NewServeMux()
	mux.HandleFunc("/api/llm/chat/stream/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "token expired"}`))
			return
		}
		io.WriteString(w, "data: ok\n\ndata: [DONE]\n\n")
	})
	mux.HandleFunc("/api/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access": goodToken})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store := credentials.NewMemoryStore()
	store.Set(model.TokenPair{Access: "stale", Refresh: "refresh-valid"})
	client := NewClient(server.URL, store)

	body, err := client.Stream(context.Background(), http.MethodPost, "/llm/chat/stream/", nil)
	if err != nil {
		t.Fatalf("expected transparent refresh, got %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "data: ok\n\ndata: [DONE]\n\n" {
		t.Errorf("unexpected body %q", data)
	}

	pair, _ := store.Get()
	if pair.Access != goodToken {
		t.Errorf("access token not refreshed, got %q", pair.Access)
	}
}

func TestStream_ErrorResponseNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to process stream chat request"}`))
	}))
	defer server.Close()

	store := credentials.NewMemoryStore()
	store.Set(model.TokenPair{Access: "acc", Refresh: "ref"})
	client := NewClient(server.URL, store)

	_, err := client.Stream(context.Background(), http.MethodPost, "/llm/chat/stream/", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindServer {
		t.Fatalf("expected KindServer, got %v", err)
	}
	if apiErr.Message != "Failed to process stream chat request" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}
