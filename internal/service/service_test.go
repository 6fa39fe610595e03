// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/credentials"
	"github.com/morganforge/parlance/internal/model"
)

// platformStub is a minimal fake of the platform API with per-endpoint hit
// counters, for asserting which operations actually reach the network.
type platformStub struct {
	listCalls    atomic.Int32
	detailCalls  atomic.Int32
	searchCalls  atomic.Int32
	archiveCalls atomic.Int32

	server *httptest.Server
}

func newPlatformStub(t *testing.T) *platformStub {
	p := &platformStub{}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.AuthResponse{
			Access:  "access-1",
			Refresh: "refresh-1",
			User:    model.User{ID: 1, Email: "ada@example.com"},
		})
	})
	mux.HandleFunc("/api/llm/conversations/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			io.WriteString(w, `{"id": 11, "title": "New chat", "model": 1, "message_count": 0}`)
			return
		}
		p.listCalls.Add(1)
		io.WriteString(w, `[{"id": 5, "title": "Existing", "model": 1, "message_count": 3}]`)
	})
	mux.HandleFunc("/api/llm/conversations/5/", func(w http.ResponseWriter, r *http.Request) {
		p.detailCalls.Add(1)
		io.WriteString(w, `{"id": 5, "title": "Existing", "model": 1, "messages": [], "message_count": 3}`)
	})
	mux.HandleFunc("/api/llm/conversations/5/archive/", func(w http.ResponseWriter, r *http.Request) {
		p.archiveCalls.Add(1)
		io.WriteString(w, `{"message": "Conversation archived"}`)
	})
	mux.HandleFunc("/api/llm/conversations/search/", func(w http.ResponseWriter, r *http.Request) {
		p.searchCalls.Add(1)
		io.WriteString(w, `{"conversations": [{"id": 5, "title": "Existing"}]}`)
	})
	mux.HandleFunc("/api/llm/chat/", func(w http.ResponseWriter, r *http.Request) {
		var req model.ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(model.ChatResponse{
			Response:       "echo: " + req.Message,
			ConversationID: 5,
			MessageID:      77,
			TokensUsed:     12,
			ModelUsed:      "llama3",
		})
	})
	mux.HandleFunc("/api/llm/chat/stream/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data: {\"chunk\": \"streamed\", \"conversation_id\": 5, \"model_used\": \"llama3\"}\n\n")
		io.WriteString(w, "data: [DONE]\n\n")
	})
	mux.HandleFunc("/api/llm/models/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[{"id": 1, "name": "llama3", "model_type": "ollama", "is_active": true}]`)
	})
	mux.HandleFunc("/api/llm/test-model/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"model": "llama3", "response": "fine, thanks", "test_prompt": "how are you?"}`)
	})
	mux.HandleFunc("/api/llm/preferences/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"default_model": 1, "default_temperature": 0.7, "default_max_tokens": 2048}`)
	})
	mux.HandleFunc("/api/llm/preferences/update/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"default_model": 2, "default_temperature": 0.5, "default_max_tokens": 1024}`)
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func newServices(t *testing.T, stub *platformStub) (*Services, *cache.Cache) {
	store := credentials.NewMemoryStore()
	store.Set(model.TokenPair{Access: "access-1", Refresh: "refresh-1"})
	c := cache.New(0)
	client := api.NewClient(stub.server.URL, store)
	return New(client, c), c
}

// =============================================================================
// INVALIDATION TABLE
// =============================================================================

func TestInvalidatedKeys(t *testing.T) {
	tests := []struct {
		op   Op
		id   int
		want []string
	}{
		{OpCreateConversation, 0, []string{"conversations"}},
		{OpArchiveConversation, 5, []string{"conversations", "conversation:5", "conversation:5:messages"}},
		{OpDeleteConversation, 9, []string{"conversations", "conversation:9", "conversation:9:messages"}},
		{OpChatSend, 5, []string{"conversations", "conversation:5", "conversation:5:messages"}},
		{OpUpdateProfile, 0, []string{"profile"}},
		{OpUpdatePreferences, 0, []string{"preferences"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			assert.Equal(t, tt.want, InvalidatedKeys(tt.op, tt.id))
		})
	}
}

func TestInvalidatedKeys_UnknownOp(t *testing.T) {
	assert.Nil(t, InvalidatedKeys(Op("nope"), 1))
}

// =============================================================================
// CACHE COHERENCE SCENARIOS
// =============================================================================

// TestListArchiveRefetchScenario walks the full read/mutate/re-read cycle:
// the list populates the cache, archiving invalidates it, and the next list
// and detail reads hit the network again.
func TestListArchiveRefetchScenario(t *testing.T) {
	stub := newPlatformStub(t)
	svc, _ := newServices(t, stub)
	ctx := context.Background()

	// Populate.
	list, err := svc.Conversations.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.Conversations.Get(ctx, 5)
	require.NoError(t, err)

	// Cached: no extra network hits.
	svc.Conversations.List(ctx)
	svc.Conversations.Get(ctx, 5)
	assert.EqualValues(t, 1, stub.listCalls.Load())
	assert.EqualValues(t, 1, stub.detailCalls.Load())

	// Mutate.
	require.NoError(t, svc.Conversations.Archive(ctx, 5))
	assert.EqualValues(t, 1, stub.archiveCalls.Load())

	// Both keys were invalidated; the next reads refetch.
	svc.Conversations.List(ctx)
	svc.Conversations.Get(ctx, 5)
	assert.EqualValues(t, 2, stub.listCalls.Load())
	assert.EqualValues(t, 2, stub.detailCalls.Load())
}

func TestChatSendInvalidatesConversation(t *testing.T) {
	stub := newPlatformStub(t)
	svc, c := newServices(t, stub)
	ctx := context.Background()

	svc.Conversations.List(ctx)
	svc.Conversations.Get(ctx, 5)

	resp, err := svc.Chat.Send(ctx, model.ChatRequest{Message: "hi", ConversationID: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", resp.Response)
	assert.Equal(t, 5, resp.ConversationID)

	_, ok := c.Read(cache.KeyConversations)
	assert.False(t, ok, "conversation list must be stale after a chat send")
	_, ok = c.Read(cache.KeyConversation(5))
	assert.False(t, ok, "conversation detail must be stale after a chat send")
}

func TestChatStreamInvalidatesAfterCompletion(t *testing.T) {
	stub := newPlatformStub(t)
	svc, c := newServices(t, stub)
	ctx := context.Background()

	svc.Conversations.Get(ctx, 5)

	var streamed string
	result, err := svc.Chat.Stream(ctx, model.ChatRequest{Message: "hi"}, func(chunk StreamChunk) {
		streamed += chunk.Content
	})
	require.NoError(t, err)
	assert.Equal(t, "streamed", result.Content)
	assert.Equal(t, "streamed", streamed)
	assert.Equal(t, 5, result.ConversationID)

	_, ok := c.Read(cache.KeyConversation(5))
	assert.False(t, ok, "conversation detail must be stale after a streamed chat")
}

func TestSearchCachedPerQuery(t *testing.T) {
	stub := newPlatformStub(t)
	svc, _ := newServices(t, stub)
	ctx := context.Background()

	results, err := svc.Conversations.Search(ctx, "existing")
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Same query: cached.
	svc.Conversations.Search(ctx, "existing")
	assert.EqualValues(t, 1, stub.searchCalls.Load())

	// Different query: separate key, new call.
	svc.Conversations.Search(ctx, "другой")
	assert.EqualValues(t, 2, stub.searchCalls.Load())
}

func TestSearchEmptyQuerySkipsNetwork(t *testing.T) {
	stub := newPlatformStub(t)
	svc, _ := newServices(t, stub)

	results, err := svc.Conversations.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.EqualValues(t, 0, stub.searchCalls.Load())
}

func TestArchiveInvalidatesSearchResults(t *testing.T) {
	stub := newPlatformStub(t)
	svc, _ := newServices(t, stub)
	ctx := context.Background()

	svc.Conversations.Search(ctx, "existing")
	require.NoError(t, svc.Conversations.Archive(ctx, 5))

	// Archived conversations drop out of search; cached results are stale.
	svc.Conversations.Search(ctx, "existing")
	assert.EqualValues(t, 2, stub.searchCalls.Load())
}

// =============================================================================
// REMAINING SERVICES
// =============================================================================

func TestModelsListAndTest(t *testing.T) {
	stub := newPlatformStub(t)
	svc, _ := newServices(t, stub)
	ctx := context.Background()

	models, err := svc.Models.List(ctx)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3", models[0].Name)

	result, err := svc.Models.Test(ctx, model.ModelTestRequest{
		ModelID:     1,
		TestPrompt:  "how are you?",
		Temperature: 0.7,
		MaxTokens:   100,
	})
	require.NoError(t, err)
	assert.Equal(t, "fine, thanks", result.Response)
}

func TestPreferencesUpdateInvalidates(t *testing.T) {
	stub := newPlatformStub(t)
	svc, c := newServices(t, stub)
	ctx := context.Background()

	prefs, err := svc.Preferences.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2048, prefs.DefaultMaxTokens)

	newTokens := 1024
	updated, err := svc.Preferences.Update(ctx, model.PreferencesUpdate{DefaultMaxTokens: &newTokens})
	require.NoError(t, err)
	assert.Equal(t, 1024, updated.DefaultMaxTokens)

	_, ok := c.Read(cache.KeyPreferences)
	assert.False(t, ok, "preferences must be stale after an update")
}

func TestLoginReturnsTokensAndUser(t *testing.T) {
	stub := newPlatformStub(t)
	svc, _ := newServices(t, stub)

	resp, err := svc.Auth.Login(context.Background(), model.LoginRequest{
		Email:    "ada@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "access-1", resp.Access)
	assert.Equal(t, "refresh-1", resp.Refresh)
	assert.Equal(t, 1, resp.User.ID)
}

func intPtr(v int) *int { return &v }
