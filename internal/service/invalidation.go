// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import "github.com/morganforge/parlance/internal/cache"

// =============================================================================
// DECLARATIVE INVALIDATION TABLE
// =============================================================================

// Op identifies a mutating operation for the invalidation table.
type Op string

const (
	OpCreateConversation    Op = "conversation.create"
	OpUpdateConversation    Op = "conversation.update"
	OpArchiveConversation   Op = "conversation.archive"
	OpUnarchiveConversation Op = "conversation.unarchive"
	OpDeleteConversation    Op = "conversation.delete"
	OpChatSend              Op = "chat.send"
	OpUpdateProfile         Op = "profile.update"
	OpUpdatePreferences     Op = "preferences.update"
)

// keySet describes which cache keys a mutation touches. Keeping the mapping
// in one table, rather than scattered across call sites, makes the
// cache-coherence contract testable.
type keySet struct {
	// conversations invalidates the conversation list.
	conversations bool
	// conversation invalidates conversation:<id> (and its messages).
	conversation bool
	// searches invalidates all cached search results.
	searches bool
	// profile / preferences invalidate their singleton keys.
	profile     bool
	preferences bool
}

var invalidationTable = map[Op]keySet{
	OpCreateConversation:    {conversations: true, searches: true},
	OpUpdateConversation:    {conversations: true, conversation: true, searches: true},
	OpArchiveConversation:   {conversations: true, conversation: true, searches: true},
	OpUnarchiveConversation: {conversations: true, conversation: true, searches: true},
	OpDeleteConversation:    {conversations: true, conversation: true, searches: true},
	OpChatSend:              {conversations: true, conversation: true, searches: true},
	OpUpdateProfile:         {profile: true},
	OpUpdatePreferences:     {preferences: true},
}

// InvalidatedKeys returns the exact keys op invalidates for the given
// conversation ID (ignored for ops that touch no per-conversation keys).
func InvalidatedKeys(op Op, conversationID int) []string {
	set, ok := invalidationTable[op]
	if !ok {
		return nil
	}

	var keys []string
	if set.conversations {
		keys = append(keys, cache.KeyConversations)
	}
	if set.conversation {
		keys = append(keys,
			cache.KeyConversation(conversationID),
			cache.KeyConversationMessages(conversationID))
	}
	if set.profile {
		keys = append(keys, cache.KeyProfile)
	}
	if set.preferences {
		keys = append(keys, cache.KeyPreferences)
	}
	return keys
}

// invalidate applies op's key set to the cache. Called only after the
// mutation has completed successfully - never speculatively.
func invalidate(c *cache.Cache, op Op, conversationID int) {
	c.Invalidate(InvalidatedKeys(op, conversationID)...)
	if invalidationTable[op].searches {
		c.InvalidateSearches()
	}
}
