// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import "strconv"

// Cache keys live here so they cannot drift between the read paths that
// populate them and the mutation tables that invalidate them.

// Singleton keys.
const (
	KeyConversations = "conversations"
	KeyModels        = "models"
	KeyProfile       = "profile"
	KeyPreferences   = "preferences"
)

// searchPrefix namespaces per-query search results.
const searchPrefix = "search:"

// KeyConversation returns the key for a single conversation's detail view.
func KeyConversation(id int) string {
	return "conversation:" + strconv.Itoa(id)
}

// KeyConversationMessages returns the key for a conversation's message list.
func KeyConversationMessages(id int) string {
	return KeyConversation(id) + ":messages"
}

// KeySearch returns the key for a conversation search query.
func KeySearch(query string) string {
	return searchPrefix + query
}

// InvalidateSearches marks all cached search results stale. Any conversation
// mutation can change what a query matches.
func (c *Cache) InvalidateSearches() {
	c.InvalidatePrefix(searchPrefix)
}
