// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"sync"

	"github.com/morganforge/parlance/internal/model"
)

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the interface for credential storage. Implementations must be
// safe for concurrent use: every outbound request reads the store, and the
// refresh path writes it.
type Store interface {
	// Set persists a full token pair. Subsequent reads observe the new pair.
	Set(pair model.TokenPair) error
	// Get returns the current pair, or false if never set or cleared.
	Get() (model.TokenPair, bool)
	// SetAccess replaces the access token only, keeping the refresh token.
	// Used by the refresh path. Atomic with respect to concurrent Get calls.
	SetAccess(access string) error
	// Clear removes both tokens. Idempotent.
	Clear() error
	// Close releases any underlying resources.
	Close() error
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore is a volatile Store for tests and sessions that should not
// persist credentials across restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	pair model.TokenPair
	set  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set stores a full token pair.
func (s *MemoryStore) Set(pair model.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.set = true
	return nil
}

// Get returns the current pair, or false if none is stored.
func (s *MemoryStore) Get() (model.TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return model.TokenPair{}, false
	}
	return s.pair, true
}

// SetAccess replaces only the access token.
func (s *MemoryStore) SetAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair.Access = access
	s.set = true
	return nil
}

// Clear removes both tokens.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = model.TokenPair{}
	s.set = false
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
