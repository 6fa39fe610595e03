// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/morganforge/parlance/internal/model"
)

// =============================================================================
// BOLT STORE
// =============================================================================

var (
	bktCredentials = []byte("credentials")

	keyAccessToken  = []byte("access_token")
	keyRefreshToken = []byte("refresh_token")
)

// BoltStore persists the token pair in a bbolt database with restricted
// permissions. An in-memory copy, loaded at open, serves reads so that the
// hot request path never touches disk.
type BoltStore struct {
	db *bolt.DB

	mu   sync.RWMutex
	pair model.TokenPair
	set  bool
}

// OpenBoltStore opens (or creates) the credential database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	s := &BoltStore{db: db}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// load reads any persisted pair into the in-memory copy.
func (s *BoltStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bktCredentials)
		if bkt == nil {
			return nil
		}
		access := bkt.Get(keyAccessToken)
		refresh := bkt.Get(keyRefreshToken)
		if access == nil && refresh == nil {
			return nil
		}
		s.pair = model.TokenPair{
			Access:  string(access),
			Refresh: string(refresh),
		}
		s.set = true
		return nil
	})
}

// Set persists a full token pair in a single transaction.
func (s *BoltStore) Set(pair model.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(bktCredentials)
		if err != nil {
			return err
		}
		if err := bkt.Put(keyAccessToken, []byte(pair.Access)); err != nil {
			return err
		}
		return bkt.Put(keyRefreshToken, []byte(pair.Refresh))
	})
	if err != nil {
		return fmt.Errorf("failed to persist credentials: %w", err)
	}

	s.pair = pair
	s.set = true
	return nil
}

// Get returns the current pair from the in-memory copy.
func (s *BoltStore) Get() (model.TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set {
		return model.TokenPair{}, false
	}
	return s.pair, true
}

// SetAccess replaces only the access token; the refresh token is untouched.
// Readers holding the lock around Get never see the intermediate state.
func (s *BoltStore) SetAccess(access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists(bktCredentials)
		if err != nil {
			return err
		}
		return bkt.Put(keyAccessToken, []byte(access))
	})
	if err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}

	s.pair.Access = access
	s.set = true
	return nil
}

// Clear removes both tokens. Safe to call when nothing is stored.
func (s *BoltStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bktCredentials)
		if bkt == nil {
			return nil
		}
		if err := bkt.Delete(keyAccessToken); err != nil {
			return err
		}
		return bkt.Delete(keyRefreshToken)
	})
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	s.pair = model.TokenPair{}
	s.set = false
	return nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
