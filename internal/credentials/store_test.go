// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/parlance/internal/model"
)

// storeFactories lets every contract test run against both implementations.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
		"bolt": func(t *testing.T) Store {
			s, err := OpenBoltStore(filepath.Join(t.TempDir(), "credentials.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStoreSetGetClear(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)

			_, ok := s.Get()
			assert.False(t, ok, "empty store should report no pair")

			pair := model.TokenPair{Access: "acc-1", Refresh: "ref-1"}
			require.NoError(t, s.Set(pair))

			got, ok := s.Get()
			require.True(t, ok)
			assert.Equal(t, pair, got)

			require.NoError(t, s.Clear())
			_, ok = s.Get()
			assert.False(t, ok, "cleared store should report no pair")

			// Clear is idempotent.
			require.NoError(t, s.Clear())
		})
	}
}

func TestStoreSetAccessKeepsRefresh(t *testing.T) {
	for name, factory := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			require.NoError(t, s.Set(model.TokenPair{Access: "old", Refresh: "ref-1"}))

			require.NoError(t, s.SetAccess("new"))

			got, ok := s.Get()
			require.True(t, ok)
			assert.Equal(t, "new", got.Access)
			assert.Equal(t, "ref-1", got.Refresh, "refresh token must survive an access refresh")
		})
	}
}

// TestStoreConcurrentReadersNeverSeeTornPair hammers Get while SetAccess
// rotates the access token. A reader must always see the refresh token
// paired with some complete access value, never an empty intermediate.
func TestStoreConcurrentReadersNeverSeeTornPair(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Set(model.TokenPair{Access: "a0", Refresh: "ref"}))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				pair, ok := s.Get()
				if !ok {
					t.Error("pair disappeared during refresh")
					return
				}
				if pair.Refresh != "ref" || pair.Access == "" {
					t.Errorf("torn pair observed: %+v", pair)
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		require.NoError(t, s.SetAccess("a"+string(rune('0'+i%10))))
	}
	close(stop)
	wg.Wait()
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(model.TokenPair{Access: "acc", Refresh: "ref"}))
	require.NoError(t, s.Close())

	s2, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, ok := s2.Get()
	require.True(t, ok, "pair should survive a reopen")
	assert.Equal(t, model.TokenPair{Access: "acc", Refresh: "ref"}, got)
}
