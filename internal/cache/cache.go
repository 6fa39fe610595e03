// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache implements the client-side query cache.
//
// Server state is cached under logical string keys (see keys.go). Read
// operations populate the cache through Fetch; mutations mark the keys they
// touched stale through Invalidate, and the next Fetch reloads them.
// Concurrent fetches for the same key share one in-flight load.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is a cached value with its fetch timestamp.
type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// Loader produces the value for a key on a cache miss.
type Loader func(ctx context.Context) (any, error)

// Cache is a coherent key/value cache of server state.
//
// Safe for concurrent use. Invalidation never triggers network activity by
// itself; it only forces the next Fetch to reload.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// group deduplicates concurrent loads per key: two Fetch calls racing
	// on a cold key invoke the loader exactly once.
	group singleflight.Group

	// ttl bounds entry freshness; zero means entries only go stale through
	// explicit invalidation.
	ttl time.Duration
}

// New creates a cache whose entries expire after ttl (0 = no expiry).
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
}

// Read returns the last known fresh value for a key without triggering any
// network activity. Stale or expired entries report a miss.
func (c *Cache) Read(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || !c.fresh(e) {
		return nil, false
	}
	return e.value, true
}

// Fetch returns the cached value for key, or invokes loader, stores the
// result, and returns it. Concurrent calls for the same key while a load is
// outstanding share that single load.
func (c *Cache) Fetch(ctx context.Context, key string, loader Loader) (any, error) {
	if v, ok := c.Read(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another waiter may have completed the load while we queued.
		if v, ok := c.Read(key); ok {
			return v, nil
		}

		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &entry{value: v, fetchedAt: time.Now()}
		c.mu.Unlock()
		return v, nil
	})
	return v, err
}

// Invalidate marks one or more keys stale. The next Read misses and the
// next Fetch reloads. Unknown keys are ignored.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if e, ok := c.entries[key]; ok {
			e.stale = true
		}
	}
}

// InvalidatePrefix marks every key with the given prefix stale. Used for
// families like "search:".
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			e.stale = true
		}
	}
}

// Clear drops all entries. Called on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of entries currently held, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the keys currently held, fresh or stale, in no particular
// order.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// FetchedAt returns when the key's value was loaded, or false if the key is
// not cached.
func (c *Cache) FetchedAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// fresh reports whether an entry may serve reads. Caller holds c.mu.
func (c *Cache) fresh(e *entry) bool {
	if e.stale {
		return false
	}
	if c.ttl > 0 && time.Since(e.fetchedAt) > c.ttl {
		return false
	}
	return true
}

// Fetch is the typed convenience wrapper around Cache.Fetch.
func Fetch[T any](ctx context.Context, c *Cache, key string, loader func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return loader(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
