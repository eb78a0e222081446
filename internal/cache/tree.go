// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go provides a Valkey-backed cache for the serialized category
// tree projections. Hierarchy and menu reads are by far the hottest
// paths (every storefront page renders the navigation), so the encoded
// JSON is kept in Valkey and dropped on every structural change.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// treeKeyPrefix is the Valkey key prefix for cached projections.
	treeKeyPrefix = "category-tree:"

	// HierarchyKey / MenuKey name the two cached projections.
	HierarchyKey = "hierarchy"
	MenuKey      = "menu"

	// DefaultTreeTTL is how long a projection stays cached. Writes
	// invalidate eagerly, the TTL only bounds staleness after a missed
	// invalidation.
	DefaultTreeTTL = 10 * time.Minute
)

// TreeCache manages cached category tree projections in Valkey.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// Get retrieves a cached projection by key. Returns false on miss.
func (tc *TreeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := tc.client.Get(ctx, treeKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("tree cache hit", "key", key)
	return val, true
}

// Set stores an encoded projection with the configured TTL.
func (tc *TreeCache) Set(ctx context.Context, key string, data []byte) {
	if err := tc.client.Set(ctx, treeKeyPrefix+key, data, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "key", key, "error", err)
	}
}

// Invalidate drops every cached projection. Called after each
// successful structural mutation.
func (tc *TreeCache) Invalidate(ctx context.Context) {
	keys := []string{treeKeyPrefix + HierarchyKey, treeKeyPrefix + MenuKey}
	if err := tc.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("tree cache invalidate error", "error", err)
		return
	}
	slog.Debug("tree cache invalidated")
}
