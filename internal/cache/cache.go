// Package cache stores serialized machine listings between writes.
//
// Two backends share the Store interface: RedisStore for deployments running
// more than one API process, and MemoryStore (go-cache) for single-process and
// test setups. Cache failures never fail a request; callers fall through to
// the database.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented cache with TTL entries.
type Store interface {
	// Get returns the cached bytes and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
	Delete(ctx context.Context, keys ...string)
	// Ping reports backend health for /health.
	Ping(ctx context.Context) error
	Name() string
}

// DefaultTTL applies when a store is created with a non-positive TTL.
const DefaultTTL = 30 * time.Second

// ListingKey names the cached listing for department; "" is the full list.
func ListingKey(department string) string {
	if department == "" {
		return "machines:all"
	}
	return "machines:dept:" + department
}
