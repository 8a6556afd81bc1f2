package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{c: gocache.New(ttl, 2*ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

func (s *MemoryStore) Set(_ context.Context, key string, val []byte) {
	s.c.Set(key, val, gocache.DefaultExpiration)
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		s.c.Delete(k)
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Name() string { return "memory" }
