package exec

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/sqlforge/codec"
	"github.com/syssam/sqlforge/dialect"
	"github.com/syssam/sqlforge/render"
	"github.com/syssam/sqlforge/sqltype"
)

// Cache is the interface for caching query results. Implement it with any
// byte store (Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// MemoryCache is a process-local Cache for tests and single-node use.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return e.value, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear implements Cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
	return nil
}

// CacheKey identifies one rendered query plus its bind values. Two renders
// of the same statement produce the same key because rendering is
// deterministic.
func CacheKey(dialectName string, r *render.Rendered, args []any) string {
	var b strings.Builder
	b.WriteString(dialectName)
	b.WriteByte(':')
	b.WriteString(r.SQL)
	for _, a := range args {
		fmt.Fprintf(&b, ":%v", a)
	}
	return b.String()
}

// CachedQuerier serves Fetch results from a Cache, falling through to the
// driver on miss. Concurrent misses for the same key are deduplicated so the
// database sees each key at most once per flight. Cached entries hold the raw
// wire rows encoded with msgpack; decoding through the codec happens on every
// read so the cache stays backend-agnostic.
type CachedQuerier struct {
	drv   dialect.ExecQuerier
	codec codec.Codec
	cache Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewCachedQuerier wraps a driver with a result cache. A zero ttl means
// entries never expire.
func NewCachedQuerier(drv dialect.ExecQuerier, c codec.Codec, cache Cache, ttl time.Duration) *CachedQuerier {
	return &CachedQuerier{drv: drv, codec: c, cache: cache, ttl: ttl}
}

// Fetch runs a rendered query through the cache.
func (q *CachedQuerier) Fetch(ctx context.Context, dialectName string, r *render.Rendered) ([][]sqltype.Value, error) {
	args, err := Args(q.codec, r.Slots)
	if err != nil {
		return nil, err
	}
	key := CacheKey(dialectName, r, args)

	if buf, err := q.cache.Get(ctx, key); err == nil && buf != nil {
		var raw [][]any
		if err := msgpack.Unmarshal(buf, &raw); err == nil {
			return decodeRows(q.codec, raw, r.Output)
		}
		// An undecodable entry is stale; drop it and refetch.
		_ = q.cache.Delete(ctx, key)
	}

	v, err, _ := q.group.Do(key, func() (any, error) {
		raw, err := fetchRaw(ctx, q.drv, q.codec, r)
		if err != nil {
			return nil, err
		}
		if buf, err := msgpack.Marshal(raw); err == nil {
			_ = q.cache.Set(ctx, key, buf, q.ttl)
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return decodeRows(q.codec, v.([][]any), r.Output)
}

// Invalidate removes the cache entry for one rendered query.
func (q *CachedQuerier) Invalidate(ctx context.Context, dialectName string, r *render.Rendered) error {
	args, err := Args(q.codec, r.Slots)
	if err != nil {
		return err
	}
	return q.cache.Delete(ctx, CacheKey(dialectName, r, args))
}
