package intercept

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/syssam/mappa/value"
)

// Cache stores encoded result sets. Implement it with a preferred
// backing store; MemoryCache is the built-in in-process implementation.
type Cache interface {
	// Get retrieves a value. Returns nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes one key.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Clear removes everything.
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	data []byte
	exp  time.Time
}

// MemoryCache is a concurrency-safe in-process cache with lazy TTL
// expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, nil
	}
	return e.data, nil
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: data}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete implements Cache.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// DeletePrefix implements Cache.
func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	m.mu.Unlock()
	return nil
}

// Clear implements Cache.
func (m *MemoryCache) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)

// CacheInterceptor serves SELECT result sets from a cache and
// invalidates the table's entries on mutation. Result sets travel
// through the cache in their msgpack encoding.
type CacheInterceptor struct {
	Base
	cache Cache
	ttl   time.Duration
}

// NewCache returns a caching interceptor over the given store.
func NewCache(cache Cache, ttl time.Duration) *CacheInterceptor {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &CacheInterceptor{cache: cache, ttl: ttl}
}

// Name implements Interceptor.
func (c *CacheInterceptor) Name() string { return "cache" }

// Type implements Interceptor.
func (c *CacheInterceptor) Type() Type { return TypeCache }

// Order implements Interceptor.
func (c *CacheInterceptor) Order() int { return 50 }

// Key derives the cache key from the statement and its parameters.
func (c *CacheInterceptor) Key(ec *ExecContext) string {
	var sb strings.Builder
	sb.WriteString(ec.Table.Qualified())
	sb.WriteString(":select:")
	sb.WriteString(ec.SQL)
	for _, a := range ec.Args {
		sb.WriteByte('|')
		sb.WriteString(a.String())
	}
	return sb.String()
}

// tablePrefix scopes invalidation to one table.
func (c *CacheInterceptor) tablePrefix(ec *ExecContext) string {
	return ec.Table.Qualified() + ":"
}

// Before serves a cached result set when one exists.
func (c *CacheInterceptor) Before(ctx context.Context, ec *ExecContext) error {
	if ec.Op != OpSelect {
		return nil
	}
	data, err := c.cache.Get(ctx, c.Key(ec))
	if err != nil || data == nil {
		// A failing cache store never fails the query.
		return nil
	}
	rows, err := value.DecodeRows(data)
	if err != nil {
		_ = c.cache.Delete(ctx, c.Key(ec))
		return nil
	}
	ec.Result = rows
	ec.FromCache = true
	return nil
}

// After stores fresh SELECT results and invalidates on mutation.
func (c *CacheInterceptor) After(ctx context.Context, ec *ExecContext) error {
	if ec.Op.Mutates() {
		_ = c.cache.DeletePrefix(ctx, c.tablePrefix(ec))
		return nil
	}
	if ec.Op != OpSelect || ec.FromCache || ec.Result == nil {
		return nil
	}
	data, err := value.EncodeRows(ec.Result)
	if err != nil {
		return nil
	}
	_ = c.cache.Set(ctx, c.Key(ec), data, c.ttl)
	return nil
}

var _ Interceptor = (*CacheInterceptor)(nil)
