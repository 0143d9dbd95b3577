package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/spotfetch/spotfetch/internal/shared"
)

// ResolutionStore is the persistence contract of the resolution cache.
// Implementations are safe for concurrent use.
type ResolutionStore interface {
	// Get returns the cached URL for a normalized query, with a hit flag.
	Get(query string) (string, bool, error)

	// Put records a resolved URL. Existing entries win: the first successful
	// resolution for a key is the one kept for the process lifetime.
	Put(query, url string) error
}

// CachingResolver decorates a [Resolver] with the resolution cache. Hits skip
// the search entirely; misses and transient search failures are never cached,
// so the next request for the same pair retries.
type CachingResolver struct {
	inner Resolver
	store ResolutionStore
}

// NewCachingResolver wraps resolver with the given store.
func NewCachingResolver(resolver Resolver, store ResolutionStore) *CachingResolver {
	return &CachingResolver{inner: resolver, store: store}
}

// Resolve maps (name, artist) to a media URL, consulting the cache first.
func (c *CachingResolver) Resolve(ctx context.Context, name, artist string) (string, error) {
	key := shared.NormalizeQuery(name, artist)

	if url, ok, err := c.store.Get(key); err == nil && ok {
		return url, nil
	}

	url, err := c.inner.Search(ctx, fmt.Sprintf("%s %s", name, artist))
	if err != nil {
		return "", err
	}

	// a store failure only costs a repeat search next time
	_ = c.store.Put(key, url)

	return url, nil
}

// Download delegates to the wrapped resolver.
func (c *CachingResolver) Download(ctx context.Context, url, dest string) error {
	return c.inner.Download(ctx, url, dest)
}

// MemoryStore is a bounded in-memory [ResolutionStore] used when no cache
// database is configured. Eviction is oldest-inserted-first.
type MemoryStore struct {
	mu      sync.Mutex
	max     int
	entries map[string]string
	order   []string
}

// NewMemoryStore creates a store bounded to max entries (minimum 1).
func NewMemoryStore(max int) *MemoryStore {
	if max < 1 {
		max = 1
	}
	return &MemoryStore{
		max:     max,
		entries: make(map[string]string),
	}
}

func (m *MemoryStore) Get(query string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	url, ok := m.entries[query]
	return url, ok, nil
}

func (m *MemoryStore) Put(query, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[query]; exists {
		return nil
	}

	for len(m.entries) >= m.max {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}

	m.entries[query] = url
	m.order = append(m.order, query)
	return nil
}

// Len reports the number of cached resolutions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
