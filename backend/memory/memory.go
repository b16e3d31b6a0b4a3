// Package memory implements pkg/backend.Backend over a process-local
// map, using a min-heap for TTL-ordered expiration, adapted from the
// repository's in-memory cache implementation.
package memory

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dogpilecache/core/pkg/backend"
)

// Backend is an in-memory backend.Backend with heap-based TTL
// eviction and a best-effort advisory lock. Suitable for tests, single
// -process deployments, or as the L1 collaborator behind some other
// cross-process backend the caller composes on its own.
type Backend struct {
	mu sync.Mutex

	data map[string]*entry
	heap expirationHeap

	locks map[string]time.Time // key -> lock expiry

	maxSize     int
	maxItemSize int

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

type entry struct {
	value      []byte
	expiration int64 // unix nano; 0 means no expiry
}

type expirationEntry struct {
	key        string
	expiration int64
	index      int
}

type expirationHeap []*expirationEntry

func (h expirationHeap) Len() int { return len(h) }
func (h expirationHeap) Less(i, j int) bool {
	// 0 means no expiry, so it orders after every real expiration.
	if h[i].expiration == 0 || h[j].expiration == 0 {
		return h[j].expiration == 0 && h[i].expiration != 0
	}
	return h[i].expiration < h[j].expiration
}
func (h expirationHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *expirationHeap) Push(x any) {
	e := x.(*expirationEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *expirationHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Config controls capacity limits. Zero values fall back to defaults.
type Config struct {
	MaxSize     int // default 10000
	MaxItemSize int // default 1MiB
}

func (c Config) withDefaults() Config {
	if c.MaxSize <= 0 {
		c.MaxSize = 10000
	}
	if c.MaxItemSize <= 0 {
		c.MaxItemSize = 1024 * 1024
	}
	return c
}

// New builds an empty Backend.
func New(cfg Config) *Backend {
	cfg = cfg.withDefaults()
	b := &Backend{
		data:        make(map[string]*entry),
		heap:        make(expirationHeap, 0),
		locks:       make(map[string]time.Time),
		maxSize:     cfg.MaxSize,
		maxItemSize: cfg.MaxItemSize,
	}
	heap.Init(&b.heap)
	return b
}

var _ backend.Backend = (*Backend)(nil)

// Get returns (nil, nil) for an absent or lazily-expired key.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.data[key]
	if !ok {
		b.misses.Add(1)
		return nil, nil
	}
	if e.expiration > 0 && e.expiration <= time.Now().UnixNano() {
		delete(b.data, key)
		b.misses.Add(1)
		return nil, nil
	}

	b.hits.Add(1)
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// Set stores value under key, evicting the oldest-expiring entries
// first if at capacity. Oversized values are silently dropped rather
// than erroring, matching the policy this was adapted from.
func (b *Backend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if len(value) > b.maxItemSize {
		return nil
	}

	var expiration int64
	if ttl > 0 {
		expiration = time.Now().Add(ttl).UnixNano()
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.evictIfNeeded()

	b.data[key] = &entry{value: valueCopy, expiration: expiration}
	heap.Push(&b.heap, &expirationEntry{key: key, expiration: expiration})
	b.sets.Add(1)
	return nil
}

// Delete removes key, reporting whether it was present.
func (b *Backend) Delete(ctx context.Context, key string) (backend.DeleteResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.data[key]; !ok {
		return backend.Missing, nil
	}
	delete(b.data, key)
	return backend.Deleted, nil
}

// Lock grants key to the first caller to ask within ttl; a holder
// that lets ttl elapse implicitly releases it. Not safe against
// clock skew across processes, which is fine since this backend never
// leaves one process.
func (b *Backend) Lock(ctx context.Context, key string, ttl time.Duration) (backend.LockStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if expiry, held := b.locks[key]; held && expiry.After(now) {
		return backend.AlreadyHeld, nil
	}
	b.locks[key] = now.Add(ttl)
	return backend.Acquired, nil
}

// evictIfNeeded drops expired entries, then the soonest-to-expire
// entries, until the map is back under maxSize. Caller holds b.mu.
func (b *Backend) evictIfNeeded() {
	for b.heap.Len() > 0 && len(b.data) >= b.maxSize {
		top := b.heap[0]

		e, ok := b.data[top.key]
		if !ok || e.expiration != top.expiration {
			// Stale heap entry superseded by a later Set; drop it and
			// keep looking.
			heap.Pop(&b.heap)
			continue
		}

		heap.Pop(&b.heap)
		delete(b.data, top.key)
	}
}

// Stats reports cumulative hit/miss/set counters.
type Stats struct {
	Hits   int64
	Misses int64
	Sets   int64
}

// Stats returns a snapshot of this backend's counters.
func (b *Backend) Stats() Stats {
	return Stats{
		Hits:   b.hits.Load(),
		Misses: b.misses.Load(),
		Sets:   b.sets.Load(),
	}
}

// Len reports the number of entries currently stored, including ones
// that have expired but not yet been lazily reaped.
func (b *Backend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}
