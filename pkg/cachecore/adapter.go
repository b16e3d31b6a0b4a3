package cachecore

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dogpilecache/core/internal/observability"
	"github.com/dogpilecache/core/pkg/backend"
	"github.com/dogpilecache/core/pkg/cacheerr"
)

// UpstreamFunc is the collaborator the state machine calls on a cache
// miss (or to refresh a stale entry in the background). It carries no
// knowledge of caching; RuntimeAdapter is what ties it to a Backend.
type UpstreamFunc[T any] func(ctx context.Context) (T, error)

// RuntimeAdapter isolates the cache decision state machine from any
// concrete upstream transport or cache backend. Walk only ever talks
// to this interface, never to backend.Backend or an UpstreamFunc
// directly.
type RuntimeAdapter[T any] interface {
	// PollUpstream calls the wrapped upstream exactly once per caller,
	// coalescing concurrent callers that share the same cache key.
	PollUpstream(ctx context.Context) (T, error)

	// PollCache reads and classifies the current cache entry, if any.
	PollCache(ctx context.Context) (CacheState[T], error)

	// UpdateCache writes value to the cache. Errors are always
	// recoverable from the caller's point of view: the upstream result
	// is still returned even if this fails.
	UpdateCache(ctx context.Context, value CachedValue[T]) error

	// TryLock attempts to acquire the dogpile lock for this adapter's
	// key. Only called when Settings().Lock is enabled.
	TryLock(ctx context.Context) (backend.LockStatus, error)

	// Settings returns the dispatch policy this adapter was built with.
	Settings() CacheSettings

	// EvictionPolicy returns the TTL window this adapter classifies
	// against.
	EvictionPolicy() EvictionPolicy
}

// Adapter is the default RuntimeAdapter: a single cache key, backed by
// one backend.Backend, with in-process dogpile coalescing via
// singleflight on top of the backend's cross-process advisory lock.
type Adapter[T any] struct {
	key      string
	version  uint32
	upstream UpstreamFunc[T]
	backend  backend.Backend
	settings CacheSettings
	ttl      TTLSettings
	group    *singleflight.Group
	logger   *observability.Logger
}

// NewAdapter builds an Adapter for req, resolving its cache key once
// up front. The returned error is always cacheerr.KeyGeneration.
func NewAdapter[T any](req Cacheable, upstream UpstreamFunc[T], be backend.Backend, settings CacheSettings, logger *observability.Logger) (*Adapter[T], error) {
	key, err := BuildCacheKey(req)
	if err != nil {
		return nil, cacheerr.NewKeyGeneration(err)
	}
	if settings.KeyPrefix != "" {
		key = settings.KeyPrefix + "::" + key
	}
	if logger == nil {
		logger = observability.NewNopLogger()
	}

	return &Adapter[T]{
		key:      key,
		version:  req.CacheVersion(),
		upstream: upstream,
		backend:  be,
		settings: settings,
		ttl:      NewTTLSettings(req),
		group:    new(singleflight.Group),
		logger:   logger,
	}, nil
}

// PollUpstream calls the wrapped upstream, coalescing concurrent
// callers sharing this adapter's key through a singleflight.Group so
// a dogpile of simultaneous misses only reaches upstream once.
func (a *Adapter[T]) PollUpstream(ctx context.Context) (T, error) {
	v, err, _ := a.group.Do(a.key, func() (any, error) {
		return a.upstream(ctx)
	})
	if err != nil {
		var zero T
		return zero, cacheerr.NewUpstream(err)
	}
	return v.(T), nil
}

// PollCache reads the backend and classifies what it finds. A missing
// key, a backend error, a malformed envelope, and a version mismatch
// all classify Miss; only backend errors and decode errors are also
// returned so the caller can log them.
func (a *Adapter[T]) PollCache(ctx context.Context) (CacheState[T], error) {
	raw, err := a.backend.Get(ctx, a.key)
	if err != nil {
		return CacheState[T]{Tier: Miss}, cacheerr.NewBackend("get", err)
	}
	if raw == nil {
		return CacheState[T]{Tier: Miss}, nil
	}

	val, err := DecodeCachedValue[T](raw, a.version)
	if err != nil {
		if IsVersionMismatch(err) {
			return CacheState[T]{Tier: Miss}, nil
		}
		return CacheState[T]{Tier: Miss}, err
	}

	return Classify(&val, a.ttl, time.Now()), nil
}

// UpdateCache encodes and stores value. A response that implements
// CacheableResponse and reports its outcome non-cacheable is silently
// skipped rather than written.
func (a *Adapter[T]) UpdateCache(ctx context.Context, value CachedValue[T]) error {
	if !isCacheableOutcome(value.Data) {
		return nil
	}

	encoded, err := EncodeCachedValue(value, a.version)
	if err != nil {
		return err
	}
	if err := a.backend.Set(ctx, a.key, encoded, a.ttl.TTL); err != nil {
		return cacheerr.NewBackend("set", err)
	}
	return nil
}

// TryLock attempts the backend's advisory lock for this adapter's key,
// bounded by Settings().LockTTL.
func (a *Adapter[T]) TryLock(ctx context.Context) (backend.LockStatus, error) {
	status, err := a.backend.Lock(ctx, a.key, a.settings.LockTTL)
	if err != nil {
		return status, cacheerr.NewBackend("lock", err)
	}
	return status, nil
}

// Settings returns the CacheSettings this adapter was built with.
func (a *Adapter[T]) Settings() CacheSettings {
	return a.settings
}

// EvictionPolicy returns the TTL window this adapter classifies
// against.
func (a *Adapter[T]) EvictionPolicy() EvictionPolicy {
	return EvictionPolicy{TTL: a.ttl}
}
