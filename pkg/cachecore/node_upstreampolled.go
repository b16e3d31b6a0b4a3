package cachecore

import (
	"context"
	"time"
)

// upstreamPolledNode holds the result of the one upstream call a walk
// is allowed to make. An error here is fatal to the walk: the cache is
// never written and the error propagates to the caller. A nil-error
// result is cached unless the response opts out via
// CacheableResponse, or caching is disabled entirely.
type upstreamPolledNode[T any] struct {
	value T
	err   error
}

func (n upstreamPolledNode[T]) step(ctx context.Context, w *walker[T]) node[T] {
	if n.err != nil {
		return finishNode[T]{err: n.err}
	}
	if !bool(w.settings.Cache) || !isCacheableOutcome(n.value) {
		return finishNode[T]{value: n.value}
	}
	return cacheUpdatedNode[T]{value: n.value, createdAt: time.Now()}
}
