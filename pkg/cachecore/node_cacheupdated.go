package cachecore

import (
	"context"
	"time"
)

// cacheUpdatedNode performs the single write-back for a walk that
// reached upstream. UpdateCache errors are logged and swallowed: the
// upstream value already satisfies the caller regardless of whether
// the cache write succeeded.
type cacheUpdatedNode[T any] struct {
	value     T
	createdAt time.Time
}

func (n cacheUpdatedNode[T]) step(ctx context.Context, w *walker[T]) node[T] {
	if err := w.adapter.UpdateCache(ctx, NewCachedValue(n.value, n.createdAt)); err != nil {
		w.logger.Warn("cache update failed", "error", err)
	}
	return finishNode[T]{value: n.value}
}
