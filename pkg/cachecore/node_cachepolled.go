package cachecore

import (
	"context"

	"github.com/dogpilecache/core/pkg/backend"
)

// cachePolledNode holds the outcome of consulting the cache: Actual,
// Stale, or Miss. Its step implements the per-tier dispatch: Actual
// bypasses upstream entirely, Stale either serves-and-refreshes or
// calls upstream directly depending on Settings().Stale, and Miss goes
// through dogpile-lock arbitration before calling upstream. Only the
// Miss path takes the dogpile lock.
type cachePolledNode[T any] struct {
	state CacheState[T]
}

func (n cachePolledNode[T]) step(ctx context.Context, w *walker[T]) node[T] {
	switch n.state.Tier {
	case Actual:
		return finishNode[T]{value: n.state.Value.Data}

	case Stale:
		if bool(w.settings.Stale) {
			w.spawnBackgroundRefresh()
			return finishNode[T]{value: n.state.Value.Data}
		}
		// Stale serving disabled: call upstream directly, without the
		// dogpile-lock arbitration a Miss goes through.
		return n.pollUpstream(ctx, w)

	default: // Miss
		return n.pollUpstreamWithLock(ctx, w)
	}
}

// pollUpstreamWithLock arbitrates dogpile access before calling
// upstream: if lock mode is on and another walk already holds the
// lock, this walk waits for the cache to be populated instead of also
// calling upstream. If the wait times out without a hit, it falls
// through to calling upstream directly.
func (n cachePolledNode[T]) pollUpstreamWithLock(ctx context.Context, w *walker[T]) node[T] {
	if !bool(w.settings.Lock) {
		return n.pollUpstream(ctx, w)
	}

	status, err := w.adapter.TryLock(ctx)
	if err != nil {
		w.logger.Warn("lock attempt failed, proceeding without it", "error", err)
		return n.pollUpstream(ctx, w)
	}
	if status == backend.Acquired {
		return n.pollUpstream(ctx, w)
	}

	// Another walk holds the lock; wait for it to populate the cache.
	state := waitForCache(ctx, w)
	if state.Tier != Miss {
		return cachePolledNode[T]{state: state}
	}
	return n.pollUpstream(ctx, w)
}

func (cachePolledNode[T]) pollUpstream(ctx context.Context, w *walker[T]) node[T] {
	value, err := w.adapter.PollUpstream(ctx)
	return upstreamPolledNode[T]{value: value, err: err}
}
