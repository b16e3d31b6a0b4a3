package cachecore

import "context"

// initialNode is the entry point of every walk. It dispatches on
// whether caching is enabled at all: disabled sends the walk straight
// to upstream; enabled consults the cache first.
type initialNode[T any] struct{}

func (initialNode[T]) step(ctx context.Context, w *walker[T]) node[T] {
	if !bool(w.settings.Cache) {
		value, err := w.adapter.PollUpstream(ctx)
		return upstreamPolledNode[T]{value: value, err: err}
	}

	state, err := w.adapter.PollCache(ctx)
	if err != nil {
		w.logger.Warn("cache poll failed, treating as miss", "error", err)
	}
	w.recorder.ObservePoll(state.Tier.String())
	return cachePolledNode[T]{state: state}
}
