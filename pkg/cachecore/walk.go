package cachecore

import (
	"context"
	"time"

	"github.com/dogpilecache/core/internal/metrics"
	"github.com/dogpilecache/core/internal/observability"
)

// backgroundRefreshTimeout bounds a detached stale-refresh call; it is
// decoupled from the caller's context since the caller has already
// gotten its (stale) answer and moved on.
const backgroundRefreshTimeout = 30 * time.Second

// lockWaitMinBackoff / lockWaitMaxBackoff bound the poll interval a
// walk uses while another walk holds the dogpile lock.
const (
	lockWaitMinBackoff = 50 * time.Millisecond
	lockWaitMaxBackoff = 1 * time.Second
)

// node is one state of the cache decision walk. step consumes the
// node and returns the next one, or nil to end the walk. Each
// implementation is a distinct type rather than a shared struct with
// a tag field, so the compiler — not a switch statement — enforces
// that a transition only reads the fields valid for its origin state.
type node[T any] interface {
	step(ctx context.Context, w *walker[T]) node[T]
}

// walker carries the state threaded through a single walk: the
// adapter it talks to, the settings it dispatches on, and the result
// slots finishNode writes before ending the loop.
type walker[T any] struct {
	adapter  RuntimeAdapter[T]
	settings CacheSettings
	logger   *observability.Logger
	recorder *metrics.Recorder

	result T
	err    error
}

// RunOption configures optional collaborators for a single Run call.
type RunOption func(*runConfig)

type runConfig struct {
	recorder *metrics.Recorder
}

// WithRecorder attaches a Prometheus recorder to the walk. Omit it and
// Run records nothing.
func WithRecorder(r *metrics.Recorder) RunOption {
	return func(c *runConfig) { c.recorder = r }
}

// Run drives one request through the cache decision state machine:
// Initial, then either straight to upstream or through the cache,
// ending at Finish. adapter isolates Run from any concrete backend or
// upstream transport. A nil logger is replaced with one that discards
// everything.
func Run[T any](ctx context.Context, adapter RuntimeAdapter[T], logger *observability.Logger, opts ...RunOption) (T, error) {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	ctx, _ = observability.GetOrCreateWalkID(ctx)
	logger = logger.WithWalkID(ctx)

	var cfg runConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	w := &walker[T]{adapter: adapter, settings: adapter.Settings(), logger: logger, recorder: cfg.recorder}

	walkID := observability.WalkIDFromContext(ctx)
	attrs := observability.WalkSpanAttributes{KeyPrefix: w.settings.KeyPrefix, WalkID: walkID}

	var n node[T] = initialNode[T]{}
	for n != nil {
		spanCtx, span := observability.StartWalkNodeSpan(ctx, nodeName(n), attrs)
		if cp, ok := n.(cachePolledNode[T]); ok {
			observability.RecordCacheTier(span, cp.state.Tier.String())
		}
		n = n.step(spanCtx, w)
		if n == nil && w.err != nil {
			observability.RecordError(span, w.err)
		}
		span.End()
	}
	return w.result, w.err
}

// nodeName identifies a node's concrete type for span naming, without
// requiring every node type to carry its own name method.
func nodeName[T any](n node[T]) string {
	switch n.(type) {
	case initialNode[T]:
		return "initial"
	case cachePolledNode[T]:
		return "cache_polled"
	case upstreamPolledNode[T]:
		return "upstream_polled"
	case cacheUpdatedNode[T]:
		return "cache_updated"
	case finishNode[T]:
		return "finish"
	default:
		return "unknown"
	}
}

// waitForCache polls the cache with exponential backoff, capped at
// lockWaitMaxBackoff, until it stops reporting Miss or
// Settings().LockTTL elapses. Used by a walk that found the dogpile
// lock already held by someone else.
func waitForCache[T any](ctx context.Context, w *walker[T]) CacheState[T] {
	start := time.Now()
	deadline := start.Add(w.settings.LockTTL)
	backoff := lockWaitMinBackoff

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			w.recorder.ObserveLockWait(time.Since(start).Seconds())
			return CacheState[T]{Tier: Miss}
		case <-time.After(backoff):
		}

		state, err := w.adapter.PollCache(ctx)
		if err == nil && state.Tier != Miss {
			w.recorder.ObserveLockWait(time.Since(start).Seconds())
			return state
		}

		backoff *= 2
		if backoff > lockWaitMaxBackoff {
			backoff = lockWaitMaxBackoff
		}
	}
	w.recorder.ObserveLockWait(time.Since(start).Seconds())
	return CacheState[T]{Tier: Miss}
}

// spawnBackgroundRefresh detaches a fresh upstream call and cache
// write from the walk that triggered it, so a Stale hit can return
// immediately while the entry gets refreshed for the next caller.
func (w *walker[T]) spawnBackgroundRefresh() {
	adapter := w.adapter
	logger := w.logger
	recorder := w.recorder

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
		defer cancel()

		value, err := adapter.PollUpstream(ctx)
		if err != nil {
			logger.Warn("background stale refresh failed", "error", err)
			recorder.ObserveBackgroundRefresh("upstream_error")
			return
		}
		if !isCacheableOutcome(value) {
			return
		}
		if err := adapter.UpdateCache(ctx, NewCachedValue(value, time.Now())); err != nil {
			logger.Warn("background stale refresh cache update failed", "error", err)
			recorder.ObserveBackgroundRefresh("cache_error")
			return
		}
		recorder.ObserveBackgroundRefresh("ok")
	}()
}
