// Package main is a runnable demonstration of the cache decision state
// machine: a slow "upstream" fronted by an in-memory backend, driven
// through cachecore.Run with stale-while-revalidate and dogpile-lock
// mode both enabled.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dogpilecache/core/backend/memory"
	"github.com/dogpilecache/core/internal/metrics"
	"github.com/dogpilecache/core/internal/observability"
	"github.com/dogpilecache/core/pkg/cachecore"
)

// profileLookup is a Cacheable describing "fetch user N's profile".
type profileLookup struct {
	cachecore.DefaultTTLs
	userID string
}

func (p profileLookup) CacheKey() (string, error) { return p.userID, nil }
func (p profileLookup) CacheKeyPrefix() string     { return "profile" }

func (profileLookup) CacheTTL() time.Duration      { return 5 * time.Second }
func (profileLookup) CacheStaleTTL() time.Duration { return 2 * time.Second }

type profile struct {
	UserID    string
	FetchedAt time.Time
}

func main() {
	if err := run(); err != nil {
		slog.Error("example failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	logger := observability.NewLogger(observability.LoggerConfig{
		Level:      slog.LevelInfo,
		Output:     os.Stdout,
		JSONFormat: true,
	})

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	go serveMetrics(registry, logger)

	var upstreamCalls atomic.Int32
	upstream := func(ctx context.Context) (profile, error) {
		upstreamCalls.Add(1)
		time.Sleep(200 * time.Millisecond) // simulate slow upstream
		return profile{UserID: "42", FetchedAt: time.Now()}, nil
	}

	be := memory.New(memory.Config{})
	settings := cachecore.NewCacheSettings(
		cachecore.WithStale(true),
		cachecore.WithLock(true),
	)

	req := profileLookup{userID: "42"}
	adapter, err := cachecore.NewAdapter[profile](req, upstream, be, settings, logger)
	if err != nil {
		return fmt.Errorf("build adapter: %w", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		value, err := cachecore.Run[profile](ctx, adapter, logger, cachecore.WithRecorder(recorder))
		if err != nil {
			return fmt.Errorf("walk %d: %w", i, err)
		}
		logger.Info("walk completed", "iteration", i, "fetched_at", value.FetchedAt, "upstream_calls_so_far", upstreamCalls.Load())
		time.Sleep(time.Second)
	}

	return nil
}

func serveMetrics(registry *prometheus.Registry, logger *observability.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("metrics listening", "addr", ":9090")
	if err := http.ListenAndServe(":9090", mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}
