// Package metrics provides an optional, opt-in Prometheus recorder for
// the cache decision state machine. Wiring it is entirely up to the
// caller: Recorder only registers collectors against whatever
// prometheus.Registerer it is given, and never starts an HTTP server
// or exporter of its own.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dogpilecache"

// Recorder records per-walk outcomes: which tier a poll classified to,
// how long a dogpile wait lasted, and whether a background stale
// refresh succeeded.
type Recorder struct {
	tierTotal       *prometheus.CounterVec
	lockWaitSeconds prometheus.Histogram
	refreshTotal    *prometheus.CounterVec
}

// NewRecorder registers its collectors against reg and returns a
// Recorder backed by them. Pass prometheus.NewRegistry() for an
// isolated registry, or prometheus.DefaultRegisterer to join the
// process-wide one.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		tierTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "poll_total",
				Help:      "Cache polls classified by tier.",
			},
			[]string{"tier"},
		),
		lockWaitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lock_wait_seconds",
				Help:      "Time a walk spent waiting on a dogpile lock held by another walk.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		refreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "background_refresh_total",
				Help:      "Background stale-refresh attempts by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

// NewNopRecorder returns a Recorder backed by its own throwaway
// registry, for callers who want the interface without wiring metrics
// anywhere.
func NewNopRecorder() *Recorder {
	return NewRecorder(prometheus.NewRegistry())
}

// ObservePoll records the tier a cache poll classified to.
func (r *Recorder) ObservePoll(tier string) {
	if r == nil {
		return
	}
	r.tierTotal.WithLabelValues(tier).Inc()
}

// ObserveLockWait records how long a walk waited on someone else's
// dogpile lock before giving up or getting a hit.
func (r *Recorder) ObserveLockWait(seconds float64) {
	if r == nil {
		return
	}
	r.lockWaitSeconds.Observe(seconds)
}

// ObserveBackgroundRefresh records the outcome of a detached
// stale-refresh attempt: "ok", "upstream_error", or "cache_error".
func (r *Recorder) ObserveBackgroundRefresh(outcome string) {
	if r == nil {
		return
	}
	r.refreshTotal.WithLabelValues(outcome).Inc()
}
