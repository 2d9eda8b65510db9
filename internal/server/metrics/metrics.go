// Package metrics exposes prometheus counters for registration ceremonies
// and the HTTP surface. Every Recorder owns its registry so tests and
// multiple servers in one process do not collide.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "reelforge"

// Ceremony outcomes.
const (
	OutcomeOK                  = "ok"
	OutcomeMalformed           = "malformed"
	OutcomeNotFound            = "not_found"
	OutcomeVerificationFailed  = "verification_failed"
	OutcomeStateCorrupted      = "state_corrupted"
	OutcomeSerializationFailed = "serialization_failed"
	OutcomePersistenceFailed   = "persistence_failed"
	OutcomeChallengeFailed     = "challenge_failed"
)

type Recorder struct {
	registry *prometheus.Registry

	started   *prometheus.CounterVec
	completed *prometheus.CounterVec
	reaped    prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder builds a Recorder on a fresh registry that also carries the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		started: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "registration",
			Name:      "ceremonies_started_total",
			Help:      "Registration ceremonies begun, by outcome",
		}, []string{"outcome"}),
		completed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "registration",
			Name:      "ceremonies_completed_total",
			Help:      "Registration completion attempts, by outcome",
		}, []string{"outcome"}),
		reaped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "registration",
			Name:      "ceremonies_reaped_total",
			Help:      "Expired ceremonies removed by the reaper",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status_code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// The recording methods accept a nil receiver so callers may run without
// metrics.

func (r *Recorder) CeremonyStarted(outcome string) {
	if r == nil {
		return
	}
	r.started.WithLabelValues(outcome).Inc()
}

func (r *Recorder) CeremonyCompleted(outcome string) {
	if r == nil {
		return
	}
	r.completed.WithLabelValues(outcome).Inc()
}

func (r *Recorder) CeremoniesReaped(n int64) {
	if r == nil || n <= 0 {
		return
	}
	r.reaped.Add(float64(n))
}

func (r *Recorder) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
