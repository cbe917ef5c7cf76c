// Package metrics exports Prometheus collectors for the combatant caches
// and the arenas.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"boxing-arena-api/internal/cache"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arena"

// Metrics owns a private registry so tests can build as many as they like.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Metrics struct {
	registry *prometheus.Registry

	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec
	bouts              *prometheus.CounterVec
	boutErrors         *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, plus Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Combatant lookups served from a live cache entry",
		}, []string{"arena"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Combatant lookups that queried the store",
		}, []string{"arena"}),
		cacheInvalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache entries dropped explicitly",
		}, []string{"arena"}),
		bouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bouts_total",
			Help:      "Bouts that produced a winner",
		}, []string{"arena"}),
		boutErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bout_errors_total",
			Help:      "Bouts that failed, by error kind",
		}, []string{"arena", "kind"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method"}),
	}
	m.registry.MustRegister(
		m.cacheHits, m.cacheMisses, m.cacheInvalidations, m.bouts, m.boutErrors,
		m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Cache returns a cache.Metrics adapter labelled with the arena name.
func (m *Metrics) Cache(arena string) cache.Metrics {
	return cacheAdapter{
		hits:          m.cacheHits.WithLabelValues(arena),
		misses:        m.cacheMisses.WithLabelValues(arena),
		invalidations: m.cacheInvalidations.WithLabelValues(arena),
	}
}

// BoutFinished counts a successful bout.
func (m *Metrics) BoutFinished(arena string) {
	m.bouts.WithLabelValues(arena).Inc()
}

// BoutFailed counts a failed bout; kind is a short stable label such as
// "insufficient", "not_found", "transport" or "internal".
func (m *Metrics) BoutFailed(arena, kind string) {
	m.boutErrors.WithLabelValues(arena, kind).Inc()
}

// ObserveRequest records one served HTTP request. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

type cacheAdapter struct {
	hits, misses, invalidations prometheus.Counter
}

func (a cacheAdapter) Hit()             { a.hits.Inc() }
func (a cacheAdapter) Miss()            { a.misses.Inc() }
func (a cacheAdapter) Invalidate(n int) { a.invalidations.Add(float64(n)) }

// Compile-time check: ensure cacheAdapter implements cache.Metrics.
var _ cache.Metrics = cacheAdapter{}
