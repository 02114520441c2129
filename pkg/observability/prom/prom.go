// Package prom implements the observability hooks with Prometheus
// collectors.
//
// Register once at startup and expose the registry over HTTP:
//
//	reg := prometheus.NewRegistry()
//	m := prom.New(reg)
//	m.Install()
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nuxeo/ant-assembly-maven-plugin-sub000/pkg/observability"
)

const namespace = "artgraph"

// Metrics holds the collectors. It implements ResolveHooks, CacheHooks and
// HTTPHooks.
type Metrics struct {
	resolveTotal    *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	resolveNodes    prometheus.Histogram
	conflicts       prometheus.Counter
	missing         prometheus.Counter

	cacheOps   *prometheus.CounterVec
	cacheBytes *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		resolveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_total",
			Help:      "Number of dependency tree resolutions by outcome.",
		}, []string{"outcome"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time taken to collect a dependency tree.",
			Buckets:   prometheus.DefBuckets,
		}),
		resolveNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_nodes",
			Help:      "Number of nodes in collected dependency trees.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_conflicts_total",
			Help:      "Number of version conflicts settled by mediation.",
		}),
		missing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolve_descriptor_missing_total",
			Help:      "Number of dependencies kept as leaves because their descriptor could not be read.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Repository HTTP responses by host and status code.",
		}, []string{"host", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Repository HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "Repository HTTP requests that failed without a response.",
		}, []string{"host"}),
	}
	reg.MustRegister(
		m.resolveTotal,
		m.resolveDuration,
		m.resolveNodes,
		m.conflicts,
		m.missing,
		m.cacheOps,
		m.cacheBytes,
		m.httpRequests,
		m.httpDuration,
		m.httpErrors,
	)
	return m
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetResolveHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

func (m *Metrics) OnResolveStart(context.Context, string) {}

func (m *Metrics) OnResolveComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.resolveTotal.WithLabelValues(outcome).Inc()
	m.resolveDuration.Observe(d.Seconds())
	if err == nil {
		m.resolveNodes.Observe(float64(nodeCount))
	}
}

func (m *Metrics) OnConflict(context.Context, string, string, string) { m.conflicts.Inc() }

func (m *Metrics) OnDescriptorMissing(context.Context, string, error) { m.missing.Inc() }

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string, string) {}

func (m *Metrics) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(host, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, _, host, _ string, _ error) {
	m.httpErrors.WithLabelValues(host).Inc()
}

var (
	_ observability.ResolveHooks = (*Metrics)(nil)
	_ observability.CacheHooks   = (*Metrics)(nil)
	_ observability.HTTPHooks    = (*Metrics)(nil)
)
