// Package observability exposes the gateway's Prometheus metrics. A single
// Collector instance is shared by the HTTP layer, the upstream client and
// the catalog cache through their hook interfaces.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"goleet/internal/catalog"
	"goleet/internal/leetcode"
)

// Collector owns the metric instruments and the registry they live in.
type Collector struct {
	registry *prometheus.Registry

	CatalogRefreshes *prometheus.CounterVec
	CatalogSize      prometheus.Gauge
	DetailHits       prometheus.Counter
	DetailMisses     prometheus.Counter

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry under the given
// namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		CatalogRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "catalog_refresh_total",
				Help:      "Catalog refresh cycles by outcome",
			},
			[]string{"outcome"},
		),
		CatalogSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_entries",
				Help:      "Entries in the published catalog snapshot",
			},
		),
		DetailHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detail_cache_hits_total",
				Help:      "Detail cache lookups answered locally",
			},
		),
		DetailMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "detail_cache_misses_total",
				Help:      "Detail cache lookups that went upstream",
			},
		),

		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upstream_requests_total",
				Help:      "Upstream GraphQL requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Upstream GraphQL request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	c.registry.MustRegister(
		c.CatalogRefreshes,
		c.CatalogSize,
		c.DetailHits,
		c.DetailMisses,
		c.UpstreamRequests,
		c.UpstreamDuration,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// Registry returns the registry backing this collector, for mounting a
// metrics endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CatalogRefresh implements catalog.Hooks.
func (c *Collector) CatalogRefresh(outcome string) {
	c.CatalogRefreshes.WithLabelValues(outcome).Inc()
}

// CatalogEntries implements catalog.Hooks.
func (c *Collector) CatalogEntries(count int) {
	c.CatalogSize.Set(float64(count))
}

// DetailHit implements catalog.Hooks.
func (c *Collector) DetailHit() {
	c.DetailHits.Inc()
}

// DetailMiss implements catalog.Hooks.
func (c *Collector) DetailMiss() {
	c.DetailMisses.Inc()
}

// UpstreamRequest implements leetcode.Hooks.
func (c *Collector) UpstreamRequest(operation, outcome string, elapsed time.Duration) {
	c.UpstreamRequests.WithLabelValues(operation, outcome).Inc()
	c.UpstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served HTTP request.
func (c *Collector) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

var (
	_ catalog.Hooks  = (*Collector)(nil)
	_ leetcode.Hooks = (*Collector)(nil)
)
