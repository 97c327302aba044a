package metrics

import (
	"net/http"
	"time"

	"github.com/Harshitk-cp/causalchain/internal/cache"
	"github.com/Harshitk-cp/causalchain/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "causalchain"

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics, fed from the event bus
	GraphEvents   *prometheus.CounterVec
	Nodes         prometheus.Gauge
	Edges         prometheus.Gauge
	QueryDuration prometheus.Histogram
}

// NewCollector creates a collector backed by its own registry, so several
// collectors can coexist in tests.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GraphEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_events_total",
				Help:      "Graph events emitted, by type",
			},
			[]string{"type"},
		),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Number of nodes in the causal graph",
		}),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Number of edges in the causal graph",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Reasoning query processing time in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GraphEvents,
		c.Nodes,
		c.Edges,
		c.QueryDuration,
	)
	return c
}

// Registry exposes the underlying registry for tests and custom handlers.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCache exports a cache's counters, read at scrape time and labelled
// with the cache name.
func (c *Collector) ObserveCache(name string, stats func() cache.Stats) {
	labels := prometheus.Labels{"cache": name}
	c.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_hits_total",
			Help:        "Cache lookups served from the cache",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "cache_misses_total",
			Help:        "Cache lookups that had to be computed",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "cache_items",
			Help:        "Entries currently held in the cache",
			ConstLabels: labels,
		}, func() float64 { return float64(stats().Items) }),
	)
}

func (c *Collector) RecordHTTPRequest(method, route, status string, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveEvent is an event bus listener.
func (c *Collector) ObserveEvent(e domain.GraphEvent) error {
	c.GraphEvents.WithLabelValues(string(e.Type)).Inc()

	switch e.Type {
	case domain.EventNodeAdded:
		c.Nodes.Inc()
	case domain.EventEdgeAdded:
		c.Edges.Inc()
	case domain.EventQueryCompleted:
		if out, ok := e.Payload.(*domain.ReasoningOutput); ok {
			c.QueryDuration.Observe(float64(out.ProcessingTimeMS) / 1000)
		}
	}
	return nil
}
