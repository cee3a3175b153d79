// Package metrics holds the Prometheus collectors of the service on a
// private registry. Every method is safe on a nil *Collector.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "promptvault"

// Refresh outcomes.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// Collector owns the registry and every metric.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	fetchFailures   prometheus.Counter
	promptsLoaded   prometheus.Gauge
	categories      prometheus.Gauge
	storeErrors     *prometheus.CounterVec
}

// New creates a collector with its own registry, including the Go runtime
// and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refreshes_total",
			Help:      "Catalog refreshes by trigger and result",
		}, []string{"trigger", "result"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_duration_seconds",
			Help:      "Duration of catalog refreshes",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		fetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_category_fetch_failures_total",
			Help:      "Category files that could not be fetched during a refresh",
		}),
		promptsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_prompts",
			Help:      "Number of prompts currently in the catalog",
		}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_categories",
			Help:      "Number of categories currently in the catalog, including all",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Local store failures by operation",
		}, []string{"operation"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.refreshes,
		c.refreshDuration,
		c.fetchFailures,
		c.promptsLoaded,
		c.categories,
		c.storeErrors,
	)
	return c
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Registry returns the underlying registry (tests).
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveHTTP records one served request. route is the chi route pattern.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRefresh records a finished refresh.
func (c *Collector) ObserveRefresh(trigger, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.refreshes.WithLabelValues(trigger, result).Inc()
	if result != ResultSkipped {
		c.refreshDuration.Observe(d.Seconds())
	}
}

// AddFetchFailures counts category files that failed during a refresh.
func (c *Collector) AddFetchFailures(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.fetchFailures.Add(float64(n))
}

// SetCatalogSize publishes the current catalog size.
func (c *Collector) SetCatalogSize(prompts, categories int) {
	if c == nil {
		return
	}
	c.promptsLoaded.Set(float64(prompts))
	c.categories.Set(float64(categories))
}

// StoreError counts a failed store operation ("load" or "save").
func (c *Collector) StoreError(operation string) {
	if c == nil {
		return
	}
	c.storeErrors.WithLabelValues(operation).Inc()
}
