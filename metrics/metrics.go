// Package metrics exposes Prometheus counters for classification runs and
// crawler fetches. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeNoTitle    = "no_title"
	OutcomeEmptyTitle = "empty_title"
	OutcomeFailed     = "failed"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	classifyRuns     *prometheus.CounterVec
	classifyDuration *prometheus.HistogramVec
	bookmarks        *prometheus.CounterVec
	fetches          *prometheus.CounterVec
	fetchDuration    prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		classifyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmarksort",
			Name:      "classify_runs_total",
			Help:      "Classification runs by method and status.",
		}, []string{"method", "status"}),
		classifyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bookmarksort",
			Name:      "classify_duration_seconds",
			Help:      "Wall time of a classification run.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"method"}),
		bookmarks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmarksort",
			Name:      "bookmarks_classified_total",
			Help:      "Bookmarks labelled, by method.",
		}, []string{"method"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookmarksort",
			Name:      "crawl_fetches_total",
			Help:      "Crawler page fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bookmarksort",
			Name:      "crawl_fetch_duration_seconds",
			Help:      "Time spent fetching one bookmark URL.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.classifyRuns,
		m.classifyDuration,
		m.bookmarks,
		m.fetches,
		m.fetchDuration,
	)
	return m
}

// ObserveClassify records one finished run.
func (m *Metrics) ObserveClassify(method string, n int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.classifyRuns.WithLabelValues(method, status).Inc()
	m.classifyDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err == nil {
		m.bookmarks.WithLabelValues(method).Add(float64(n))
	}
}

// ObserveFetch records one crawler fetch.
func (m *Metrics) ObserveFetch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
