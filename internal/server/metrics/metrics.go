// Package metrics provides Prometheus metrics for the platemap HTTP API.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the API's collectors. It implements prometheus.Collector
// and is registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	queriesTotal  *prometheus.CounterVec
	coveredStates prometheus.Histogram
	tableRows     prometheus.Histogram

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	catalogEntries prometheus.Gauge
}

// New creates the collectors and registers them on registry. A nil
// registry gets a fresh one.
func New(registry *prometheus.Registry) (*Metrics, error) {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platemap_queries_total",
			Help: "Total number of coverage queries by search path and outcome",
		},
		[]string{"path", "status"}, // path: agency, plate, none; status: ok, no_data_for_plate, ...
	)

	m.coveredStates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platemap_query_covered_states",
			Help:    "Number of covered states returned per successful query",
			Buckets: prometheus.LinearBuckets(1, 5, 11), // 1 to 51 states
		},
	)

	m.tableRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "platemap_query_table_rows",
			Help:    "Number of coverage table rows submitted with plate searches",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k rows
		},
	)

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platemap_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platemap_http_request_duration_seconds",
			Help:    "Time taken for HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	m.catalogEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "platemap_catalog_entries",
			Help: "Number of entries in the loaded agency catalog",
		},
	)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.queriesTotal,
		m.coveredStates,
		m.tableRows,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.catalogEntries,
	}
}

// Describe implements the Collector interface.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements the Collector interface.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

// RecordQuery records one dispatched query.
func (m *Metrics) RecordQuery(path, status string, rows, states int) {
	m.queriesTotal.WithLabelValues(path, status).Inc()
	if path == "plate" {
		m.tableRows.Observe(float64(rows))
	}
	if states > 0 {
		m.coveredStates.Observe(float64(states))
	}
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// SetCatalogEntries records the size of the loaded catalog.
func (m *Metrics) SetCatalogEntries(n int) {
	m.catalogEntries.Set(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
