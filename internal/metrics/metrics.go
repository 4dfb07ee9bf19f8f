package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compute outcomes recorded in ComputeTotal.
const (
	ResultComputed = "computed"
	ResultCacheHit = "cache_hit"
	ResultShared   = "shared"
	ResultError    = "error"
)

// Metrics holds all Prometheus metrics for the indicator engine and API.
type Metrics struct {
	ComputeTotal    *prometheus.CounterVec // labels: result
	ComputeDuration prometheus.Histogram
	BarsProcessed   prometheus.Counter
	CacheEntries    prometheus.Gauge

	BatchSymbolsTotal *prometheus.CounterVec // labels: result

	HTTPRequestsTotal   *prometheus.CounterVec // labels: route, code
	HTTPRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the metrics and registers them on reg. A nil reg uses a
// fresh private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		ComputeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_compute_total",
			Help: "Indicator table requests by outcome",
		}, []string{"result"}),
		ComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ta_compute_duration_seconds",
			Help:    "Time to compute one indicator table",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		BarsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ta_bars_processed_total",
			Help: "Bars fed through the indicator engine",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ta_cache_entries",
			Help: "Indicator tables currently memoized",
		}),
		BatchSymbolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_batch_symbols_total",
			Help: "Symbols processed by batch runs",
		}, []string{"result"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ta_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ta_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.ComputeTotal,
		m.ComputeDuration,
		m.BarsProcessed,
		m.CacheEntries,
		m.BatchSymbolsTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}

// ObserveCompute records one computed table.
func (m *Metrics) ObserveCompute(bars int, elapsed time.Duration) {
	m.ComputeTotal.WithLabelValues(ResultComputed).Inc()
	m.ComputeDuration.Observe(elapsed.Seconds())
	m.BarsProcessed.Add(float64(bars))
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
