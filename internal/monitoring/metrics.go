// Package monitoring exposes Prometheus metrics and a status snapshot for the map service.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carbon_map"

// Metrics holds the Prometheus collectors for the map service.
type Metrics struct {
	SessionsActive   prometheus.Gauge
	SessionsExpired  prometheus.Counter
	Mutations        *prometheus.CounterVec // labels: op={scale,category,bucket,hover,click,leave,clear}
	PointerThrottled prometheus.Counter

	RowsLoaded   prometheus.Gauge
	RowsExcluded *prometheus.GaugeVec // labels: reason
	LoadDuration prometheus.Histogram
	LoadErrors   prometheus.Counter

	HTTPRequests *prometheus.CounterVec // labels: route, status
}

func newMetrics() *Metrics {
	return &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "View sessions currently mounted.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "View sessions torn down after the idle TTL.",
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_mutations_total",
			Help:      "Selection state operations applied, by operation.",
		}, []string{"op"}),
		PointerThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pointer_throttled_total",
			Help:      "Pointer events rejected by the per-session rate limiter.",
		}),
		RowsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Records in the current dataset.",
		}),
		RowsExcluded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_excluded",
			Help:      "Rows dropped by the last load, by reason.",
		}, []string{"reason"}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Duration of a dataset and overlay load.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed dataset loads.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SessionsActive,
		m.SessionsExpired,
		m.Mutations,
		m.PointerThrottled,
		m.RowsLoaded,
		m.RowsExcluded,
		m.LoadDuration,
		m.LoadErrors,
		m.HTTPRequests,
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry so tests can build
// as many as they like without "already registered" panics.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}
