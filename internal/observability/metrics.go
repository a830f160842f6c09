package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// viewer service.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec // labels: route, code

	// Series read-path metrics.
	SeriesLoads *prometheus.CounterVec // labels: outcome={success,not_found,error}
	SeriesCache *prometheus.CounterVec // labels: result={hit,miss}

	ChartRenderDuration prometheus.Histogram

	StationsLoaded prometheus.Gauge
	StoreReady     prometheus.Gauge
}

// NewMetrics creates and registers all viewer metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.HTTPRequests,
		m.SeriesLoads,
		m.SeriesCache,
		m.ChartRenderDuration,
		m.StationsLoaded,
		m.StoreReady,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwis_viewer",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status code.",
		}, []string{"route", "code"}),
		SeriesLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwis_viewer",
			Name:      "series_loads_total",
			Help:      "Normalized series file loads by outcome.",
		}, []string{"outcome"}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwis_viewer",
			Name:      "series_cache_total",
			Help:      "Series cache lookups by result.",
		}, []string{"result"}),
		ChartRenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nwis_viewer",
			Name:      "chart_render_duration_seconds",
			Help:      "Time spent rendering time-series chart PNGs.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		StationsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nwis_viewer",
			Name:      "stations_loaded",
			Help:      "Stations loaded from the shapefile table.",
		}),
		StoreReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nwis_viewer",
			Name:      "store_ready",
			Help:      "1 when the normalized-data scan has completed, 0 otherwise.",
		}),
	}
}
