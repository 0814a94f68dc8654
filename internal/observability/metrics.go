package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ghcnd"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Export pipeline metrics.
	StationsProcessed   prometheus.Counter
	StationErrors       prometheus.Counter
	ObservationsLoaded  prometheus.Counter
	LoadErrors          prometheus.Counter
	PipelineRunning     prometheus.Gauge
	BatchSize           prometheus.Histogram
	StationLoadDuration prometheus.Histogram

	// Remote fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: kind={station,inventory,stations}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: kind

	// Query API metrics.
	SeriesCache *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationsProcessed,
		m.StationErrors,
		m.ObservationsLoaded,
		m.LoadErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.StationLoadDuration,
		m.FetchRequests,
		m.FetchDuration,
		m.SeriesCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_processed_total",
			Help:      "Stations whose observations were fully loaded into the sink.",
		}),
		StationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_errors_total",
			Help:      "Stations skipped because their file could not be fetched or decoded.",
		}),
		ObservationsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_loaded_total",
			Help:      "Daily observations written to the sink.",
		}),
		LoadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed sink writes, each followed by a backoff and retry.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while an export is running, 0 otherwise.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Observations per sink write.",
			Buckets:   []float64{1, 10, 25, 50, 100, 250, 500, 1000},
		}),
		StationLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "station_load_duration_seconds",
			Help:      "Time to read, expand and load one station.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Remote file fetches by kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Remote fetch duration until response headers, in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_cache_total",
			Help:      "Daily series cache lookups by result.",
		}, []string{"result"}),
	}
}
