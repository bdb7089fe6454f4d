package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dataset loading and figure serving.
type Metrics struct {
	// Dataset metrics.
	IncidentRows   prometheus.Gauge
	AggregateRows  prometheus.Gauge
	UnmappedValues *prometheus.CounterVec // labels: field={month,state,state_code}
	LoadDuration   prometheus.Gauge
	DatasetReady   prometheus.Gauge

	// Figure metrics.
	FigureRequests *prometheus.CounterVec // labels: branch={all_states,one_state}
	UpdateDuration prometheus.Histogram
	ChartCache     *prometheus.CounterVec // labels: result={hit,miss}
	ChartRenders   *prometheus.CounterVec // labels: chart={year,month}, outcome={success,empty,error}

	// Delivery metrics.
	AggregatesPublished prometheus.Counter
	RateLimited         prometheus.Counter
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IncidentRows,
		m.AggregateRows,
		m.UnmappedValues,
		m.LoadDuration,
		m.DatasetReady,
		m.FigureRequests,
		m.UpdateDuration,
		m.ChartCache,
		m.ChartRenders,
		m.AggregatesPublished,
		m.RateLimited,
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
		IncidentRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brazil_fires",
			Name:      "incident_rows",
			Help:      "Rows in the loaded incident table.",
		}),
		AggregateRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brazil_fires",
			Name:      "aggregate_rows",
			Help:      "Rows in the derived per-year, per-state aggregate table.",
		}),
		UnmappedValues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brazil_fires",
			Name:      "unmapped_values_total",
			Help:      "Source values with no canonical translation, by field.",
		}, []string{"field"}),
		LoadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brazil_fires",
			Name:      "dataset_load_duration_seconds",
			Help:      "Time taken by the startup dataset load.",
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "brazil_fires",
			Name:      "dataset_ready",
			Help:      "1 once the dataset is loaded and figures can be served.",
		}),
		FigureRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brazil_fires",
			Name:      "figure_requests_total",
			Help:      "Figure updates by controller branch.",
		}, []string{"branch"}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "brazil_fires",
			Name:      "update_duration_seconds",
			Help:      "Time to filter the tables and build the three figures.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		ChartCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brazil_fires",
			Name:      "chart_cache_total",
			Help:      "Figure cache lookups by result.",
		}, []string{"result"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "brazil_fires",
			Name:      "chart_renders_total",
			Help:      "Server-side PNG renders by chart and outcome.",
		}, []string{"chart", "outcome"}),
		AggregatesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brazil_fires",
			Name:      "aggregates_published_total",
			Help:      "Aggregate records written to the Kafka topic.",
		}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "brazil_fires",
			Name:      "rate_limited_requests_total",
			Help:      "HTTP requests rejected by the rate limiter.",
		}),
	}
}
