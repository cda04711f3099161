package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by the
// ETL pipeline and the collector.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Provider (OpenWeatherMap) client metrics.
	ProviderRequests    *prometheus.CounterVec   // labels: endpoint={uv,so2}, outcome={success,error}
	ProviderCache       *prometheus.CounterVec   // labels: endpoint={uv,so2}, result={hit,miss}
	ProviderAPIDuration *prometheus.HistogramVec // labels: endpoint={uv,so2}

	// Collector metrics.
	CollectorFetches   *prometheus.CounterVec // labels: kind={uv,so2}, outcome={success,error}
	CollectorPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "transform_errors_total",
			Help:      "Total transformation failures.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "index_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "index_etl",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "index_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "provider_requests_total",
			Help:      "OpenWeatherMap API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		ProviderCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "provider_cache_total",
			Help:      "Provider payload cache lookups by endpoint and result.",
		}, []string{"endpoint", "result"}),
		ProviderAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "index_etl",
			Name:      "provider_api_duration_seconds",
			Help:      "OpenWeatherMap API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		CollectorFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "collector_fetches_total",
			Help:      "Collector fetch attempts by measurement kind and outcome.",
		}, []string{"kind", "outcome"}),
		CollectorPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "index_etl",
			Name:      "collector_published_total",
			Help:      "Raw envelopes published to the source topic.",
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.ProviderRequests,
		m.ProviderCache,
		m.ProviderAPIDuration,
		m.CollectorFetches,
		m.CollectorPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "index_etl", Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "index_etl", Name: "messages_produced_total"}),
		TransformErrors:         prometheus.NewCounter(prometheus.CounterOpts{Namespace: "index_etl", Name: "transform_errors_total"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "index_etl", Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "index_etl", Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "index_etl", Name: "batch_processing_duration_seconds"}),
		ProviderRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "index_etl", Name: "provider_requests_total"}, []string{"endpoint", "outcome"}),
		ProviderCache:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "index_etl", Name: "provider_cache_total"}, []string{"endpoint", "result"}),
		ProviderAPIDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "index_etl", Name: "provider_api_duration_seconds"}, []string{"endpoint"}),
		CollectorFetches:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "index_etl", Name: "collector_fetches_total"}, []string{"kind", "outcome"}),
		CollectorPublished:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "index_etl", Name: "collector_published_total"}),
	}
}
