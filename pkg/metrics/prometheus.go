// Package metrics provides Prometheus metrics for the DiFR leaderboard service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the DiFR service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	ingestionRuns     *prometheus.CounterVec
	ingestionDuration prometheus.Histogram
	ingestionState    prometheus.Gauge
	filesListed       prometheus.Gauge
	filesFetched      prometheus.Counter
	filesSkipped      *prometheus.CounterVec
	fetchLatency      prometheus.Histogram
	fetchErrors       *prometheus.CounterVec

	// Corpus
	corpusRecords   prometheus.Gauge
	corpusModels    prometheus.Gauge
	corpusProviders prometheus.Gauge

	// Snapshot publishing
	snapshotCount    prometheus.Counter
	snapshotLastUnix prometheus.Gauge

	// Aggregation
	aggregationLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "difr",
		subsystem:        "leaderboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// name applies the optional metric prefix.
func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	if !m.enabled {
		// Metrics are still created so callers never see nil collectors,
		// they are just not exported anywhere.
		auto = promauto.With(nil)
	}
	labels := prometheus.Labels(m.customLabels)

	m.ingestionRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingestion_runs_total"),
		Help:        "Total number of ingestion runs by terminal state",
		ConstLabels: labels,
	}, []string{"state"})

	m.ingestionDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingestion_duration_milliseconds"),
		Help:        "Wall time of an ingestion run in milliseconds",
		Buckets:     prometheus.ExponentialBuckets(10, 2, 12),
		ConstLabels: labels,
	})

	m.ingestionState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ingestion_state"),
		Help:        "Current ingestion state (0=loading, 1=ready, 2=fallback)",
		ConstLabels: labels,
	})

	m.filesListed = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("files_listed"),
		Help:        "Number of JSON candidates returned by the last listing",
		ConstLabels: labels,
	})

	m.filesFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("files_fetched_total"),
		Help:        "Total number of audit files fetched",
		ConstLabels: labels,
	})

	m.filesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("files_skipped_total"),
		Help:        "Total number of listed files excluded from the corpus by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_latency_milliseconds"),
		Help:        "Latency of a single audit file fetch in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.fetchErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("fetch_errors_total"),
		Help:        "Total number of listing or fetch failures by source and stage",
		ConstLabels: labels,
	}, []string{"source", "stage"})

	m.corpusRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("corpus_records"),
		Help:        "Number of audit results in the published corpus",
		ConstLabels: labels,
	})

	m.corpusModels = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("corpus_models"),
		Help:        "Number of distinct models in the published corpus",
		ConstLabels: labels,
	})

	m.corpusProviders = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("corpus_providers"),
		Help:        "Number of distinct providers in the published corpus",
		ConstLabels: labels,
	})

	m.snapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_count_total"),
		Help:        "Total number of corpus snapshots published",
		ConstLabels: labels,
	})

	m.snapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_last_unix"),
		Help:        "Unix timestamp of the last snapshot publish",
		ConstLabels: labels,
	})

	m.aggregationLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("aggregation_latency_milliseconds"),
		Help:        "Latency of aggregate builders in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"builder"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_component_total"),
			Help:        "Total number of errors by component",
			ConstLabels: labels,
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Total number of errors by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_memory_usage_bytes"),
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_goroutine_count"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("system_gc_pause_time_milliseconds"),
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RefreshInterval reports how often gauges should be refreshed by pollers.
func (m *Manager) RefreshInterval() time.Duration {
	return m.refreshInterval
}

// Ingestion Metrics Functions.

// RecordIngestionRun counts a finished ingestion run by its terminal state.
func RecordIngestionRun(state string) {
	globalManager.ingestionRuns.WithLabelValues(state).Inc()
}

// RecordIngestionDuration records ingestion wall time in milliseconds.
func RecordIngestionDuration(ms float64) {
	globalManager.ingestionDuration.Observe(ms)
}

// UpdateIngestionState sets the ingestion state gauge.
func UpdateIngestionState(state int) {
	globalManager.ingestionState.Set(float64(state))
}

// UpdateFilesListed sets the number of candidates from the last listing.
func UpdateFilesListed(n int) {
	globalManager.filesListed.Set(float64(n))
}

// RecordFileFetched increments the fetched files counter.
func RecordFileFetched() {
	globalManager.filesFetched.Inc()
}

// RecordFileSkipped increments the skipped files counter for a reason.
func RecordFileSkipped(reason string) {
	globalManager.filesSkipped.WithLabelValues(reason).Inc()
}

// RecordFetchLatency records a single fetch latency in milliseconds.
func RecordFetchLatency(ms float64) {
	globalManager.fetchLatency.Observe(ms)
}

// RecordFetchError counts a failed listing or fetch.
func RecordFetchError(source, stage string) {
	globalManager.fetchErrors.WithLabelValues(source, stage).Inc()
}

// Corpus Metrics Functions.

// UpdateCorpus sets the corpus size gauges.
func UpdateCorpus(records, models, providers int) {
	globalManager.corpusRecords.Set(float64(records))
	globalManager.corpusModels.Set(float64(models))
	globalManager.corpusProviders.Set(float64(providers))
}

// Snapshot Metrics Functions.

// RecordSnapshotPublished increments the snapshot counter and stamps the publish time.
func RecordSnapshotPublished(at time.Time) {
	globalManager.snapshotCount.Inc()
	globalManager.snapshotLastUnix.Set(float64(at.Unix()))
}

// RecordAggregationLatency records how long a builder took.
func RecordAggregationLatency(builder string, ms float64) {
	globalManager.aggregationLatency.WithLabelValues(builder).Observe(ms)
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports the global manager's gauge refresh interval.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}
