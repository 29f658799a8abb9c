// Package metrics provides Prometheus metrics for the impact ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Normalizer metrics - raw record intake quality
	recordsNormalized  prometheus.Counter
	recordsMalformed   prometheus.Counter
	recordsOutOfWindow prometheus.Counter
	recordsBotFiltered prometheus.Counter
	recordsDuplicate   prometheus.Counter

	// Classifier metrics
	eventsTagged    *prometheus.CounterVec
	eventsDiscarded prometheus.Counter

	// Run metrics - end-to-end pipeline health
	runsTotal       prometheus.Counter
	runsFailed      prometheus.Counter
	runDuration     prometheus.Histogram
	engineersRanked prometheus.Gauge
	engineersScored prometheus.Gauge

	// Worker metrics - fan-out performance
	chunkLatency prometheus.Histogram
	workerCount  prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "impactrank",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsNormalized = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_normalized_total",
		Help:      "Total number of raw records converted into contribution events",
	})

	m.recordsMalformed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_malformed_total",
		Help:      "Total number of raw records skipped due to missing or unparsable fields",
	})

	m.recordsOutOfWindow = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_out_of_window_total",
		Help:      "Total number of raw records filtered out for falling outside the analysis window",
	})

	m.recordsBotFiltered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_bot_filtered_total",
		Help:      "Total number of raw records dropped because the author is a configured bot",
	})

	m.recordsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_duplicate_total",
		Help:      "Total number of raw records dropped for reusing an already-seen record id",
	})

	m.eventsTagged = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_tagged_total",
		Help:      "Total number of category tags applied to contribution events",
	}, []string{"category"})

	m.eventsDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_discarded_total",
		Help:      "Total number of events excluded from aggregation for carrying zero tags",
	})

	m.runsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_total",
		Help:      "Total number of completed scoring runs",
	})

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of scoring runs aborted before producing a ranking",
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Histogram of end-to-end scoring run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.engineersRanked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engineers_ranked",
		Help:      "Number of engineers in the most recent ranked output",
	})

	m.engineersScored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "engineers_scored",
		Help:      "Number of distinct engineers with at least one classified event in the most recent run",
	})

	m.chunkLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chunk_latency_milliseconds",
		Help:      "Histogram of per-worker chunk fold latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of fan-out workers used by the most recent run",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.httpRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_rate_limited_total",
		Help:      "Total number of HTTP requests rejected by the per-client rate limiter",
	})
}

// Normalizer metrics helpers.

func RecordRecordNormalized()  { globalManager.recordsNormalized.Inc() }
func RecordRecordMalformed()   { globalManager.recordsMalformed.Inc() }
func RecordRecordOutOfWindow() { globalManager.recordsOutOfWindow.Inc() }
func RecordRecordBotFiltered() { globalManager.recordsBotFiltered.Inc() }
func RecordRecordDuplicate()   { globalManager.recordsDuplicate.Inc() }

// Classifier metrics helpers.

func RecordEventTagged(category string) {
	globalManager.eventsTagged.WithLabelValues(category).Inc()
}

func RecordEventDiscarded() { globalManager.eventsDiscarded.Inc() }

// Run metrics helpers.

func RecordRunCompleted() { globalManager.runsTotal.Inc() }
func RecordRunFailed()    { globalManager.runsFailed.Inc() }

func RecordRunDuration(durationMs float64) {
	globalManager.runDuration.Observe(durationMs)
}

func UpdateEngineersRanked(count int) {
	globalManager.engineersRanked.Set(float64(count))
}

func UpdateEngineersScored(count int) {
	globalManager.engineersScored.Set(float64(count))
}

// Worker metrics helpers.

func RecordChunkLatency(latencyMs float64) {
	globalManager.chunkLatency.Observe(latencyMs)
}

func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// HTTP metrics helpers.

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func RecordHTTPRateLimited() { globalManager.httpRateLimited.Inc() }

// GetRegistry returns the custom registry used by the global manager so the
// HTTP layer can expose it.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
