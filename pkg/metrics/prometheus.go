// Package metrics provides Prometheus metrics for the linguistic profile service.
package metrics

import (
	"runtime"

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

	// Scoring and analysis
	conversions    *prometheus.CounterVec
	analyses       prometheus.Counter
	emptyAnalyses  prometheus.Counter
	hypotheses     *prometheus.CounterVec
	analysisMillis prometheus.Histogram

	// Rendering
	renderFrames      prometheus.Counter
	renderDuration    prometheus.Histogram
	renderTransitions *prometheus.CounterVec

	// Persistence
	caseOperations *prometheus.CounterVec
	storeLatency   *prometheus.HistogramVec
	casesStored    prometheus.Gauge

	// Export jobs
	exports          *prometheus.CounterVec
	exportsDuplicate prometheus.Counter
	exportLatency    prometheus.Histogram
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueRejected    prometheus.Counter
	workerActive     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lingprofile",
		subsystem:        "core",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// NewMetricsManager is an alias of NewManager.
func NewMetricsManager(opts ...Option) *Manager { return NewManager(opts...) }

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.conversions = m.counterVec("conversions_total", "Raw score conversions by scale and outcome", "scale", "result")
	m.analyses = m.counter("analyses_total", "Clinical analyses computed")
	m.emptyAnalyses = m.counter("analyses_empty_total", "Analyses requested on a fully unscored vector")
	m.hypotheses = m.counterVec("hypotheses_total", "Hypotheses emitted by name", "name")
	m.analysisMillis = m.histogram("analysis_duration_milliseconds", "Analysis duration in milliseconds")

	m.renderFrames = m.counter("render_frames_total", "Radar frames drawn")
	m.renderDuration = m.histogram("render_duration_milliseconds", "Radar frame draw duration in milliseconds")
	m.renderTransitions = m.counterVec("render_transitions_total", "Radar animations started by kind", "kind")

	m.caseOperations = m.counterVec("case_operations_total", "Case store operations by operation and status", "operation", "status")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Store operation latency in milliseconds", "operation")
	m.casesStored = m.gauge("cases_stored", "Cases currently held by the store")

	m.exports = m.counterVec("exports_total", "Documents exported by format and status", "format", "status")
	m.exportsDuplicate = m.counter("exports_duplicate_total", "Export jobs dropped as duplicates")
	m.exportLatency = m.histogram("export_duration_milliseconds", "Export job duration in milliseconds")
	m.queueSize = m.gauge("export_queue_size", "Current export queue backlog")
	m.queueCapacity = m.gauge("export_queue_capacity", "Export queue capacity")
	m.queueEnqueued = m.counter("export_queue_enqueued_total", "Export jobs enqueued")
	m.queueDequeued = m.counter("export_queue_dequeued_total", "Export jobs dequeued")
	m.queueRejected = m.counter("export_queue_rejected_total", "Export jobs rejected by a full or closed queue")
	m.workerActive = m.gauge("export_workers_active", "Export workers currently running")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap bytes in use")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of goroutines")
}

// RecordConversion counts a raw score conversion. result is "ok" or "null".
func RecordConversion(scale, result string) {
	if globalManager.enabled {
		globalManager.conversions.WithLabelValues(scale, result).Inc()
	}
}

// RecordAnalysis counts an analysis and its duration. empty marks a nil result.
func RecordAnalysis(durationMs float64, empty bool) {
	if !globalManager.enabled {
		return
	}
	if empty {
		globalManager.emptyAnalyses.Inc()
		return
	}
	globalManager.analyses.Inc()
	globalManager.analysisMillis.Observe(durationMs)
}

// RecordHypothesis counts an emitted hypothesis.
func RecordHypothesis(name string) {
	if globalManager.enabled {
		globalManager.hypotheses.WithLabelValues(name).Inc()
	}
}

// RecordRenderFrame counts a drawn radar frame.
func RecordRenderFrame(durationMs float64) {
	if globalManager.enabled {
		globalManager.renderFrames.Inc()
		globalManager.renderDuration.Observe(durationMs)
	}
}

// RecordRenderTransition counts a started animation ("full" or "single").
func RecordRenderTransition(kind string) {
	if globalManager.enabled {
		globalManager.renderTransitions.WithLabelValues(kind).Inc()
	}
}

// RecordCaseOperation counts a store operation and its latency.
func RecordCaseOperation(operation, status string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.caseOperations.WithLabelValues(operation, status).Inc()
		globalManager.storeLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// UpdateCasesStored sets the number of stored cases.
func UpdateCasesStored(n int) {
	if globalManager.enabled {
		globalManager.casesStored.Set(float64(n))
	}
}

// RecordExport counts a finished export and its duration.
func RecordExport(format, status string, durationMs float64) {
	if globalManager.enabled {
		globalManager.exports.WithLabelValues(format, status).Inc()
		globalManager.exportLatency.Observe(durationMs)
	}
}

// RecordExportDuplicate counts an export job dropped by the deduper.
func RecordExportDuplicate() {
	if globalManager.enabled {
		globalManager.exportsDuplicate.Inc()
	}
}

// UpdateQueueSize sets the current queue backlog.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError increments the rejected counter.
func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueRejected.Inc()
	}
}

// UpdateWorkerActiveCount sets the number of running export workers.
func UpdateWorkerActiveCount(count int) {
	if globalManager.enabled {
		globalManager.workerActive.Set(float64(count))
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMetrics samples heap usage and goroutine count.
func UpdateSystemMetrics() {
	if !globalManager.enabled {
		return
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	globalManager.systemMemoryUsage.Set(float64(ms.HeapInuse))
	globalManager.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
