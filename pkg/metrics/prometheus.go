// Package metrics provides Prometheus metrics for the DNA encoding engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Hot path
	strokesEncoded   prometheus.Counter
	hotLatency       prometheus.Histogram
	budgetViolations prometheus.Counter

	// Cold path
	coldLatency  *prometheus.HistogramVec
	coldTasks    *prometheus.CounterVec
	taskFailures prometheus.Counter

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueRejections  prometheus.Counter

	// Workers
	workerActive prometheus.Gauge
	workerBusy   prometheus.Gauge

	// Storage
	storageLatency *prometheus.HistogramVec
	storageErrors  *prometheus.CounterVec

	// Sessions
	activeSessions prometheus.Gauge
}

// Hot-path latencies sit well under a millisecond; the default buckets start
// at 5ms and would flatten everything into the first bucket.
var latencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 16, 25, 50, 100, 250}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dna",
		subsystem:        "engine",
		histogramBuckets: latencyBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.strokesEncoded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "strokes_encoded_total",
		Help:      "Total number of strokes encoded on the hot path",
	})

	m.hotLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hot_encode_latency_milliseconds",
		Help:      "Histogram of synchronous stroke-encoding latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.budgetViolations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "budget_violations_total",
		Help:      "Total number of hot-path encodings that exceeded the latency budget",
	})

	m.coldLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cold_encode_latency_milliseconds",
			Help:      "Histogram of asynchronous encoding latency in milliseconds by tier",
			Buckets:   m.histogramBuckets,
		},
		[]string{"tier"},
	)

	m.coldTasks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cold_tasks_total",
			Help:      "Total number of cold-path tasks by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	m.taskFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "task_failures_total",
		Help:      "Total number of cold-path tasks that failed or crashed",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued cold-path tasks",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the cold-path task queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization (size / capacity)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of tasks enqueued",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of tasks dequeued",
	})

	m.queueRejections = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_rejections_total",
		Help:      "Total number of tasks rejected because the queue was full or closed",
	})

	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of workers in the pool",
	})

	m.workerBusy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_busy_count",
		Help:      "Number of workers currently executing a task",
	})

	m.storageLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "storage_op_latency_milliseconds",
			Help:      "Storage operation latency in milliseconds by operation and backend",
			Buckets:   m.histogramBuckets,
		},
		[]string{"op", "backend"},
	)

	m.storageErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "storage_errors_total",
			Help:      "Total number of storage operation errors by backend",
		},
		[]string{"backend"},
	)

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Number of sessions currently owned by a pipeline",
	})
}

// RecordStrokeEncoded increments the strokes encoded counter.
func RecordStrokeEncoded() {
	globalManager.strokesEncoded.Inc()
}

// RecordHotLatency records hot-path encoding latency in milliseconds.
func RecordHotLatency(ms float64) {
	globalManager.hotLatency.Observe(ms)
}

// RecordBudgetViolation increments the budget violations counter.
func RecordBudgetViolation() {
	globalManager.budgetViolations.Inc()
}

// RecordColdLatency records cold-path encoding latency for a tier, in
// milliseconds.
func RecordColdLatency(tier string, ms float64) {
	globalManager.coldLatency.WithLabelValues(tier).Observe(ms)
}

// RecordColdTask counts a completed cold task by tier and outcome.
func RecordColdTask(tier, outcome string) {
	globalManager.coldTasks.WithLabelValues(tier, outcome).Inc()
}

// RecordTaskFailure increments the failed tasks counter.
func RecordTaskFailure() {
	globalManager.taskFailures.Inc()
}

// UpdateQueueSize sets the current queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(ratio float64) {
	globalManager.queueUtilization.Set(ratio)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueRejection increments the rejected enqueue counter.
func RecordQueueRejection() {
	globalManager.queueRejections.Inc()
}

// UpdateWorkerActiveCount sets the number of running workers.
func UpdateWorkerActiveCount(n int) {
	globalManager.workerActive.Set(float64(n))
}

// UpdateWorkerBusyCount sets the number of workers executing a task.
func UpdateWorkerBusyCount(n int) {
	globalManager.workerBusy.Set(float64(n))
}

// RecordStorageOpLatency records a storage operation's latency in
// milliseconds, labeled by operation and backend.
func RecordStorageOpLatency(op, backend string, ms float64) {
	globalManager.storageLatency.WithLabelValues(op, backend).Observe(ms)
}

// RecordStorageError counts a storage error for a backend.
func RecordStorageError(backend string) {
	globalManager.storageErrors.WithLabelValues(backend).Inc()
}

// UpdateActiveSessions sets the number of live sessions.
func UpdateActiveSessions(n int) {
	globalManager.activeSessions.Set(float64(n))
}

// GetRegistry returns the custom registry used by the global manager, for
// exposing a scrape endpoint.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
