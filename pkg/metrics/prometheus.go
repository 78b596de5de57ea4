// Package metrics provides Prometheus metrics for the co-lending allocation service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the allocation service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Allocation outcomes
	allocationsTotal    prometheus.Counter
	allocationsRejected prometheus.Counter
	allocationLatency   prometheus.Histogram

	// Batch processing
	batchItemsOK     prometheus.Counter
	batchItemsFailed prometheus.Counter
	batchDuration    prometheus.Histogram

	// Approval-rate cache
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	// Operational gauges
	partnershipCount prometheus.Gauge
	workerCount      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "colend",
		subsystem:        "allocator",
		histogramBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
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

	m.allocationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocations_total",
		Help:      "Total number of loans allocated to a partner",
	})

	m.allocationsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocations_rejected_total",
		Help:      "Total number of allocation calls that found no eligible partner",
	})

	m.allocationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "allocation_latency_milliseconds",
		Help:      "Histogram of end-to-end allocation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.batchItemsOK = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_items_ok_total",
		Help:      "Total number of batch items that produced a valid allocation",
	})

	m.batchItemsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_items_failed_total",
		Help:      "Total number of batch items that failed with a per-item error",
	})

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_milliseconds",
		Help:      "Histogram of whole-batch processing duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "approval_cache_hits_total",
		Help:      "Total number of approval-rate cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "approval_cache_misses_total",
		Help:      "Total number of approval-rate cache misses",
	})

	m.partnershipCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "partnership_count",
		Help:      "Number of partnerships currently registered",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_worker_count",
		Help:      "Number of batch workers configured",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "Histogram of HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)
}

// RecordAllocation increments the successful allocations counter.
func RecordAllocation() {
	globalManager.allocationsTotal.Inc()
}

// RecordAllocationRejected increments the rejected allocations counter.
func RecordAllocationRejected() {
	globalManager.allocationsRejected.Inc()
}

// RecordAllocationLatency records allocation latency in milliseconds.
func RecordAllocationLatency(latencyMs float64) {
	globalManager.allocationLatency.Observe(latencyMs)
}

// RecordBatchItemOK increments the successful batch items counter.
func RecordBatchItemOK() {
	globalManager.batchItemsOK.Inc()
}

// RecordBatchItemFailed increments the failed batch items counter.
func RecordBatchItemFailed() {
	globalManager.batchItemsFailed.Inc()
}

// RecordBatchDuration records whole-batch duration in milliseconds.
func RecordBatchDuration(latencyMs float64) {
	globalManager.batchDuration.Observe(latencyMs)
}

// RecordCacheHit increments the approval-rate cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the approval-rate cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// UpdatePartnershipCount sets the registered partnership count.
func UpdatePartnershipCount(count int) {
	globalManager.partnershipCount.Set(float64(count))
}

// UpdateWorkerCount sets the configured batch worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
