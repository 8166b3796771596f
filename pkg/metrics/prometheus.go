// Package metrics provides Prometheus metrics for the drowsiness detection service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// defaultRatioBuckets cover the usual EAR (0.1-0.35) and MAR (0.2-1.0) ranges.
var defaultRatioBuckets = []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.8, 1, 1.5}

// Known label values for the one-hot status and pose gauges.
var (
	statusLabels = []string{"Normal", "Drowsy", "Yawning"}
	poseLabels   = []string{
		"Facing Forward", "Nodding Down", "Looking Right",
		"Looking Left", "Tilting Left", "Tilting Right",
	}
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	ratioBuckets   []float64
	customLabels   map[string]string
	metricPrefix   string
	registry       prometheus.Registerer

	// Frame pipeline
	framesProcessed  prometheus.Counter
	framesNoFace     prometheus.Counter
	framesRejected   *prometheus.CounterVec
	framesDuplicate  prometheus.Counter
	frameLatency     prometheus.Histogram
	eyeAspectRatio   prometheus.Histogram
	mouthAspectRatio prometheus.Histogram

	// Classification state
	statusGauge     *prometheus.GaugeVec
	poseGauge       *prometheus.GaugeVec
	eyeClosedStreak prometheus.Gauge
	yawnStreak      prometheus.Gauge
	nightMode       prometheus.Gauge

	// Alerting
	alertsFired      *prometheus.CounterVec
	alertsSuppressed prometheus.Counter
	alertsDropped    prometheus.Counter
	logRecords       prometheus.Counter

	// Delivery
	deliveries       *prometheus.CounterVec
	deliveryLatency  *prometheus.HistogramVec
	workerActive     prometheus.Gauge
	workerProcessing prometheus.Histogram

	// Queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueErrors      prometheus.Counter

	// HTTP and live feed
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	liveClients         prometheus.Gauge

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "drowsy",
		subsystem:      "engine",
		latencyBuckets: prometheus.DefBuckets,
		ratioBuckets:   defaultRatioBuckets,
		customLabels:   make(map[string]string),
		registry:       prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric definition
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}

	m.framesProcessed = counter("frames_processed_total", "Total number of frames classified")
	m.framesNoFace = counter("frames_no_face_total", "Frames processed without a detected face")
	m.framesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("frames_rejected_total"),
		Help: "Frames rejected by input validation", ConstLabels: constLabels,
	}, []string{"reason"})
	m.framesDuplicate = counter("frames_duplicate_total", "Frames ignored because their id was already processed")
	m.frameLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("frame_latency_milliseconds"),
		Help: "Per-frame classification latency in milliseconds", ConstLabels: constLabels,
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 25},
	})
	m.eyeAspectRatio = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("eye_aspect_ratio"),
		Help: "Distribution of the averaged eye aspect ratio", ConstLabels: constLabels, Buckets: m.ratioBuckets,
	})
	m.mouthAspectRatio = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("mouth_aspect_ratio"),
		Help: "Distribution of the inner mouth aspect ratio", ConstLabels: constLabels, Buckets: m.ratioBuckets,
	})

	m.statusGauge = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("status"),
		Help: "Current driver status (1 for the active label)", ConstLabels: constLabels,
	}, []string{"status"})
	m.poseGauge = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("pose"),
		Help: "Current head pose (1 for the active label)", ConstLabels: constLabels,
	}, []string{"pose"})
	m.eyeClosedStreak = gauge("eye_closed_streak_frames", "Consecutive frames with eye aspect ratio under threshold")
	m.yawnStreak = gauge("yawn_streak_frames", "Consecutive frames with mouth aspect ratio over threshold")
	m.nightMode = gauge("night_mode", "1 when night mode is enabled")

	m.alertsFired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name("alerts_fired_total"),
		Help: "Alerts emitted by the alert policy", ConstLabels: constLabels,
	}, []string{"category"})
	m.alertsSuppressed = counter("alerts_suppressed_total", "Alert conditions held back by the cooldown")
	m.alertsDropped = counter("alerts_dropped_total", "Alerts not delivered because the delivery queue was full")
	m.logRecords = counter("log_records_total", "Alert log records produced")

	m.deliveries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "delivery", Name: m.name("attempts_total"),
		Help: "Alert delivery attempts by channel and outcome", ConstLabels: constLabels,
	}, []string{"channel", "outcome"})
	m.deliveryLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "delivery", Name: m.name("latency_milliseconds"),
		Help: "Alert delivery latency per channel", ConstLabels: constLabels,
		Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"channel"})
	m.workerActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "delivery", Name: m.name("workers_active"),
		Help: "Number of running delivery workers", ConstLabels: constLabels,
	})
	m.workerProcessing = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "delivery", Name: m.name("worker_processing_milliseconds"),
		Help: "Time a worker spends on one delivery", ConstLabels: constLabels, Buckets: m.latencyBuckets,
	})

	queueGauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: "queue", Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	queueCounter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: "queue", Name: m.name(name), Help: help, ConstLabels: constLabels,
		})
	}
	m.queueSize = queueGauge("size", "Current number of pending deliveries")
	m.queueCapacity = queueGauge("capacity", "Maximum number of pending deliveries")
	m.queueUtilization = queueGauge("utilization_ratio", "Queue size over capacity")
	m.queueEnqueued = queueCounter("enqueued_total", "Deliveries accepted by the queue")
	m.queueDequeued = queueCounter("dequeued_total", "Deliveries handed to workers")
	m.queueErrors = queueCounter("enqueue_errors_total", "Deliveries refused by the queue")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "http", Name: m.name("requests_total"),
		Help: "Total number of HTTP requests", ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "http", Name: m.name("request_duration_milliseconds"),
		Help: "HTTP request duration in milliseconds", ConstLabels: constLabels,
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method", "status_code"})
	m.liveClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "http", Name: m.name("live_clients"),
		Help: "Connected live feed clients", ConstLabels: constLabels,
	})

	m.errorRateByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "errors", Name: m.name("by_component_total"),
		Help: "Errors by component and type", ConstLabels: constLabels,
	}, []string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: "errors", Name: m.name("by_endpoint_total"),
		Help: "HTTP errors by endpoint", ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", Name: m.name("memory_bytes"),
		Help: "Allocated heap bytes", ConstLabels: constLabels,
	})
	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: "system", Name: m.name("goroutines"),
		Help: "Number of goroutines", ConstLabels: constLabels,
	})
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: "system", Name: m.name("gc_pause_milliseconds"),
		Help: "Average GC pause in milliseconds", ConstLabels: constLabels,
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
	})
}

// Frame pipeline.

// RecordFrameProcessed counts a classified frame.
func RecordFrameProcessed(faceDetected bool, latencyMs float64) {
	globalManager.framesProcessed.Inc()
	if !faceDetected {
		globalManager.framesNoFace.Inc()
	}
	globalManager.frameLatency.Observe(latencyMs)
}

// RecordFrameRejected counts a frame refused by validation.
func RecordFrameRejected(reason string) {
	globalManager.framesRejected.WithLabelValues(reason).Inc()
}

// RecordFrameDuplicate counts a frame skipped by the deduper.
func RecordFrameDuplicate() {
	globalManager.framesDuplicate.Inc()
}

// ObserveRatios records the eye and mouth aspect ratios of a frame with a face.
func ObserveRatios(ear, mar float64) {
	globalManager.eyeAspectRatio.Observe(ear)
	globalManager.mouthAspectRatio.Observe(mar)
}

// UpdateClassification sets the one-hot status and pose gauges and the streaks.
func UpdateClassification(status, pose string, eyeStreak, yawnStreak int) {
	for _, s := range statusLabels {
		globalManager.statusGauge.WithLabelValues(s).Set(boolToFloat(s == status))
	}
	for _, p := range poseLabels {
		globalManager.poseGauge.WithLabelValues(p).Set(boolToFloat(p == pose))
	}
	globalManager.eyeClosedStreak.Set(float64(eyeStreak))
	globalManager.yawnStreak.Set(float64(yawnStreak))
}

// UpdateNightMode records the night mode flag.
func UpdateNightMode(enabled bool) {
	globalManager.nightMode.Set(boolToFloat(enabled))
}

// Alerting.

// RecordAlertFired counts an emitted alert.
func RecordAlertFired(category string) {
	globalManager.alertsFired.WithLabelValues(category).Inc()
}

// RecordAlertsSuppressed counts alert conditions held back by the cooldown.
func RecordAlertsSuppressed(n int) {
	if n > 0 {
		globalManager.alertsSuppressed.Add(float64(n))
	}
}

// RecordAlertDropped counts an alert that could not be queued for delivery.
func RecordAlertDropped() {
	globalManager.alertsDropped.Inc()
}

// RecordLogRecord counts a produced alert log record.
func RecordLogRecord() {
	globalManager.logRecords.Inc()
}

// Delivery.

// RecordDelivery records one notifier attempt.
func RecordDelivery(channel string, ok bool, latencyMs float64) {
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	globalManager.deliveries.WithLabelValues(channel, outcome).Inc()
	globalManager.deliveryLatency.WithLabelValues(channel).Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of running delivery workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActive.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time spent on one delivery.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessing.Observe(latencyMs)
}

// Queue.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueErrors.Inc()
}

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateLiveClients sets the number of connected live feed clients.
func UpdateLiveClients(count int) {
	globalManager.liveClients.Set(float64(count))
}

// Errors.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

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

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
