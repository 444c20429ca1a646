// Package metrics provides Prometheus metrics for the pzwatch tracker.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cycle and delivery result labels.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultRejected = "rejected"
	ResultSkipped  = "skipped"
)

// Manager manages all Prometheus metrics for the tracker.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Poll loop
	cycles              *prometheus.CounterVec
	cycleDuration       prometheus.Histogram
	consecutiveFailures prometheus.Gauge

	// Tail reader
	tailBytes    prometheus.Counter
	logRotations prometheus.Counter
	cursorOffset *prometheus.GaugeVec

	// Event pipeline
	eventsProcessed *prometheus.CounterVec
	eventsDuplicate prometheus.Counter
	decodeErrors    *prometheus.CounterVec
	handlerErrors   *prometheus.CounterVec

	// Notifications
	notifications        *prometheus.CounterVec
	notifierBreakerState prometheus.Gauge
	reportsSent          *prometheus.CounterVec
	notifyQueueDepth     prometheus.Gauge
	notifyQueueDropped   *prometheus.CounterVec

	// Persistence
	snapshotSaves        *prometheus.CounterVec
	snapshotSaveDuration prometheus.Histogram
	trackedPlayers       prometheus.Gauge

	// Status API
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "pzwatch",
		subsystem:        "tracker",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		// Collectors still accept observations but are never exposed.
		m.registry = prometheus.NewRegistry()
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	return m.metricPrefix + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.cycles = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cycles_total"),
		Help:        "Poll cycles by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cycle_duration_milliseconds"),
		Help:        "Duration of one tail-and-process pass in milliseconds",
		Buckets:     []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		ConstLabels: labels,
	})

	m.consecutiveFailures = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("consecutive_failures"),
		Help:        "Current run of failed poll cycles (drives backoff)",
		ConstLabels: labels,
	})

	m.tailBytes = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("tail_bytes_total"),
		Help:        "Bytes consumed from the remote event log",
		ConstLabels: labels,
	})

	m.logRotations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("log_rotations_total"),
		Help:        "Times the remote log shrank below the stored cursor",
		ConstLabels: labels,
	})

	m.cursorOffset = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("cursor_offset_bytes"),
		Help:        "Last consumed byte offset per log",
		ConstLabels: labels,
	}, []string{"log"})

	m.eventsProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_processed_total"),
		Help:        "Events accepted by the router, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("events_duplicate_total"),
		Help:        "Events suppressed by the dedup window",
		ConstLabels: labels,
	})

	m.decodeErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("decode_errors_total"),
		Help:        "Log lines that could not be decoded, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.handlerErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("handler_errors_total"),
		Help:        "Decoded events rejected by their handler, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.notifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("notifications_total"),
		Help:        "Notification deliveries by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.notifierBreakerState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("notifier_breaker_state"),
		Help:        "Webhook circuit breaker state (0=closed, 1=half-open, 2=open)",
		ConstLabels: labels,
	})

	m.reportsSent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("reports_sent_total"),
		Help:        "Scheduled report batches emitted, by schedule",
		ConstLabels: labels,
	}, []string{"schedule"})

	m.notifyQueueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("notify_queue_depth"),
		Help:        "Notifications waiting for delivery",
		ConstLabels: labels,
	})

	m.notifyQueueDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("notify_queue_dropped_total"),
		Help:        "Notifications refused by the delivery queue, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.snapshotSaves = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_saves_total"),
		Help:        "State snapshot writes by result",
		ConstLabels: labels,
	}, []string{"result"})

	m.snapshotSaveDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("snapshot_save_duration_milliseconds"),
		Help:        "State snapshot write duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	})

	m.trackedPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("tracked_players"),
		Help:        "Number of players with aggregate state",
		ConstLabels: labels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_requests_total"),
		Help:        "Status API requests by endpoint, method and status code",
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("http_request_duration_milliseconds"),
		Help:        "Status API request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordCycle counts a poll cycle and observes its duration.
func RecordCycle(result string, took time.Duration) {
	globalManager.cycles.WithLabelValues(result).Inc()
	globalManager.cycleDuration.Observe(float64(took.Milliseconds()))
}

// UpdateConsecutiveFailures sets the current failure streak.
func UpdateConsecutiveFailures(n int) {
	globalManager.consecutiveFailures.Set(float64(n))
}

// RecordTailBytes adds consumed bytes.
func RecordTailBytes(n int) {
	globalManager.tailBytes.Add(float64(n))
}

// RecordLogRotation increments the rotation counter.
func RecordLogRotation() {
	globalManager.logRotations.Inc()
}

// UpdateCursorOffset sets the stored offset for a log.
func UpdateCursorOffset(logID string, offset uint64) {
	globalManager.cursorOffset.WithLabelValues(logID).Set(float64(offset))
}

// RecordEventProcessed increments the processed counter for kind.
func RecordEventProcessed(kind string) {
	globalManager.eventsProcessed.WithLabelValues(kind).Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordDecodeError increments the decode error counter.
func RecordDecodeError(reason string) {
	globalManager.decodeErrors.WithLabelValues(reason).Inc()
}

// RecordHandlerError increments the handler error counter for kind.
func RecordHandlerError(kind string) {
	globalManager.handlerErrors.WithLabelValues(kind).Inc()
}

// RecordNotification counts a delivery attempt by result.
func RecordNotification(result string) {
	globalManager.notifications.WithLabelValues(result).Inc()
}

// UpdateNotifierBreakerState sets the breaker state gauge.
func UpdateNotifierBreakerState(state float64) {
	globalManager.notifierBreakerState.Set(state)
}

// RecordReportSent counts an emitted scheduled report batch.
func RecordReportSent(schedule string) {
	globalManager.reportsSent.WithLabelValues(schedule).Inc()
}

// UpdateNotifyQueueDepth sets the pending notification gauge.
func UpdateNotifyQueueDepth(n int) {
	globalManager.notifyQueueDepth.Set(float64(n))
}

// RecordNotifyQueueDropped counts a notification the queue refused.
func RecordNotifyQueueDropped(reason string) {
	globalManager.notifyQueueDropped.WithLabelValues(reason).Inc()
}

// RecordSnapshotSave counts a snapshot write and observes its duration.
func RecordSnapshotSave(result string, took time.Duration) {
	globalManager.snapshotSaves.WithLabelValues(result).Inc()
	globalManager.snapshotSaveDuration.Observe(float64(took.Milliseconds()))
}

// UpdateTrackedPlayers sets the tracked player gauge.
func UpdateTrackedPlayers(n int) {
	globalManager.trackedPlayers.Set(float64(n))
}

// RecordHTTPRequest records a status API request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records status API request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
