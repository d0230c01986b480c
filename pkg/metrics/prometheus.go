// Package metrics provides Prometheus metrics for the FIKA matching service.
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

// Manager manages all Prometheus metrics for the FIKA service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a matching service
	cyclesTotal     prometheus.Counter
	cycleFailures   prometheus.Counter
	cycleDuration   prometheus.Histogram
	eligibleMembers prometheus.Gauge
	pairingsCreated prometheus.Counter
	trioGroups      prometheus.Counter

	// Lifecycle Metrics
	transitions *prometheus.CounterVec

	// Notification Metrics
	notificationsSent    *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	remindersSent        prometheus.Counter

	// Business Quality Metrics
	pairingInsertErrors prometheus.Counter
	tickErrors          *prometheus.CounterVec

	// Repository Metrics
	repositoryQueryLatency  prometheus.Histogram
	repositoryUpdateLatency prometheus.Histogram

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
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
		namespace:        "fika",
		subsystem:        "matching",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.cyclesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycles_total",
		Help:      "Total number of matching cycles run",
	})

	m.cycleFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_failures_total",
		Help:      "Total number of matching cycles aborted by a dependency failure",
	})

	m.cycleDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cycle_duration_milliseconds",
		Help:      "Histogram of matching cycle duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.eligibleMembers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "eligible_members",
		Help:      "Number of members eligible in the most recent matching cycle",
	})

	m.pairingsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairings_created_total",
		Help:      "Total number of pairings persisted as pending",
	})

	m.trioGroups = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "trio_groups_total",
		Help:      "Total number of leftover three-way groups emitted",
	})

	// Lifecycle Metrics
	m.transitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "transitions_total",
			Help:      "Total number of pairing status transitions by target status",
		},
		[]string{"status"},
	)

	// Notification Metrics
	m.notificationsSent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "notifications_sent_total",
			Help:      "Total number of notifications delivered by kind",
		},
		[]string{"kind"},
	)

	m.notificationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "notification_failures_total",
			Help:      "Total number of notification delivery failures by kind",
		},
		[]string{"kind"},
	)

	m.remindersSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reminders_sent_total",
		Help:      "Total number of pending-pairing reminder passes completed",
	})

	// Business Quality Metrics
	m.pairingInsertErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pairing_insert_errors_total",
		Help:      "Total number of failed pairing inserts (other pairs proceed)",
	})

	m.tickErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "tick_errors_total",
			Help:      "Total number of scheduler tick failures by tick kind",
		},
		[]string{"tick"},
	)

	// Repository Metrics
	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Repository query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_milliseconds",
		Help:      "Repository update operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// System Performance Metrics
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordCycleRun increments the cycle counter and records its duration.
func RecordCycleRun(durationMs float64) {
	globalManager.cyclesTotal.Inc()
	globalManager.cycleDuration.Observe(durationMs)
}

// RecordCycleFailure increments the cycle failure counter.
func RecordCycleFailure() {
	globalManager.cycleFailures.Inc()
}

// UpdateEligibleMembers sets the eligible member gauge for the latest cycle.
func UpdateEligibleMembers(count int) {
	globalManager.eligibleMembers.Set(float64(count))
}

// RecordPairingCreated increments the pairings created counter.
func RecordPairingCreated() {
	globalManager.pairingsCreated.Inc()
}

// RecordTrioGroup increments the trio group counter.
func RecordTrioGroup() {
	globalManager.trioGroups.Inc()
}

// RecordTransition increments the transition counter for the target status.
func RecordTransition(status string) {
	globalManager.transitions.WithLabelValues(status).Inc()
}

// RecordNotificationSent increments the sent counter for a notification kind.
func RecordNotificationSent(kind string) {
	globalManager.notificationsSent.WithLabelValues(kind).Inc()
}

// RecordNotificationFailure increments the failure counter for a notification kind.
func RecordNotificationFailure(kind string) {
	globalManager.notificationFailures.WithLabelValues(kind).Inc()
}

// RecordReminderPass increments the reminder pass counter.
func RecordReminderPass() {
	globalManager.remindersSent.Inc()
}

// RecordPairingInsertError increments the pairing insert error counter.
func RecordPairingInsertError() {
	globalManager.pairingInsertErrors.Inc()
}

// RecordTickError increments the tick error counter for a tick kind.
func RecordTickError(tick string) {
	globalManager.tickErrors.WithLabelValues(tick).Inc()
}

// RecordRepositoryQueryLatency records repository query latency in milliseconds.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// RecordRepositoryUpdateLatency records repository update latency in milliseconds.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
