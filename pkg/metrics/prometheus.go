// Package metrics provides Prometheus metrics for the calcio match simulator.
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

// Manager manages all Prometheus metrics for the calcio service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a simulator
	matchesStarted   prometheus.Counter
	matchesCompleted prometheus.Counter
	eventsEmitted    *prometheus.CounterVec
	goalsPerMatch    prometheus.Histogram
	tacticChanges    prometheus.Counter

	// Operational Health Metrics
	activeSessions  prometheus.Gauge
	streamsOpen     prometheus.Gauge
	generateLatency prometheus.Histogram
	streamDuration  *prometheus.HistogramVec

	// Registry Metrics - Session store shard management
	registryShardCount       prometheus.Gauge
	registrySessionsTotal    prometheus.Gauge
	registrySessionsPerShard *prometheus.GaugeVec
	registryUpdateLatency    prometheus.Histogram
	registryQueryLatency     prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge

	// Business Quality Metrics
	configurationErrors prometheus.Counter
	stateErrors         prometheus.Counter
	enrichmentFallbacks prometheus.Counter

	// Enhanced Error Metrics - Detailed error tracking
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

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "calcio",
		subsystem:        "simulator",
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
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Core Business Metrics
	m.matchesStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_started_total",
		Help:      "Total number of match sessions created",
	})

	m.matchesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_completed_total",
		Help:      "Total number of matches streamed through to full-time",
	})

	m.eventsEmitted = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "events_emitted_total",
			Help:      "Total number of match events emitted by event type",
		},
		[]string{"event_type"},
	)

	m.goalsPerMatch = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "goals_per_match",
		Help:      "Distribution of total goals per completed match",
		Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 8, 10},
	})

	m.tacticChanges = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tactic_changes_total",
		Help:      "Total number of mid-match tactic changes applied",
	})

	// Operational Health Metrics
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_sessions",
		Help:      "Current number of live match sessions (backlog indicator)",
	})

	m.streamsOpen = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "streams_open",
		Help:      "Current number of open half streams",
	})

	m.generateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "half_generation_latency_milliseconds",
		Help:      "Histogram of half timeline generation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.streamDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "half_stream_duration_seconds",
			Help:      "Wall-clock duration of streamed halves in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"half"},
	)

	// Registry Metrics - Session store shard management
	m.registryShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_shard_count",
		Help:      "Total number of session registry shards",
	})

	m.registrySessionsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_sessions_total",
		Help:      "Total number of sessions across all shards",
	})

	m.registrySessionsPerShard = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "registry_sessions_per_shard",
			Help:      "Number of sessions per shard",
		},
		[]string{"shard_id"},
	)

	m.registryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_update_latency_milliseconds",
		Help:      "Session registry update operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.registryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_query_latency_milliseconds",
		Help:      "Session registry query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_in_flight",
		Help:      "Current number of in-flight HTTP requests (streams included)",
	})

	// Business Quality Metrics
	m.configurationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "configuration_errors_total",
		Help:      "Total number of rejected match setups (unknown tactic, bad attributes)",
	})

	m.stateErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "state_errors_total",
		Help:      "Total number of out-of-order session calls rejected",
	})

	m.enrichmentFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "enrichment_fallbacks_total",
		Help:      "Total number of events emitted with fallback descriptions",
	})

	// Enhanced Error Metrics
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

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

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// RecordMatchStarted increments the matches started counter.
func RecordMatchStarted() {
	globalManager.matchesStarted.Inc()
}

// RecordMatchCompleted increments the matches completed counter.
func RecordMatchCompleted() {
	globalManager.matchesCompleted.Inc()
}

// RecordEventEmitted increments the emitted-events counter for an event type.
func RecordEventEmitted(eventType string) {
	globalManager.eventsEmitted.WithLabelValues(eventType).Inc()
}

// RecordGoalsPerMatch observes the total goals of a completed match.
func RecordGoalsPerMatch(goals int) {
	globalManager.goalsPerMatch.Observe(float64(goals))
}

// RecordTacticChange increments the tactic changes counter.
func RecordTacticChange() {
	globalManager.tacticChanges.Inc()
}

// UpdateActiveSessions sets the current number of live sessions.
func UpdateActiveSessions(count int) {
	globalManager.activeSessions.Set(float64(count))
}

// IncStreamsOpen increments the open-streams gauge.
func IncStreamsOpen() {
	globalManager.streamsOpen.Inc()
}

// DecStreamsOpen decrements the open-streams gauge.
func DecStreamsOpen() {
	globalManager.streamsOpen.Dec()
}

// RecordGenerateLatency records half timeline generation latency in milliseconds.
func RecordGenerateLatency(latencyMs float64) {
	globalManager.generateLatency.Observe(latencyMs)
}

// RecordStreamDuration records the wall-clock duration of a streamed half.
func RecordStreamDuration(half string, seconds float64) {
	globalManager.streamDuration.WithLabelValues(half).Observe(seconds)
}

// Registry Metrics Functions.

// UpdateRegistryShardCount sets the total number of registry shards.
func UpdateRegistryShardCount(count int) {
	globalManager.registryShardCount.Set(float64(count))
}

// UpdateRegistrySessionsTotal sets the total number of sessions across all shards.
func UpdateRegistrySessionsTotal(count int) {
	globalManager.registrySessionsTotal.Set(float64(count))
}

// UpdateRegistrySessionsPerShard sets the number of sessions for a specific shard.
func UpdateRegistrySessionsPerShard(shardID string, count int) {
	globalManager.registrySessionsPerShard.WithLabelValues(shardID).Set(float64(count))
}

// RecordRegistryUpdateLatency records registry update operation latency.
func RecordRegistryUpdateLatency(latencyMs float64) {
	globalManager.registryUpdateLatency.Observe(latencyMs)
}

// RecordRegistryQueryLatency records registry query operation latency.
func RecordRegistryQueryLatency(latencyMs float64) {
	globalManager.registryQueryLatency.Observe(latencyMs)
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

// IncHTTPInFlight increments the in-flight request gauge.
func IncHTTPInFlight() {
	globalManager.httpInFlight.Inc()
}

// DecHTTPInFlight decrements the in-flight request gauge.
func DecHTTPInFlight() {
	globalManager.httpInFlight.Dec()
}

// Error Metrics Functions.

// RecordConfigurationError increments the configuration errors counter.
func RecordConfigurationError() {
	globalManager.configurationErrors.Inc()
}

// RecordStateError increments the state errors counter.
func RecordStateError() {
	globalManager.stateErrors.Inc()
}

// RecordEnrichmentFallback increments the enrichment fallbacks counter.
func RecordEnrichmentFallback() {
	globalManager.enrichmentFallbacks.Inc()
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
