// Package metrics provides Prometheus metrics for the team picker service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// unfairnessBuckets cover 0..0.5, the whole range of the unfairness score.
var unfairnessBuckets = []float64{0, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// Manager owns every collector the service exports.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Room commands
	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec

	// Team search
	searchDuration   prometheus.Histogram
	bestUnfairness   prometheus.Histogram
	worstUnfairness  prometheus.Histogram
	matchesCommitted prometheus.Counter
	results          *prometheus.CounterVec
	ratingAdjusted   prometheus.Counter

	// Scale
	rooms        prometheus.Gauge
	participants prometheus.Gauge

	// Dispatcher
	queueDepth      *prometheus.GaugeVec
	queueRejected   *prometheus.CounterVec
	taskLatency     prometheus.Histogram
	shardCount      prometheus.Gauge
	duplicateInputs *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // package-level recorders need a singleton

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager. Collectors are registered on the
// configured registry, so each Manager needs its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "teampicker",
		subsystem:        "rooms",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		constLabels:      map[string]string{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// RefreshInterval reports how often gauges should be refreshed.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

func (m *Manager) opts(name, help string) (string, string, string, string, prometheus.Labels) {
	return m.namespace, m.subsystem, name, help, m.constLabels
}

func (m *Manager) counter(name, help string) prometheus.CounterOpts {
	ns, ss, n, h, l := m.opts(name, help)
	return prometheus.CounterOpts{Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: l}
}

func (m *Manager) gauge(name, help string) prometheus.GaugeOpts {
	ns, ss, n, h, l := m.opts(name, help)
	return prometheus.GaugeOpts{Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: l}
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.HistogramOpts {
	ns, ss, n, h, l := m.opts(name, help)
	return prometheus.HistogramOpts{Namespace: ns, Subsystem: ss, Name: n, Help: h, ConstLabels: l, Buckets: buckets}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.commands = auto.NewCounterVec(m.counter("commands_total", "Room commands by name and result"),
		[]string{"command", "result"})
	m.commandDuration = auto.NewHistogramVec(m.histogram("command_duration_milliseconds",
		"Room command latency in milliseconds, queueing included", m.histogramBuckets), []string{"command"})

	m.searchDuration = auto.NewHistogram(m.histogram("search_duration_milliseconds",
		"Time to enumerate, score and select team splits", m.histogramBuckets))
	m.bestUnfairness = auto.NewHistogram(m.histogram("candidate_best_unfairness",
		"Unfairness of the most balanced split per search", unfairnessBuckets))
	m.worstUnfairness = auto.NewHistogram(m.histogram("candidate_worst_unfairness",
		"Unfairness of the least balanced retained split per search", unfairnessBuckets))
	m.matchesCommitted = auto.NewCounter(m.counter("matches_committed_total", "Team splits locked in for play"))
	m.results = auto.NewCounterVec(m.counter("results_total", "Reported match results by outcome"),
		[]string{"outcome"})
	m.ratingAdjusted = auto.NewCounter(m.counter("rating_adjustments_total",
		"Individual participant rating changes from results and boosts"))

	m.rooms = auto.NewGauge(m.gauge("rooms", "Rooms currently held in memory"))
	m.participants = auto.NewGauge(m.gauge("participants", "Participants across all rooms"))

	m.queueDepth = auto.NewGaugeVec(m.gauge("dispatch_queue_depth", "Pending tasks per dispatcher shard"),
		[]string{"shard"})
	m.queueRejected = auto.NewCounterVec(m.counter("dispatch_rejected_total", "Tasks refused by a shard queue"),
		[]string{"reason"})
	m.taskLatency = auto.NewHistogram(m.histogram("dispatch_task_milliseconds",
		"Time a shard worker spends running one task", m.histogramBuckets))
	m.shardCount = auto.NewGauge(m.gauge("dispatch_shards", "Number of dispatcher shards"))
	m.duplicateInputs = auto.NewCounterVec(m.counter("duplicate_inputs_total",
		"Transport inputs dropped as already seen"), []string{"source"})

	m.httpRequests = auto.NewCounterVec(m.counter("http_requests_total", "HTTP requests by endpoint"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogram("http_request_duration_milliseconds",
		"HTTP request duration in milliseconds", m.histogramBuckets), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counter("http_errors_total", "HTTP errors by endpoint and type"),
		[]string{"endpoint", "method", "error_type"})
	m.errorsByComponent = auto.NewCounterVec(m.counter("component_errors_total", "Errors by component and type"),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gauge("system_memory_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gauge("system_goroutines", "Live goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogram("system_gc_pause_milliseconds",
		"Average GC pause in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100}))
}

// RecordCommand counts one room command and its latency.
func RecordCommand(command, result string, latencyMs float64) {
	globalManager.commands.WithLabelValues(command, result).Inc()
	globalManager.commandDuration.WithLabelValues(command).Observe(latencyMs)
}

// RecordSearch records one team search pass.
func RecordSearch(latencyMs, best, worst float64) {
	globalManager.searchDuration.Observe(latencyMs)
	globalManager.bestUnfairness.Observe(best)
	globalManager.worstUnfairness.Observe(worst)
}

// RecordMatchCommitted counts a committed match.
func RecordMatchCommitted() {
	globalManager.matchesCommitted.Inc()
}

// RecordResult counts a reported result.
func RecordResult(outcome string) {
	globalManager.results.WithLabelValues(outcome).Inc()
}

// RecordRatingAdjustments adds n rating changes.
func RecordRatingAdjustments(n int) {
	globalManager.ratingAdjusted.Add(float64(n))
}

// UpdateRooms sets the room gauge.
func UpdateRooms(n int) {
	globalManager.rooms.Set(float64(n))
}

// UpdateParticipants sets the participant gauge.
func UpdateParticipants(n int) {
	globalManager.participants.Set(float64(n))
}

// UpdateQueueDepth sets the pending task count of one shard.
func UpdateQueueDepth(shard string, n int) {
	globalManager.queueDepth.WithLabelValues(shard).Set(float64(n))
}

// RecordQueueRejected counts a refused task.
func RecordQueueRejected(reason string) {
	globalManager.queueRejected.WithLabelValues(reason).Inc()
}

// RecordTaskLatency observes how long a shard worker ran one task.
func RecordTaskLatency(latencyMs float64) {
	globalManager.taskLatency.Observe(latencyMs)
}

// UpdateShardCount sets the dispatcher shard gauge.
func UpdateShardCount(n int) {
	globalManager.shardCount.Set(float64(n))
}

// RecordDuplicateInput counts a deduplicated transport input.
func RecordDuplicateInput(source string) {
	globalManager.duplicateInputs.WithLabelValues(source).Inc()
}

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordHTTPError records an HTTP error by type.
func RecordHTTPError(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent counts an error raised inside a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the package-level recorders write to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
