package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ExportRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_requests_total",
			Help: "Total number of export requests by outcome (count)",
		},
		[]string{"event_type", "status"},
	)

	ExportStageTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_stage_transitions_total",
			Help: "Total number of export pipeline stage transitions (count)",
		},
		[]string{"stage"},
	)

	ExportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_duration_ms",
			Help:    "End-to-end export duration in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"status"},
	)

	ExportRows = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_rows",
			Help:    "Number of rows written per export (count)",
			Buckets: []float64{0, 10, 100, 1000, 10000, 50000, 100000},
		},
		[]string{"event_type"},
	)

	ExportSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_size_bytes",
			Help:    "Size of encoded CSV documents in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000, 50000000},
		},
		[]string{"event_type"},
	)

	ExportSideEffectFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_side_effect_failures_total",
			Help: "Total number of failed best-effort export side effects (count)",
		},
		[]string{"effect"},
	)

	FolderCacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folder_cache_requests_total",
			Help: "Total number of readable-folder cache lookups (count)",
		},
		[]string{"result"},
	)

	PlanReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_reloads_total",
			Help: "Total number of plan retention reloads (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"operation"},
	)

	KafkaMessagesWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_written_total",
			Help: "Total number of messages written to Kafka (count)",
		},
		[]string{"topic"},
	)

	KafkaMessageSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_message_size_bytes",
			Help:    "Size of Kafka messages in bytes",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000, 100000, 500000},
		},
		[]string{"topic"},
	)

	KafkaWriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kafka_write_duration_ms",
			Help:    "Duration of writing messages to Kafka in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"topic"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)

	DatabaseConnectionsActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_connections_active",
			Help: "Number of active database connections (count)",
		},
		[]string{"database"},
	)
)

func RegisterExportMetrics() {
	prometheus.MustRegister(ExportRequestsTotal)
	prometheus.MustRegister(ExportStageTransitionsTotal)
	prometheus.MustRegister(ExportDuration)
	prometheus.MustRegister(ExportRows)
	prometheus.MustRegister(ExportSizeBytes)
	prometheus.MustRegister(ExportSideEffectFailuresTotal)
	prometheus.MustRegister(FolderCacheRequestsTotal)
	prometheus.MustRegister(PlanReloadsTotal)
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DatabaseQueriesTotal)
	prometheus.MustRegister(DatabaseQueryDuration)
	prometheus.MustRegister(DatabaseConnectionsActive)
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(KafkaMessagesWrittenTotal)
	prometheus.MustRegister(KafkaMessageSizeBytes)
	prometheus.MustRegister(KafkaWriteDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func IncExportRequest(eventType, status string) {
	ExportRequestsTotal.WithLabelValues(eventType, status).Inc()
}

func IncExportStage(stage string) {
	ExportStageTransitionsTotal.WithLabelValues(stage).Inc()
}

func ObserveExportDuration(duration time.Duration, status string) {
	ExportDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveExportRows(eventType string, rows int) {
	ExportRows.WithLabelValues(eventType).Observe(float64(rows))
}

func ObserveExportSize(eventType string, sizeBytes int) {
	ExportSizeBytes.WithLabelValues(eventType).Observe(float64(sizeBytes))
}

func IncExportSideEffectFailure(effect string) {
	ExportSideEffectFailuresTotal.WithLabelValues(effect).Inc()
}

func IncFolderCacheRequest(result string) {
	FolderCacheRequestsTotal.WithLabelValues(result).Inc()
}

func IncPlanReload(status string) {
	PlanReloadsTotal.WithLabelValues(status).Inc()
}

func IncRetryAttempt(operation string) {
	RetryAttemptsTotal.WithLabelValues(operation).Inc()
}

func IncKafkaMessagesWritten(topic string) {
	KafkaMessagesWrittenTotal.WithLabelValues(topic).Inc()
}

func ObserveKafkaMessageSize(topic string, sizeBytes int) {
	KafkaMessageSizeBytes.WithLabelValues(topic).Observe(float64(sizeBytes))
}

func ObserveKafkaWriteDuration(topic string, duration time.Duration) {
	KafkaWriteDuration.WithLabelValues(topic).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
}

func ObserveDatabaseQueryDuration(database, operation string, duration time.Duration) {
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(duration.Milliseconds()))
}

func SetDatabaseConnectionsActive(database string, count int) {
	DatabaseConnectionsActive.WithLabelValues(database).Set(float64(count))
}
