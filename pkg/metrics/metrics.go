// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncTasksTotal tracks ledger sync task outcomes by entity kind
	SyncTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "tasks_total",
			Help:      "Total number of ledger sync tasks by entity kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// SyncTaskDuration tracks ledger sync task duration in seconds
	SyncTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "task_duration_seconds",
			Help:      "Duration of ledger sync tasks in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// SyncQueueDepth tracks tasks waiting in the dispatch queue
	SyncQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "queue_depth",
			Help:      "Number of sync tasks waiting in the dispatch queue",
		},
	)

	// LedgerSubmitsTotal tracks ledger submissions by contract function
	LedgerSubmitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "ledger",
			Name:      "submits_total",
			Help:      "Total number of ledger submissions by contract function and status",
		},
		[]string{"function", "status"},
	)

	// LedgerSubmitDuration tracks ledger submission duration
	LedgerSubmitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "ledger",
			Name:      "submit_duration_seconds",
			Help:      "Duration of ledger submissions in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"function"},
	)

	// HTTPRequestsTotal tracks outbound HTTP requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	// HTTPRequestDuration tracks outbound HTTP request duration
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Duration of outbound HTTP requests in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)

	// KafkaPublishDuration tracks Kafka publish duration
	KafkaPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "publish_duration_seconds",
			Help:      "Duration of Kafka publish operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		},
	)

	// AuthTokenRefreshes tracks gateway token refresh operations
	AuthTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "auth",
			Name:      "token_refreshes_total",
			Help:      "Total number of gateway token refresh operations",
		},
		[]string{"status"},
	)

	// TemperatureViolationsTotal tracks cold-chain violations detected
	TemperatureViolationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "coldchain",
			Name:      "violations_total",
			Help:      "Total number of temperature violations detected",
		},
	)
)

// RecordSyncTask records a ledger sync task outcome
func RecordSyncTask(kind, outcome string, durationSeconds float64) {
	SyncTasksTotal.WithLabelValues(kind, outcome).Inc()
	SyncTaskDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordLedgerSubmit records a ledger submission
func RecordLedgerSubmit(function, status string, durationSeconds float64) {
	LedgerSubmitsTotal.WithLabelValues(function, status).Inc()
	LedgerSubmitDuration.WithLabelValues(function).Observe(durationSeconds)
}

// RecordHTTPRequest records an outbound HTTP request metric
func RecordHTTPRequest(method, statusCode string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string, durationSeconds float64) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
	KafkaPublishDuration.Observe(durationSeconds)
}

// RecordTokenRefresh records a gateway token refresh
func RecordTokenRefresh(status string) {
	AuthTokenRefreshes.WithLabelValues(status).Inc()
}

// RecordTemperatureViolation records a detected cold-chain violation
func RecordTemperatureViolation() {
	TemperatureViolationsTotal.Inc()
}
