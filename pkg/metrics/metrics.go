package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	PlanCreatedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_created_count",
			Help: "Total number of plans materialized",
		},
	)

	TaskGenerationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "task_generation_count",
			Help: "Total number of tasks generated",
		},
		[]string{"source"}, // source: plan, manual
	)

	PlanAggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plan_aggregation_duration_seconds",
			Help:    "Plan progress recomputation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
	)

	PlanAggregationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_aggregation_conflict_count",
			Help: "Total number of optimistic-lock conflicts during plan aggregation",
		},
	)

	PlanCompletedCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_completed_count",
			Help: "Total number of plans that reached Completed status",
		},
	)

	MQConsumeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mq_consume_latency_ms",
			Help:    "MQ message consumption latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"routing_key", "queue"},
	)

	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of queries slower than the slow-query threshold",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementTaskGeneration(source string, n int) {
	TaskGenerationCount.WithLabelValues(source).Add(float64(n))
}

func RecordMQConsumeLatency(routingKey, queue string, duration time.Duration) {
	MQConsumeLatency.WithLabelValues(routingKey, queue).Observe(float64(duration.Milliseconds()))
}

func IncrementSlowQuery() {
	SlowQueryCount.Inc()
}
