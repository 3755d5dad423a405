// Package observability registers and records the engine's Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storelens_questions_total",
			Help: "Total number of insight questions by outcome.",
		},
		[]string{"outcome"},
	)
	questionDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storelens_question_duration_ms",
			Help:    "End-to-end insight pipeline latency in milliseconds.",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 20000, 40000},
		},
	)
	queryDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storelens_query_duration_ms",
			Help:    "Validated query execution latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)
	queryRowsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storelens_query_rows_returned",
			Help:    "Rows returned by validated queries, after truncation.",
			Buckets: []float64{1, 5, 10, 50, 100, 250, 500, 1000},
		},
	)
	queryTruncationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storelens_query_truncations_total",
			Help: "Total number of result sets truncated to the row cap.",
		},
	)
	validationRejectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storelens_validation_rejections_total",
			Help: "Total number of model queries rejected by the SQL validator.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		questionDurationMs,
		queryDurationMs,
		queryRowsReturned,
		queryTruncationsTotal,
		validationRejectionsTotal,
	)
}

// ObserveQuestion records one completed pipeline invocation.
func ObserveQuestion(outcome string, elapsed time.Duration) {
	questionsTotal.WithLabelValues(outcome).Inc()
	questionDurationMs.Observe(float64(elapsed.Milliseconds()))
}

// ObserveQueryExecution records one query execution attempt.
func ObserveQueryExecution(rowCount int, truncated bool, elapsed time.Duration) {
	queryDurationMs.Observe(float64(elapsed.Milliseconds()))
	queryRowsReturned.Observe(float64(rowCount))
	if truncated {
		queryTruncationsTotal.Inc()
	}
}

// IncrementValidationRejection records a validator rejection.
func IncrementValidationRejection() {
	validationRejectionsTotal.Inc()
}
