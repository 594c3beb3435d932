// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docchat_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// ConversationsActive is the number of conversations held in memory.
	ConversationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docchat_conversations_active",
			Help: "Conversations currently held in memory",
		},
	)

	// ConversationsTotal counts conversations created.
	ConversationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docchat_conversations_total",
			Help: "Total conversations created",
		},
	)

	// DocumentsIndexed counts committed uploads by retrieval mode.
	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_documents_indexed_total",
			Help: "Documents committed to a conversation",
		},
		[]string{"mode"},
	)

	// ChunksIndexed counts committed chunks.
	ChunksIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docchat_chunks_indexed_total",
			Help: "Chunks committed to a conversation",
		},
	)

	// QueriesTotal counts answered questions by retrieval mode and outcome.
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docchat_queries_total",
			Help: "Questions answered",
		},
		[]string{"mode", "outcome"},
	)

	// GenerationDuration tracks generator latency.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docchat_generation_duration_seconds",
			Help:    "Generator call duration",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"model", "status"},
	)

	// Degradations counts conversations switched to lexical retrieval.
	Degradations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "docchat_degradations_total",
			Help: "Conversations switched to lexical retrieval",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, route, status string, duration float64) {
	RequestDuration.WithLabelValues(method, route, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, route, status).Inc()
}

// RecordGeneration records one generator call.
func RecordGeneration(model, status string, duration float64) {
	GenerationDuration.WithLabelValues(model, status).Observe(duration)
}

// RecordDocument records a committed upload.
func RecordDocument(mode string, chunks int) {
	DocumentsIndexed.WithLabelValues(mode).Inc()
	ChunksIndexed.Add(float64(chunks))
}

// RecordQuery records an answered question.
func RecordQuery(mode, outcome string) {
	QueriesTotal.WithLabelValues(mode, outcome).Inc()
}

// SetConversations updates the in-memory conversation gauge.
func SetConversations(n int) {
	ConversationsActive.Set(float64(n))
}
