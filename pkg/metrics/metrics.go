// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpdatesTotal tracks inbound transport updates by kind.
	UpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Total inbound updates received from the chat transport",
		},
		[]string{"kind"},
	)

	// MessagesTotal tracks persisted conversation messages by role.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_messages_total",
			Help: "Total conversation messages persisted",
		},
		[]string{"role"},
	)

	// LLMRequestDuration tracks inference request duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Inference request duration in seconds",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "status"},
	)

	// TranslationsTotal tracks translation bridge calls.
	TranslationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_translations_total",
			Help: "Total translation calls by direction and outcome",
		},
		[]string{"direction", "status"},
	)

	// TranscriptionsTotal tracks voice transcription calls.
	TranscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_transcriptions_total",
			Help: "Total voice transcription calls",
		},
		[]string{"status"},
	)

	// SuggestionsGeneratedTotal tracks follow-up suggestions produced.
	SuggestionsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_suggestions_generated_total",
			Help: "Total follow-up suggestions generated",
		},
	)

	// SuggestionClicksTotal tracks suggestion button presses.
	SuggestionClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_suggestion_clicks_total",
			Help: "Total suggestion button presses by lookup outcome",
		},
		[]string{"outcome"},
	)

	// ActiveFlows tracks units of work currently in flight.
	ActiveFlows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bot_active_flows",
			Help: "Number of conversation flows currently in flight",
		},
	)

	// RequestDuration tracks HTTP request duration on the ops server.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests on the ops server.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for one inference call.
func RecordLLMRequest(provider, status string, duration float64) {
	LLMRequestDuration.WithLabelValues(provider, status).Observe(duration)
}

// RecordTranslation records one translation bridge call.
func RecordTranslation(direction, status string) {
	TranslationsTotal.WithLabelValues(direction, status).Inc()
}

// FlowStarted marks a unit of work as in flight.
func FlowStarted() {
	ActiveFlows.Inc()
}

// FlowFinished marks a unit of work as done.
func FlowFinished() {
	ActiveFlows.Dec()
}
