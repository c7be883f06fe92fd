package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultSuccess  = "success"
	ResultConflict = "conflict"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	approvalSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_approval_submissions_total",
		Help: "Risk acceptance submissions by result",
	}, []string{"result"})

	approvalDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_approval_decisions_total",
		Help: "Approval decisions by decision and result",
	}, []string{"decision", "result"})

	approvalEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grc_approval_events_total",
		Help: "Workflow events handed to the notifier by type and result",
	}, []string{"type", "result"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "grc_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveSubmission counts a submit-acceptance attempt
func ObserveSubmission(result string) {
	approvalSubmissions.WithLabelValues(result).Inc()
}

// ObserveDecision counts a decide attempt
func ObserveDecision(decision, result string) {
	approvalDecisions.WithLabelValues(decision, result).Inc()
}

// ObserveEvent counts a notifier delivery
func ObserveEvent(eventType, result string) {
	approvalEvents.WithLabelValues(eventType, result).Inc()
}

// ObserveHTTP records the latency of a finished HTTP request
func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// SubmissionCount returns the submission counter for the result label
func SubmissionCount(result string) prometheus.Counter {
	return approvalSubmissions.WithLabelValues(result)
}

// DecisionCount returns the current decision counter for the labels
func DecisionCount(decision, result string) prometheus.Counter {
	return approvalDecisions.WithLabelValues(decision, result)
}

// EventCount returns the current event counter for the labels
func EventCount(eventType, result string) prometheus.Counter {
	return approvalEvents.WithLabelValues(eventType, result)
}
