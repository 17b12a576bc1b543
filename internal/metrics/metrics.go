// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finance_journal"

// Model call outcomes.
const (
	OutcomeSuccess     = "success"
	OutcomeRetry       = "retry"
	OutcomeAuthError   = "auth_error"
	OutcomeUnavailable = "unavailable"
)

var (
	// HTTPRequests counts served requests by route, method and status.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served.",
	}, []string{"path", "method", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"path"})

	// ModelCalls counts model gateway attempts by outcome.
	ModelCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "model_calls_total",
		Help:      "Model gateway attempts by outcome.",
	}, []string{"outcome"})

	// PipelineSteps observes the latency of each prompt step.
	PipelineSteps = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_step_duration_seconds",
		Help:      "Latency of individual pipeline prompt steps.",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"step", "status"})

	// JournalWrites counts journal store writes by result.
	JournalWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "journal_writes_total",
		Help:      "Journal record writes by result (saved, skipped, failed).",
	}, []string{"result"})

	// AuditJobs counts finished audit jobs by final status.
	AuditJobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_jobs_total",
		Help:      "Audit jobs by outcome (completed, retrying, failed).",
	}, []string{"status"})

	// VoiceSessions tracks open voice websocket sessions.
	VoiceSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "voice_sessions_active",
		Help:      "Open voice-to-voice sessions.",
	})
)

// NewRegistry returns a registry holding the service collectors plus the
// standard Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequests,
		HTTPDuration,
		ModelCalls,
		PipelineSteps,
		JournalWrites,
		AuditJobs,
		VoiceSessions,
	)
	return reg
}

// Handler exposes the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveHTTP records one served request.
func ObserveHTTP(path, method string, status int, d time.Duration) {
	HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(path).Observe(d.Seconds())
}

// ObserveStep records one pipeline step.
func ObserveStep(step string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	PipelineSteps.WithLabelValues(step, status).Observe(d.Seconds())
}
