package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Forms

	SubmissionsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_submitted_total",
			Help: "Submissions moved into the submitted state",
		},
		[]string{"source"},
	)

	SubmissionsReviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_submissions_reviewed_total",
			Help: "Submissions reviewed or rejected",
		},
		[]string{"status"},
	)

	SchemaActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "form_schema_activations_total",
			Help: "Schema versions switched to active",
		},
	)

	SummaryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "form_summary_cache_lookups_total",
			Help: "Form summary cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
