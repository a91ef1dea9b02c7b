// Package metrics provides Prometheus metrics for the HTTP server and the
// content catalog:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - content_items: Gauge with a store label, set after every catalog load
//   - content_coverage_issues: Gauge of gaps found by the last audit
//   - content_reloads_total: Counter with a result label
//   - medications_resolved_total / medications_unmapped_total: Counters
//   - interactions_found_total: Counter with a severity label
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giygas/pharmacology-api/contentparser/entities"
	"github.com/giygas/pharmacology-api/stores"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	ContentItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "content_items",
			Help: "Number of entries per content store in the current catalog",
		},
		[]string{"store"},
	)

	ContentCoverageIssues = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "content_coverage_issues",
			Help: "Content gaps and inconsistencies found by the last audit",
		},
	)

	ContentReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_reloads_total",
			Help: "Content reload attempts by result",
		},
		[]string{"result"},
	)

	MedicationsResolvedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "medications_resolved_total",
			Help: "Medications resolved into patient views",
		},
	)

	MedicationsUnmappedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "medications_unmapped_total",
			Help: "Resolved medications with no target mapping",
		},
	)

	InteractionsFoundTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interactions_found_total",
			Help: "Interactions found in patient medication lists by severity",
		},
		[]string{"severity"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(ContentItems)
	prometheus.MustRegister(ContentCoverageIssues)
	prometheus.MustRegister(ContentReloadsTotal)
	prometheus.MustRegister(MedicationsResolvedTotal)
	prometheus.MustRegister(MedicationsUnmappedTotal)
	prometheus.MustRegister(InteractionsFoundTotal)
}

// RecordCatalog sets the per-store gauges from a freshly published catalog
func RecordCatalog(catalog *stores.Catalog) {
	if catalog == nil {
		return
	}
	ContentItems.WithLabelValues("medications").Set(float64(catalog.Medications().Len()))
	ContentItems.WithLabelValues("drug_classes").Set(float64(len(catalog.Medications().Classes())))
	ContentItems.WithLabelValues("targets").Set(float64(catalog.Targets().Len()))
	ContentItems.WithLabelValues("pharmacokinetics").Set(float64(catalog.PharmacokineticsStore().Len()))
	ContentItems.WithLabelValues("interactions").Set(float64(catalog.Interactions().Len()))
	ContentItems.WithLabelValues("side_effects").Set(float64(catalog.SideEffects().Len()))
	ContentItems.WithLabelValues("mechanisms").Set(float64(catalog.Mechanisms().Len()))
	ContentItems.WithLabelValues("combinations").Set(float64(catalog.Combinations().Len()))
}

// RecordReload counts one reload attempt
func RecordReload(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	ContentReloadsTotal.WithLabelValues(result).Inc()
}

// RecordResolution counts the outcome of one patient list resolution
func RecordResolution(resolved, unmapped int, interactions []entities.InteractionRecord) {
	MedicationsResolvedTotal.Add(float64(resolved))
	MedicationsUnmappedTotal.Add(float64(unmapped))
	for _, r := range interactions {
		InteractionsFoundTotal.WithLabelValues(r.Severity.String()).Inc()
	}
}
