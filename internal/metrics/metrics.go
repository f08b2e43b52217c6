package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Charge outcomes as reported by the billing procedure
const (
	OutcomeCharged   = "charged"
	OutcomeDeclined  = "declined"
	OutcomeTransient = "transient"
	OutcomeAnomaly   = "anomaly"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Scheduler metrics
	SchedulerTicksTotal        *prometheus.CounterVec
	SchedulerTicksSkippedTotal *prometheus.CounterVec
	SchedulerTickDuration      *prometheus.HistogramVec

	// Billing metrics
	BillingChargesTotal  *prometheus.CounterVec
	BillingInvoicesPaid  prometheus.Counter
	BillingBatchFailures prometheus.Counter

	// Invoice generation metrics
	InvoicesGeneratedTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewRegistry returns a registry with the runtime collectors attached
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		SchedulerTicksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_scheduler_ticks_total",
				Help: "Total number of scheduled job runs",
			},
			[]string{"job", "status"},
		),
		SchedulerTicksSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_scheduler_ticks_skipped_total",
				Help: "Total number of ticks skipped because the previous run of the job was still in progress",
			},
			[]string{"job"},
		),
		SchedulerTickDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "antaeus_scheduler_tick_duration_seconds",
				Help:    "Scheduled job run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),

		BillingChargesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_billing_charges_total",
				Help: "Total number of charge attempts by outcome",
			},
			[]string{"outcome"},
		),
		BillingInvoicesPaid: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "antaeus_billing_invoices_paid_total",
				Help: "Total number of invoices transitioned to PAID",
			},
		),
		BillingBatchFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "antaeus_billing_batch_failures_total",
				Help: "Total number of billing batches aborted by a store failure",
			},
		),

		InvoicesGeneratedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_invoice_generation_total",
				Help: "Total number of invoice creations by result",
			},
			[]string{"result"},
		),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "antaeus_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "antaeus_db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBQueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_db_query_errors_total",
				Help: "Total number of failed database queries",
			},
			[]string{"operation"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "antaeus_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache"},
		),
	}

	registry.MustRegister(
		m.SchedulerTicksTotal,
		m.SchedulerTicksSkippedTotal,
		m.SchedulerTickDuration,
		m.BillingChargesTotal,
		m.BillingInvoicesPaid,
		m.BillingBatchFailures,
		m.InvoicesGeneratedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBQueryErrors,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// RecordCharge counts one charge attempt
func (m *Metrics) RecordCharge(outcome string) {
	m.BillingChargesTotal.WithLabelValues(outcome).Inc()
}

// RecordTick records a finished scheduled job run
func (m *Metrics) RecordTick(job string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SchedulerTicksTotal.WithLabelValues(job, status).Inc()
	m.SchedulerTickDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *Metrics) RecordSkippedTick(job string) {
	m.SchedulerTicksSkippedTotal.WithLabelValues(job).Inc()
}

// RecordQuery records a database query, keyed by its leading SQL verb
func (m *Metrics) RecordQuery(query string, duration time.Duration, err error) {
	operation := queryOperation(query)
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

func queryOperation(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}

// Handler serves the registry in the Prometheus exposition format
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
