// Package metrics defines Prometheus metrics for the restock monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "restock"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "Whether the last liveness probe succeeded (1) or failed (0).",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "Whether the last readiness probe succeeded (1) or failed (0).",
	})
)

// Check-cycle metrics.
var (
	CheckCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "check_cycles_total",
		Help:      "Total number of stock check cycles started.",
	})

	CheckCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "check_cycle_duration_seconds",
		Help:      "Duration of full check cycles in seconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	SourceChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_checks_total",
		Help:      "Total per-source checks by outcome.",
	}, []string{"source", "outcome"})

	MonitorRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "monitor_running",
		Help:      "Whether the monitor loop is running (1) or stopped (0).",
	})

	ProductsTracked = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "products_tracked",
		Help:      "Number of products observed in the most recent cycle.",
	})

	ProductsInStock = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "products_in_stock",
		Help:      "Number of in-stock products observed in the most recent cycle.",
	})
)

// Scrape metrics.
var (
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetches_total",
		Help:      "Total HTTP fetches by source and result classification.",
	}, []string{"source", "result"})

	ScrapeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrape_errors_total",
		Help:      "Total number of failed source checks.",
	}, []string{"source"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "breaker_state",
		Help:      "Circuit breaker state per source (0=closed, 1=half-open, 2=open).",
	}, []string{"source"})
)

// Alert metrics.
var (
	AlertsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_sent_total",
		Help:      "Total number of alerts delivered successfully.",
	})

	AlertsSuppressedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_suppressed_total",
		Help:      "Total number of alerts dropped by the cooldown gate.",
	})

	AlertsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_failed_total",
		Help:      "Total number of alert deliveries that failed and entered the DLQ.",
	})

	AlertSendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "alert_send_duration_seconds",
		Help:      "Duration of notification sends in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Dead-letter queue metrics.
var (
	DLQDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dlq_depth",
		Help:      "Unresolved entries currently in the dead-letter queue.",
	})

	DLQRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dlq_retries_total",
		Help:      "Total DLQ retry attempts by outcome.",
	}, []string{"outcome"})
)
