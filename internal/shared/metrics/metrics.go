package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// After-sales workflow metrics
	TransitionsTotal       *prometheus.CounterVec
	TransitionConflicts    *prometheus.CounterVec
	NotificationsTotal     *prometheus.CounterVec
	AuditAppendFailures    prometheus.Counter
	RefundAmountTotal      *prometheus.CounterVec
	OpenRequestsReconciled prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "shopthoitrang"
	}

	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		TransitionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aftersales",
				Name:      "transitions_total",
				Help:      "Total number of workflow transitions",
			},
			[]string{"kind", "action"}, // kind: return, exchange
		),
		TransitionConflicts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aftersales",
				Name:      "transition_conflicts_total",
				Help:      "Transitions rejected because of a source-state mismatch",
			},
			[]string{"kind", "action"},
		),
		NotificationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aftersales",
				Name:      "notifications_total",
				Help:      "Customer notifications dispatched",
			},
			[]string{"status"}, // sent, failed
		),
		AuditAppendFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aftersales",
				Name:      "audit_append_failures_total",
				Help:      "Audit log entries that could not be persisted",
			},
		),
		RefundAmountTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aftersales",
				Name:      "refund_amount_total",
				Help:      "Total refunded amount by method",
			},
			[]string{"method"},
		),
		OpenRequestsReconciled: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aftersales",
				Name:      "orders_reconciled_total",
				Help:      "Parent orders reverted to delivered after their last open request closed",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordTransition records a successful workflow transition.
func (m *Metrics) RecordTransition(kind, action string) {
	m.TransitionsTotal.WithLabelValues(kind, action).Inc()
}

// RecordConflict records a transition rejected with a state conflict.
func (m *Metrics) RecordConflict(kind, action string) {
	m.TransitionConflicts.WithLabelValues(kind, action).Inc()
}

// RecordNotification records a notification dispatch outcome.
func (m *Metrics) RecordNotification(ok bool) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.NotificationsTotal.WithLabelValues(status).Inc()
}

// RecordRefund records a processed refund amount.
func (m *Metrics) RecordRefund(method string, amount float64) {
	m.RefundAmountTotal.WithLabelValues(method).Add(amount)
}
