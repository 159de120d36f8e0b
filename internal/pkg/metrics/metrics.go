// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_http_requests_total",
			Help: "HTTP requests served, by route, method and status code",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	ReconciliationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_payment_reconciliations_total",
			Help: "Payment reconciliations, by source and result (changed, unchanged, error)",
		},
		[]string{"source", "result"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fulfillment_gateway_request_duration_seconds",
			Help:    "Duration of payment gateway verification calls, by outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	PingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_gps_pings_total",
			Help: "GPS pings received, by result (accepted, throttled, rejected)",
		},
		[]string{"result"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_notifications_total",
			Help: "Outbox notifications handed to the broker, by kind and result",
		},
		[]string{"kind", "result"},
	)

	SweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillment_payment_sweep_orders_total",
			Help: "Orders visited by the payment sweep, by outcome (checked, changed, expired, reminded, failed)",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

// Register registers all collectors with the default registry. Calling it
// more than once is a no-op.
func Register() {
	registerOnce.Do(func() {
		MustRegister(prometheus.DefaultRegisterer)
	})
}

// MustRegister registers all collectors with reg.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ReconciliationsTotal,
		GatewayRequestDuration,
		PingsTotal,
		NotificationsTotal,
		SweepRunsTotal,
	)
}
