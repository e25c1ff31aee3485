// Package metrics exposes the Prometheus collectors of the booking service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appointmentTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_appointment_transitions_total",
			Help: "Appointment lifecycle transitions by target status and outcome",
		},
		[]string{"status", "outcome"},
	)

	bookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_booking_conflicts_total",
			Help: "Bookings rejected because the doctor slot was already held",
		},
	)

	paymentStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_payment_status_total",
			Help: "Payment status changes by gateway and status",
		},
		[]string{"gateway", "status"},
	)

	manualConfirmations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clinic_payment_manual_confirmations_total",
			Help: "Appointments marked paid without gateway proof",
		},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinic_payment_webhooks_total",
			Help: "Gateway callbacks by gateway and result",
		},
		[]string{"gateway", "result"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Transition records an attempted lifecycle transition. outcome is "ok" or
// the error kind.
func Transition(status, outcome string) {
	appointmentTransitions.WithLabelValues(status, outcome).Inc()
}

func BookingConflict() {
	bookingConflicts.Inc()
}

func PaymentStatus(gateway, status string) {
	paymentStatus.WithLabelValues(gateway, status).Inc()
}

func ManualConfirmation() {
	manualConfirmations.Inc()
}

func Webhook(gateway, result string) {
	webhookEvents.WithLabelValues(gateway, result).Inc()
}

func ObserveHTTP(method, route, status string, d time.Duration) {
	httpDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
