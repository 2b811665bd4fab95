// Package metrics holds the Prometheus collectors for the inventory service.
// Everything registers with the default registry at init through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory"

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - kind: "user" or "admin"
//   - result: "pending", "success", "not_found", "invalid_credentials", "invalid_key", "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by kind and result.",
	},
	[]string{"kind", "result"},
)

// OTPIssuedTotal counts one-time codes issued, labelled by whether the email went out.
var OTPIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_issued_total",
		Help:      "Total number of one-time codes issued.",
	},
	[]string{"delivered"},
)

// OTPVerificationsTotal counts verification submissions.
// Label result: "success", "invalid", "expired", "too_many_attempts", "no_session".
var OTPVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "otp_verifications_total",
		Help:      "Total number of one-time code verification attempts.",
	},
	[]string{"result"},
)

var MailDeliveriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mail_deliveries_total",
		Help:      "Outbound email deliveries by template and result.",
	},
	[]string{"template", "result"},
)

// BorrowDecisionsTotal counts borrow request transitions (requested, approved, rejected, returned).
var BorrowDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "borrow_decisions_total",
		Help:      "Borrow request transitions by decision.",
	},
	[]string{"decision"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method, route pattern and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// Result is a small helper for success/failure labels.
func Result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
