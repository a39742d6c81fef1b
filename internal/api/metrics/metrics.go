// Package metrics defines and registers all custom Prometheus metrics for the
// store API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and served by the /metrics route.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "store"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "rejected" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts accounts created, by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered, by role.",
	},
	[]string{"role"},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts cart writes.
// Labels:
//   - operation: "add_item", "remove_item" or "delete_cart"
//   - result: "ok", "not_found" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ── Checkout metrics ──────────────────────────────────────────────────────────

// CheckoutsTotal counts checkout attempts.
// Label:
//   - outcome: "completed", "empty_cart", "user_not_found", "in_progress",
//     "notification_failed", "unavailable" or "error"
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of checkout attempts, by outcome.",
	},
	[]string{"outcome"},
)

// CheckoutDuration measures how long a checkout takes end-to-end.
var CheckoutDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Duration of checkout from lock acquisition to cart clear.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"outcome"},
)

// CheckoutRevenueTotal sums the totals of completed checkouts.
var CheckoutRevenueTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_revenue_total",
		Help:      "Sum of order totals for completed checkouts.",
	},
)
