// Package metrics defines and registers all custom Prometheus metrics for the
// booking API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto; /metrics exposes them next to the HTTP
// metrics collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - kind: "standard" or "admin"
//   - result: "success", "invalid_credentials", "forbidden" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by session kind and result.",
	},
	[]string{"kind", "result"},
)

// GuardDenialsTotal counts requests rejected by the access or role guard.
// Labels:
//   - guard: "access" or "role"
//   - reason: "missing_token", "invalid_token", "no_identity" or "role"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by an auth guard.",
	},
	[]string{"guard", "reason"},
)

// ── Password hashing metrics ──────────────────────────────────────────────────

// HashDuration measures bcrypt work including time spent queued in the pool.
// Label:
//   - op: "hash" or "verify"
var HashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hash and verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
	[]string{"op"},
)

// HashQueueDepth tracks jobs waiting for a hash worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "password_hash_queue_depth",
		Help:      "Current number of password jobs pending in the hash pool.",
	},
)

// ── Booking metrics ───────────────────────────────────────────────────────────

// ReservationsTotal counts reservation outcomes.
// Label:
//   - result: "created", "replayed", "no_seats" or "cancelled"
var ReservationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_total",
		Help:      "Total number of reservation operations, by result.",
	},
	[]string{"result"},
)
