// Package metrics defines and registers all custom Prometheus metrics for
// the identity service. It is the single source of truth for metric names,
// labels, and help strings; registration happens at import time via
// promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// LoginsTotal counts login attempts by outcome.
// Labels:
//   - result: "success", "bad_password", "unknown_account", "locked",
//     "disabled", or "2fa_challenge"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"result"},
)

// LockoutsTotal counts accounts transitioned to LOCKED by the failed-attempt
// threshold.
var LockoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lockouts_total",
		Help:      "Total number of accounts locked after repeated failed logins.",
	},
)

// RegistrationsTotal counts created identities by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registered identities, by role.",
	},
	[]string{"role"},
)

// TokensIssuedTotal counts minted tokens by type ("access" or "refresh").
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued, by token type.",
	},
	[]string{"type"},
)

// TwoFactorVerificationsTotal counts second-factor checks by outcome
// ("success" or "failure").
var TwoFactorVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "two_factor_verifications_total",
		Help:      "Total number of two-factor code verifications, by outcome.",
	},
	[]string{"result"},
)

// PasswordResetsTotal counts reset lifecycle transitions.
// Label:
//   - stage: "requested" or "completed"
var PasswordResetsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_resets_total",
		Help:      "Total number of password reset tokens issued and redeemed.",
	},
	[]string{"stage"},
)

// SideEffectsTotal counts best-effort side effects by kind ("event",
// "email", "enqueue") and result ("ok", "error", "dropped").
var SideEffectsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "side_effects_total",
		Help:      "Total number of dispatched side effects, by kind and result.",
	},
	[]string{"kind", "result"},
)
