// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ringdex Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for login metrics.
const (
	LoginSuccess         = "success"
	LoginUnknownUser     = "unknown_user"
	LoginBadPassword     = "bad_password"
	LoginLockedOut       = "locked_out"
	LoginDisabled        = "disabled"
	LoginPasswordExpired = "password_expired"
	LoginError           = "error"
)

// Outcome labels for session authentication metrics.
const (
	SessionValid    = "valid"
	SessionNotFound = "not_found"
	SessionEnded    = "ended"
	SessionExpired  = "expired"
	SessionError    = "error"
)

// LoginAttempts counts login calls by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ringdex_login_attempts_total",
		Help: "Total number of login attempts",
	},
	[]string{"outcome"},
)

// SessionAuthentications counts session authentication calls by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionAuthentications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ringdex_session_authentications_total",
		Help: "Total number of session authentications",
	},
	[]string{"outcome"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(SessionAuthentications)
}

func recordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}

func recordSessionAuthentication(outcome string) {
	SessionAuthentications.WithLabelValues(outcome).Inc()
}
