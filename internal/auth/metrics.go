// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillPad Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Attempt status labels for login metrics.
const (
	MetricStatusSuccess   = "success"
	MetricStatusFailure   = "failure"
	MetricStatusLockedOut = "locked_out"
)

// LoginAttempts counts login attempts by outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "quillpad_login_attempts_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"},
)

// Lockouts counts origins transitioning into the LOCKED state.
// Use RegisterMetrics to register this with a Prometheus registry.
var Lockouts = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "quillpad_lockouts_total",
		Help: "Total number of login lockouts",
	},
)

// ActiveSessions tracks the number of live sessions in the registry.
// Use RegisterMetrics to register this with a Prometheus registry.
var ActiveSessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "quillpad_active_sessions",
		Help: "Number of active sessions",
	},
)

// RegisterMetrics registers auth package metrics with the given Prometheus
// registry. Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(Lockouts)
	reg.MustRegister(ActiveSessions)
}

// RecordLoginAttempt increments the attempt counter for a status label.
func RecordLoginAttempt(status string) {
	LoginAttempts.WithLabelValues(status).Inc()
}
