// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/authcore/authcore/internal/auth"
)

// Metrics holds the authcore counters. It implements auth.Recorder.
type Metrics struct {
	SessionValidations *prometheus.CounterVec
	BreachChecks       *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
}

// NewMetrics creates and registers the authcore metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionValidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_session_validations_total",
				Help: "Session token validations by outcome",
			},
			[]string{"outcome"},
		),
		BreachChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_breach_checks_total",
				Help: "Password strength checks by outcome",
			},
			[]string{"outcome"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authcore_http_requests_total",
				Help: "HTTP API requests by route and status code",
			},
			[]string{"route", "status"},
		),
	}

	reg.MustRegister(m.SessionValidations, m.BreachChecks, m.LoginAttempts, m.HTTPRequests)
	return m
}

// SessionValidation implements auth.Recorder.
func (m *Metrics) SessionValidation(outcome string) {
	m.SessionValidations.WithLabelValues(outcome).Inc()
}

// BreachCheck implements auth.Recorder.
func (m *Metrics) BreachCheck(outcome string) {
	m.BreachChecks.WithLabelValues(outcome).Inc()
}

// LoginAttempt implements auth.Recorder.
func (m *Metrics) LoginAttempt(outcome string) {
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// HTTPRequest counts one API response.
func (m *Metrics) HTTPRequest(route string, status int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

var _ auth.Recorder = (*Metrics)(nil)
