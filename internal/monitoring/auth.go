// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Authentication results recorded by AuthMetrics.
const (
	ResultSuccess            = "success"
	ResultNoHeaderConfigured = "no-header-configured"
	ResultNoCertificate      = "no-certificate"
	ResultUnparsable         = "unparsable"
	ResultMissingCommonName  = "missing-common-name"
	ResultMissingEmail       = "missing-email"
	ResultProvisioningFailed = "provisioning-failed"
	ResultError              = "error"
)

// AuthMetrics records the outcome of authentication attempts.
type AuthMetrics struct {
	attempts    *prometheus.CounterVec
	provisioned *prometheus.CounterVec
}

// NewAuthMetrics creates the authentication metrics, registering them
// with the default prometheus registerer if that has not already been
// done.
func NewAuthMetrics() *AuthMetrics {
	return &AuthMetrics{
		attempts: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certauth",
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "The number of authentication attempts by result.",
		}, []string{"authenticator", "result"})),
		provisioned: registerCounterVec(prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "certauth",
			Subsystem: "auth",
			Name:      "users_provisioned_total",
			Help:      "The number of user accounts created on first authentication.",
		}, []string{"authenticator"})),
	}
}

// Attempt records an authentication attempt with the given result.
func (m *AuthMetrics) Attempt(authenticator, result string) {
	m.attempts.WithLabelValues(authenticator, result).Inc()
}

// Provisioned records the creation of a new user account.
func (m *AuthMetrics) Provisioned(authenticator string) {
	m.provisioned.WithLabelValues(authenticator).Inc()
}

func registerCounterVec(c *prometheus.CounterVec) *prometheus.CounterVec {
	err := prometheus.DefaultRegisterer.Register(c)
	if err == nil {
		return c
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return are.ExistingCollector.(*prometheus.CounterVec)
	}
	panic(err)
}
