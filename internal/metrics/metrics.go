// Package metrics exposes prometheus counters for identity operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultMismatch = "mismatch"
	ResultRejected = "rejected"
)

// Metrics groups the counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registrations     *prometheus.CounterVec
	logins            *prometheus.CounterVec
	credentialChanges *prometheus.CounterVec
	profileUpdates    prometheus.Counter
	deletions         prometheus.Counter
}

// New registers the counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialize",
			Name:      "registrations_total",
			Help:      "User registrations by result.",
		}, []string{"result"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialize",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		credentialChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "socialize",
			Name:      "credential_changes_total",
			Help:      "Password change attempts by result.",
		}, []string{"result"}),
		profileUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "socialize",
			Name:      "profile_updates_total",
			Help:      "Successful profile merges.",
		}),
		deletions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "socialize",
			Name:      "user_deletions_total",
			Help:      "Users flagged as deleted.",
		}),
	}
}

func (m *Metrics) Registration(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) CredentialChange(result string) {
	if m == nil {
		return
	}
	m.credentialChanges.WithLabelValues(result).Inc()
}

func (m *Metrics) ProfileUpdate() {
	if m == nil {
		return
	}
	m.profileUpdates.Inc()
}

func (m *Metrics) Deletion() {
	if m == nil {
		return
	}
	m.deletions.Inc()
}
