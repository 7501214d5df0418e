package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the consent module.
type Metrics struct {
	// Consent lifecycle transitions by action (token_issued, granted,
	// revoked, anonymized)
	Transitions *prometheus.CounterVec

	// Mail collaborator hand-offs by outcome
	MailHandoffs *prometheus.CounterVec

	// Retention sweep latency
	SweepLatency prometheus.Histogram
}

// New creates a Metrics instance with all consent module metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofguard_consent_transitions_total",
			Help: "Total consent lifecycle transitions by action",
		}, []string{"action"}),

		MailHandoffs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofguard_consent_mail_handoffs_total",
			Help: "Total consent request mail hand-offs by outcome",
		}, []string{"outcome"}),

		SweepLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proofguard_consent_sweep_duration_seconds",
			Help:    "Duration of expiring-consent retention sweeps",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveTransition records a consent lifecycle transition.
func (m *Metrics) ObserveTransition(action string) {
	if m != nil {
		m.Transitions.WithLabelValues(action).Inc()
	}
}

// ObserveMailHandoff records a mail hand-off outcome ("ok" or "failed").
func (m *Metrics) ObserveMailHandoff(outcome string) {
	if m != nil {
		m.MailHandoffs.WithLabelValues(outcome).Inc()
	}
}
