package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the security module.
type Metrics struct {
	// Access decisions by outcome (allowed, denied_tenant, denied_clearance,
	// denied_restriction)
	AccessDecisions *prometheus.CounterVec

	// Access token validations by outcome (valid, invalid, revoked)
	TokenValidations *prometheus.CounterVec

	// Sensitive-data scanner findings by pattern
	ScannerFindings *prometheus.CounterVec

	// Restriction check latency, including the view-count lookup
	RestrictionCheckLatency prometheus.Histogram
}

// New creates a Metrics instance with all security module metrics registered.
func New() *Metrics {
	return &Metrics{
		AccessDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofguard_access_decisions_total",
			Help: "Total access decisions by outcome",
		}, []string{"outcome"}),

		TokenValidations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofguard_token_validations_total",
			Help: "Total secure access token validations by outcome",
		}, []string{"outcome"}),

		ScannerFindings: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "proofguard_scanner_findings_total",
			Help: "Total sensitive-data scanner findings by pattern",
		}, []string{"pattern"}),

		RestrictionCheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "proofguard_restriction_check_duration_seconds",
			Help:    "Duration of access restriction evaluations",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// ObserveAccessDecision records one access decision.
func (m *Metrics) ObserveAccessDecision(outcome string) {
	if m != nil {
		m.AccessDecisions.WithLabelValues(outcome).Inc()
	}
}

// ObserveTokenValidation records one token validation outcome.
func (m *Metrics) ObserveTokenValidation(outcome string) {
	if m != nil {
		m.TokenValidations.WithLabelValues(outcome).Inc()
	}
}

// ObserveFinding records one scanner finding.
func (m *Metrics) ObserveFinding(pattern string) {
	if m != nil {
		m.ScannerFindings.WithLabelValues(pattern).Inc()
	}
}
