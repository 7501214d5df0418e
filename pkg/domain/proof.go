package domain

import dErrors "proofguard/pkg/domain-errors"

// ProofType labels the kind of trust artifact a company publishes.
// The core set drives consent-requirement and auto-classification rules;
// free-form subtypes (case_study, client_review) are accepted because
// imported catalogs use them directly.
type ProofType string

const (
	ProofTypeTestimonial  ProofType = "testimonial"
	ProofTypeSocial       ProofType = "social_proof"
	ProofTypeProfessional ProofType = "professional_proof"
	ProofTypePerformance  ProofType = "performance_proof"
	ProofTypeTrust        ProofType = "trust_proof"

	// Common subtypes referenced by consent-type mapping.
	ProofTypeCaseStudy    ProofType = "case_study"
	ProofTypeClientReview ProofType = "client_review"
)

func (t ProofType) String() string { return string(t) }

// ProofStatus is the lifecycle state of a proof.
// Invariant: consent grant moves a proof to active, revocation to archived.
type ProofStatus string

const (
	ProofStatusDraft    ProofStatus = "draft"
	ProofStatusActive   ProofStatus = "active"
	ProofStatusArchived ProofStatus = "archived"
)

var validProofStatuses = map[ProofStatus]bool{
	ProofStatusDraft:    true,
	ProofStatusActive:   true,
	ProofStatusArchived: true,
}

// ParseProofStatus constructs a ProofStatus from external input.
func ParseProofStatus(s string) (ProofStatus, error) {
	st := ProofStatus(s)
	if !validProofStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid proof status")
	}
	return st, nil
}

func (s ProofStatus) String() string { return string(s) }
