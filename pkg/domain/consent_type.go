package domain

// ConsentType identifies what use of the data subject's identity was agreed
// to. Purpose binding allows selective revocation without affecting other
// published content.
type ConsentType string

const (
	ConsentTypeTestimonialUsage     ConsentType = "testimonial_usage"
	ConsentTypeCaseStudyPublication ConsentType = "case_study_publication"
	ConsentTypeReviewDisplay        ConsentType = "review_display"
	ConsentTypeSocialMediaContent   ConsentType = "social_media_content"
	ConsentTypeGeneralUsage         ConsentType = "general_usage"
)

// consentTypeByProofType is the single source of truth for the proof-type to
// consent-type mapping. Anything unmapped falls back to general usage.
var consentTypeByProofType = map[ProofType]ConsentType{
	ProofTypeTestimonial:  ConsentTypeTestimonialUsage,
	ProofTypeCaseStudy:    ConsentTypeCaseStudyPublication,
	ProofTypeClientReview: ConsentTypeReviewDisplay,
	ProofTypeSocial:       ConsentTypeSocialMediaContent,
}

// ConsentTypeFor maps a proof type to the consent type recorded on grant.
func ConsentTypeFor(t ProofType) ConsentType {
	if ct, ok := consentTypeByProofType[t]; ok {
		return ct
	}
	return ConsentTypeGeneralUsage
}

func (c ConsentType) String() string { return string(c) }

// ConsentState is the lifecycle state of a consent record.
type ConsentState string

const (
	ConsentPending ConsentState = "pending"
	ConsentGranted ConsentState = "granted"
	ConsentRevoked ConsentState = "revoked"

	// Synthetic statuses reported by status queries, never persisted:
	// ConsentNotRequired for proofs that need no consent and carry no
	// record, ConsentMissing for proofs that need consent but have no
	// record yet.
	ConsentNotRequired ConsentState = "not_required"
	ConsentMissing     ConsentState = "missing"
)

func (s ConsentState) String() string { return string(s) }
