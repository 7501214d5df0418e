package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsentTypeFor(t *testing.T) {
	cases := map[ProofType]ConsentType{
		ProofTypeTestimonial:  ConsentTypeTestimonialUsage,
		ProofTypeCaseStudy:    ConsentTypeCaseStudyPublication,
		ProofTypeClientReview: ConsentTypeReviewDisplay,
		ProofTypeSocial:       ConsentTypeSocialMediaContent,
		ProofTypePerformance:  ConsentTypeGeneralUsage,
		ProofTypeTrust:        ConsentTypeGeneralUsage,
		ProofTypeProfessional: ConsentTypeGeneralUsage,
	}
	for proofType, want := range cases {
		assert.Equal(t, want, ConsentTypeFor(proofType), "proof type %s", proofType)
	}

	t.Run("unmapped types fall back to general usage", func(t *testing.T) {
		assert.Equal(t, ConsentTypeGeneralUsage, ConsentTypeFor(ProofType("brand_new_type")))
	})
}
