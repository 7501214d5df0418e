package security

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofguard/internal/cache"
	"proofguard/internal/proof"
	"proofguard/pkg/domain"
)

func findingsByPattern(findings []Finding) map[string][]Finding {
	out := make(map[string][]Finding)
	for _, f := range findings {
		out[f.Pattern] = append(out[f.Pattern], f)
	}
	return out
}

func TestScan(t *testing.T) {
	f := newFixture(t)
	company := domain.CompanyID(uuid.New())

	t.Run("clean proof yields no findings", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		assert.Empty(t, f.svc.Scan(p))
	})

	t.Run("email address in the description", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		p.Description = "Reach out to jane.doe@example.com for details."

		byPattern := findingsByPattern(f.svc.Scan(p))
		require.Len(t, byPattern["email"], 1)
		assert.Equal(t, "description", byPattern["email"][0].Field)
		assert.Equal(t, "jane.doe@example.com", byPattern["email"][0].Excerpt)
	})

	t.Run("credit card number in the title", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		p.Title = "Card 4111 1111 1111 1111 on file"

		byPattern := findingsByPattern(f.svc.Scan(p))
		require.NotEmpty(t, byPattern["credit_card"])
		assert.Equal(t, "title", byPattern["credit_card"][0].Field)
	})

	t.Run("phone number with country prefix", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		p.Description = "Call +1 555-123-4567 anytime."

		byPattern := findingsByPattern(f.svc.Scan(p))
		require.NotEmpty(t, byPattern["phone"])
	})

	t.Run("currency amounts", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		p.Description = "The deal closed at $1,250,000.00 and 900 EUR in fees."

		byPattern := findingsByPattern(f.svc.Scan(p))
		assert.Len(t, byPattern["currency"], 2)
	})

	t.Run("nested metadata attributes are scanned with dotted paths", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		p.Metadata.Attributes = map[string]any{
			"contact": map[string]any{"email": "ops@example.com"},
			"quotes":  []any{"plain text", "billing at finance@example.com"},
			"count":   float64(3),
		}

		byPattern := findingsByPattern(f.svc.Scan(p))
		require.Len(t, byPattern["email"], 2)

		fields := []string{byPattern["email"][0].Field, byPattern["email"][1].Field}
		assert.Contains(t, fields, "metadata.contact.email")
		assert.Contains(t, fields, "metadata.quotes[1]")
	})

	t.Run("multiple detectors can hit the same field", func(t *testing.T) {
		p := newTestProof(company, domain.ProofTypeTestimonial)
		p.Description = "Invoice $500.00 sent to jane@example.com"

		byPattern := findingsByPattern(f.svc.Scan(p))
		assert.NotEmpty(t, byPattern["email"])
		assert.NotEmpty(t, byPattern["currency"])
	})
}

func TestScanPhonePatternOverride(t *testing.T) {
	f := newFixture(t)
	company := domain.CompanyID(uuid.New())

	svc, err := NewService(f.views, cache.NewInMemory(), f.sink, f.svc.logger, nil, Config{
		MasterSecret: "test-master-secret",
		PhonePattern: `\b0\d{2}[ -]\d{3}[ -]\d{4}\b`,
	})
	require.NoError(t, err)

	p := &proof.Proof{
		ID:          domain.ProofID(uuid.New()),
		CompanyID:   company,
		Type:        domain.ProofTypeTestimonial,
		Description: "Office line 020-555-1234.",
	}

	byPattern := findingsByPattern(svc.Scan(p))
	require.NotEmpty(t, byPattern["phone"])

	t.Run("invalid override pattern fails construction", func(t *testing.T) {
		_, err := NewService(f.views, cache.NewInMemory(), f.sink, f.svc.logger, nil, Config{
			MasterSecret: "test-master-secret",
			PhonePattern: `(`,
		})
		require.Error(t, err)
	})
}
