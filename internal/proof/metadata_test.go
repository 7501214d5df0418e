package proof

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofguard/pkg/domain"
)

func TestUnmarshalDocument(t *testing.T) {
	t.Run("empty document yields fresh current-version metadata", func(t *testing.T) {
		m, err := UnmarshalDocument(nil)
		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, m.SchemaVersion)
		assert.Nil(t, m.Consent)
	})

	t.Run("current version round-trips", func(t *testing.T) {
		granted := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
		in := Metadata{
			ContainsPII: true,
			Consent: &ConsentRecord{
				Status:        domain.ConsentGranted,
				CustomerName:  "Jane Doe",
				CustomerEmail: "jane@example.com",
				ConsentType:   domain.ConsentTypeTestimonialUsage,
				CreatedAt:     granted,
				GrantedAt:     &granted,
			},
			Attributes: map[string]any{"campaign": "spring-launch"},
		}

		b, err := in.MarshalDocument()
		require.NoError(t, err)

		out, err := UnmarshalDocument(b)
		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, out.SchemaVersion)
		assert.True(t, out.ContainsPII)
		require.NotNil(t, out.Consent)
		assert.Equal(t, domain.ConsentGranted, out.Consent.Status)
		assert.Equal(t, "Jane Doe", out.Consent.CustomerName)
		require.NotNil(t, out.Consent.GrantedAt)
		assert.True(t, out.Consent.GrantedAt.Equal(granted))
		assert.Equal(t, "spring-launch", out.Attributes["campaign"])
	})

	t.Run("malformed document is an invalid-input error", func(t *testing.T) {
		_, err := UnmarshalDocument([]byte("{not json"))
		require.Error(t, err)
	})
}

func TestMigrateLegacyDocument(t *testing.T) {
	t.Run("flat map lifts managed keys into typed sub-documents", func(t *testing.T) {
		legacy := []byte(`{
			"contains_pii": true,
			"consent": {
				"status": "granted",
				"customer_name": "Jane Doe",
				"customer_email": "jane@example.com",
				"consent_type": "testimonial_usage",
				"created_at": "2023-06-01T00:00:00Z",
				"granted_at": "2023-06-01T00:00:00Z"
			},
			"security_level": "confidential",
			"campaign": "spring-launch",
			"view_count": 7
		}`)

		m, err := UnmarshalDocument(legacy)
		require.NoError(t, err)

		assert.Equal(t, SchemaVersion, m.SchemaVersion)
		assert.True(t, m.ContainsPII)

		require.NotNil(t, m.Consent)
		assert.Equal(t, domain.ConsentGranted, m.Consent.Status)
		assert.Equal(t, "Jane Doe", m.Consent.CustomerName)

		require.NotNil(t, m.Security)
		assert.Equal(t, domain.LevelConfidential, m.Security.Level)

		assert.Equal(t, "spring-launch", m.Attributes["campaign"])
		assert.Equal(t, float64(7), m.Attributes["view_count"])
		assert.NotContains(t, m.Attributes, "consent")
		assert.NotContains(t, m.Attributes, "security_level")
	})

	t.Run("full classification record wins over the bare level name", func(t *testing.T) {
		legacy := []byte(`{
			"security_classification": {"level": "restricted", "auto_classified": false},
			"security_level": "public"
		}`)

		m, err := UnmarshalDocument(legacy)
		require.NoError(t, err)
		require.NotNil(t, m.Security)
		assert.Equal(t, domain.LevelRestricted, m.Security.Level)
	})

	t.Run("unknown bare level name is dropped", func(t *testing.T) {
		m, err := UnmarshalDocument([]byte(`{"security_level": "mystery"}`))
		require.NoError(t, err)
		assert.Nil(t, m.Security)
	})

	t.Run("legacy restrictions and events survive the migration", func(t *testing.T) {
		legacy := []byte(`{
			"access_restrictions": {"ip_whitelist": ["203.0.113.7"], "view_limit": 3},
			"security_events": [
				{"event_type": "access_denied", "timestamp": "2025-01-15T10:00:00Z"}
			]
		}`)

		m, err := UnmarshalDocument(legacy)
		require.NoError(t, err)

		require.NotNil(t, m.Restrictions)
		assert.Equal(t, []string{"203.0.113.7"}, m.Restrictions.IPWhitelist)
		require.NotNil(t, m.Restrictions.ViewLimit)
		assert.Equal(t, 3, *m.Restrictions.ViewLimit)

		require.Len(t, m.Events, 1)
		assert.Equal(t, "access_denied", m.Events[0].EventType)
	})

	t.Run("migrated document marshals as the current version", func(t *testing.T) {
		m, err := UnmarshalDocument([]byte(`{"contains_pii": true}`))
		require.NoError(t, err)

		b, err := m.MarshalDocument()
		require.NoError(t, err)

		out, err := UnmarshalDocument(b)
		require.NoError(t, err)
		assert.Equal(t, SchemaVersion, out.SchemaVersion)
		assert.True(t, out.ContainsPII)
	})
}

func TestRequiresConsent(t *testing.T) {
	cases := []struct {
		proofType domain.ProofType
		pii       bool
		want      bool
	}{
		{domain.ProofTypeTestimonial, false, true},
		{domain.ProofTypeCaseStudy, false, true},
		{domain.ProofTypeClientReview, false, true},
		{domain.ProofTypeSocial, false, true},
		{domain.ProofTypePerformance, false, false},
		{domain.ProofTypeTrust, false, false},
		{domain.ProofTypePerformance, true, true},
	}
	for _, tc := range cases {
		p := &Proof{Type: tc.proofType, Metadata: Metadata{ContainsPII: tc.pii}}
		assert.Equal(t, tc.want, p.RequiresConsent(), "type %s pii %v", tc.proofType, tc.pii)
	}
}

func TestTimeWindowContains(t *testing.T) {
	w := TimeWindow{StartHour: 9, EndHour: 17}
	assert.True(t, w.Contains(9))
	assert.True(t, w.Contains(16))
	assert.False(t, w.Contains(17))
	assert.False(t, w.Contains(8))
}
