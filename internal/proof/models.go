package proof

import (
	"time"

	"proofguard/pkg/domain"
)

// Proof is a published trust artifact (testimonial, case study,
// certification, metric). The surrounding application owns the row; this
// core reads and writes the metadata document and, on consent transitions,
// the status field.
//
// Invariants:
//   - Status transitions driven here: consent grant -> active,
//     consent revocation -> archived (terminal for display purposes).
//   - Every access decision rejects cross-company access outright.
type Proof struct {
	ID          domain.ProofID    `json:"id"`
	CompanyID   domain.CompanyID  `json:"company_id"`
	Type        domain.ProofType  `json:"type"`
	Status      domain.ProofStatus `json:"status"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Metadata    Metadata          `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// consentRequiringTypes lists proof types that always need a consent flow,
// regardless of the PII flag.
var consentRequiringTypes = map[domain.ProofType]bool{
	domain.ProofTypeTestimonial:  true,
	domain.ProofTypeCaseStudy:    true,
	domain.ProofTypeClientReview: true,
	domain.ProofTypeSocial:       true,
}

// RequiresConsent reports whether this proof needs a data subject's consent
// before its identifying content may be displayed.
func (p *Proof) RequiresConsent() bool {
	return consentRequiringTypes[p.Type] || p.Metadata.ContainsPII
}

// Metadata is the versioned document embedded in the proof row. This core
// exclusively manages the consent, security, restriction, and event
// sub-documents; Attributes carries whatever else the application stored.
type Metadata struct {
	SchemaVersion int                     `json:"schema_version"`
	ContainsPII   bool                    `json:"contains_pii,omitempty"`
	Consent       *ConsentRecord          `json:"consent,omitempty"`
	Security      *SecurityClassification `json:"security_classification,omitempty"`
	Restrictions  *AccessRestrictions     `json:"access_restrictions,omitempty"`
	Events        []SecurityEvent         `json:"security_events,omitempty"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
}

// ConsentRecord captures a data subject's permission to use their identity
// in published proof content, with the evidence needed to stand behind it.
//
// Invariants:
//   - Status is pending, granted, or revoked.
//   - GrantedAt is present iff Status == granted.
//   - Once AnonymizedAt is set, the customer identity fields are absent.
type ConsentRecord struct {
	Status           domain.ConsentState `json:"status"`
	CustomerName     string              `json:"customer_name,omitempty"`
	CustomerEmail    string              `json:"customer_email,omitempty"`
	CustomerPhone    string              `json:"customer_phone,omitempty"`
	ConsentType      domain.ConsentType  `json:"consent_type"`
	Token            string              `json:"token,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	GrantedAt        *time.Time          `json:"granted_at,omitempty"`
	RevokedAt        *time.Time          `json:"revoked_at,omitempty"`
	RevocationReason string              `json:"revocation_reason,omitempty"`
	IPAddress        string              `json:"ip_address,omitempty"`
	Details          map[string]string   `json:"details,omitempty"`
	EmailSentAt      *time.Time          `json:"email_sent_at,omitempty"`
	AnonymizedAt     *time.Time          `json:"anonymized_at,omitempty"`
}

// ApplyGrant records the data subject's agreement along with the request
// evidence. The caller verifies the token first.
func (c *ConsentRecord) ApplyGrant(now time.Time, ip string, details map[string]string) {
	c.Status = domain.ConsentGranted
	granted := now
	c.GrantedAt = &granted
	c.IPAddress = ip
	c.Details = details
}

// ApplyRevocation withdraws consent. Revoking an already-revoked record
// still succeeds and refreshes the reason.
func (c *ConsentRecord) ApplyRevocation(now time.Time, reason string) {
	c.Status = domain.ConsentRevoked
	revoked := now
	c.RevokedAt = &revoked
	c.RevocationReason = reason
}

// Anonymize strips the customer identity fields while keeping the
// non-identifying consent evidence intact.
func (c *ConsentRecord) Anonymize(now time.Time) {
	c.CustomerName = ""
	c.CustomerEmail = ""
	c.CustomerPhone = ""
	anonymized := now
	c.AnonymizedAt = &anonymized
}

// ExpiresAt computes the end of the retention window for a granted consent.
// Returns false when the consent has not been granted.
func (c *ConsentRecord) ExpiresAt(retentionYears int) (time.Time, bool) {
	if c.Status != domain.ConsentGranted || c.GrantedAt == nil {
		return time.Time{}, false
	}
	return c.GrantedAt.AddDate(retentionYears, 0, 0), true
}

// SecurityClassification records an explicit sensitivity ranking.
// Explicit classification overrides auto-classification for subsequent
// reads; auto-classified entries may be overwritten by explicit ones but
// never the other way around silently.
type SecurityClassification struct {
	Level          domain.SecurityLevel `json:"level"`
	Reason         string               `json:"reason,omitempty"`
	AutoClassified bool                 `json:"auto_classified"`
	ClassifiedBy   domain.UserID        `json:"classified_by"`
	ClassifiedAt   time.Time            `json:"classified_at"`
}

// TimeWindow bounds access to the half-open hour range [StartHour, EndHour).
type TimeWindow struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

// Contains reports whether the hour falls inside the window.
func (w TimeWindow) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// AccessRestrictions are contextual gates layered on top of clearance-based
// access. Pointer fields distinguish "not set" from zero values so merges
// only touch restrictions the caller supplied.
type AccessRestrictions struct {
	IPWhitelist          []string      `json:"ip_whitelist,omitempty"`
	TimeRestrictions     *TimeWindow   `json:"time_restrictions,omitempty"`
	WatermarkingRequired *bool         `json:"watermarking_required,omitempty"`
	ViewLimit            *int          `json:"view_limit,omitempty"`
	AppliedBy            domain.UserID `json:"applied_by"`
	AppliedAt            time.Time     `json:"applied_at"`
}

// Merge overlays the supplied restrictions onto the existing set. Absent
// fields keep their current value; supplied fields replace it.
func (r *AccessRestrictions) Merge(in AccessRestrictions, by domain.UserID, now time.Time) {
	if in.IPWhitelist != nil {
		r.IPWhitelist = in.IPWhitelist
	}
	if in.TimeRestrictions != nil {
		r.TimeRestrictions = in.TimeRestrictions
	}
	if in.WatermarkingRequired != nil {
		r.WatermarkingRequired = in.WatermarkingRequired
	}
	if in.ViewLimit != nil {
		r.ViewLimit = in.ViewLimit
	}
	r.AppliedBy = by
	r.AppliedAt = now
}

// SecurityEvent is one entry of the append-only audit trail embedded in the
// proof's metadata. This core never prunes the list; retention is an
// external concern.
type SecurityEvent struct {
	EventType string            `json:"event_type"`
	ProofID   domain.ProofID    `json:"proof_id"`
	UserID    domain.UserID     `json:"user_id"`
	Timestamp time.Time         `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}
