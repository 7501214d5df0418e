// Package consent implements evidence-grade tracking of a data subject's
// permission to use their name, likeness, or words in published proof
// content: token issuance and verification, grant and revocation,
// retention-window computation, anonymization, and bulk status queries.
//
// Mutating operations work on the in-memory proof the caller loaded; the
// caller persists the result transactionally. Validation failures (bad
// token, missing record) return false so handlers can branch without error
// plumbing; collaborator failures surface as errors.
package consent

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"proofguard/internal/consent/metrics"
	"proofguard/internal/proof"
	"proofguard/pkg/domain"
	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/requestcontext"
)

// DefaultRetentionYears is the consent retention window. Two years matches
// the observed behavior of the previous system; jurisdiction-specific
// retention periods may differ, so the value is injectable via Config.
const DefaultRetentionYears = 2

// consentTokenBytes sizes the random consent token; 32 bytes of entropy
// encode to a fixed 43-character URL-safe string.
const consentTokenBytes = 32

// bulkStatusBatchSize bounds one store lookup during bulk status queries.
const bulkStatusBatchSize = 100

// CustomerData identifies the data subject a consent request is addressed to.
type CustomerData struct {
	Name  string
	Email string
	Phone string
}

// Status is the caller-facing summary of a proof's consent state.
type Status struct {
	HasConsentData bool                `json:"has_consent_data"`
	Status         domain.ConsentState `json:"status"`
	CustomerName   string              `json:"customer_name,omitempty"`
	CustomerEmail  string              `json:"customer_email,omitempty"`
	ConsentType    domain.ConsentType  `json:"consent_type,omitempty"`
	ExpiresAt      *time.Time          `json:"expires_at,omitempty"`
}

// ExpiringConsent summarizes a proof whose retention window is closing.
// Deliberately not the full proof: listings must never carry the consent
// token (it is the grant credential) or the data subject's contact details.
type ExpiringConsent struct {
	ProofID       domain.ProofID     `json:"proof_id"`
	Title         string             `json:"title"`
	ConsentType   domain.ConsentType `json:"consent_type"`
	ExpiresAt     time.Time          `json:"expires_at"`
	ExpiresInDays int                `json:"expires_in_days"`
}

// Config tunes the consent service.
type Config struct {
	// RetentionYears overrides the consent retention window; zero means
	// DefaultRetentionYears.
	RetentionYears int
	// WithdrawalBaseURL is the public base URL withdrawal links are built
	// against, e.g. "https://app.example.com".
	WithdrawalBaseURL string
}

// Service is the Consent Manager. It keeps orchestration out of handlers
// and the pure state transitions on the proof models.
type Service struct {
	store   proof.Store
	mailer  Mailer
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	retentionYears    int
	withdrawalBaseURL string
}

func NewService(store proof.Store, mailer Mailer, logger *slog.Logger, m *metrics.Metrics, cfg Config) *Service {
	years := cfg.RetentionYears
	if years <= 0 {
		years = DefaultRetentionYears
	}
	return &Service{
		store:             store,
		mailer:            mailer,
		logger:            logger,
		metrics:           m,
		tracer:            otel.Tracer("proofguard/consent"),
		retentionYears:    years,
		withdrawalBaseURL: cfg.WithdrawalBaseURL,
	}
}

// RequiresConsent reports whether the proof needs a consent flow at all.
func (s *Service) RequiresConsent(p *proof.Proof) bool {
	return p.RequiresConsent()
}

// GenerateToken creates an unguessable consent token and initializes the
// pending consent record on the proof. The proof's lifecycle status is not
// touched; only a grant does that.
func (s *Service) GenerateToken(ctx context.Context, p *proof.Proof, customer CustomerData) (string, error) {
	token, err := newConsentToken()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate consent token")
	}

	p.Metadata.Consent = &proof.ConsentRecord{
		Status:        domain.ConsentPending,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		ConsentType:   domain.ConsentTypeFor(p.Type),
		Token:         token,
		CreatedAt:     requestcontext.Now(ctx),
	}

	s.metrics.ObserveTransition("token_issued")
	return token, nil
}

// VerifyToken checks a presented token against the stored one in constant
// time. Any mismatch, including a missing consent record, is false.
func (s *Service) VerifyToken(p *proof.Proof, token string) bool {
	c := p.Metadata.Consent
	if c == nil || c.Token == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Token), []byte(token)) == 1
}

// Grant records the data subject's agreement evidenced by a valid token and
// activates the proof. An invalid token leaves the proof untouched.
func (s *Service) Grant(ctx context.Context, p *proof.Proof, token string, details map[string]string) bool {
	ctx, span := s.tracer.Start(ctx, "consent.Grant")
	defer span.End()

	if !s.VerifyToken(p, token) {
		s.logger.Warn("consent grant rejected: invalid token", "proof_id", p.ID.String())
		return false
	}

	if device := requestcontext.Device(ctx); device != "" {
		if details == nil {
			details = make(map[string]string)
		}
		details["device"] = device
	}

	p.Metadata.Consent.ApplyGrant(requestcontext.Now(ctx), requestcontext.ClientIP(ctx), details)
	p.Status = domain.ProofStatusActive

	s.metrics.ObserveTransition("granted")
	s.logger.Info("consent granted",
		"proof_id", p.ID.String(),
		"consent_type", p.Metadata.Consent.ConsentType.String(),
	)
	return true
}

// Revoke withdraws consent and archives the proof. It requires an existing
// consent record in any state; revoking an already-revoked consent still
// succeeds and refreshes the reason.
func (s *Service) Revoke(ctx context.Context, p *proof.Proof, reason string) bool {
	c := p.Metadata.Consent
	if c == nil {
		return false
	}

	c.ApplyRevocation(requestcontext.Now(ctx), reason)
	p.Status = domain.ProofStatusArchived

	s.metrics.ObserveTransition("revoked")
	s.logger.Info("consent revoked", "proof_id", p.ID.String(), "reason", reason)
	return true
}

// StatusOf summarizes the proof's consent state for display gating.
func (s *Service) StatusOf(ctx context.Context, p *proof.Proof) Status {
	c := p.Metadata.Consent
	if c == nil {
		if !p.RequiresConsent() {
			return Status{HasConsentData: false, Status: domain.ConsentNotRequired}
		}
		return Status{HasConsentData: false, Status: domain.ConsentMissing}
	}

	st := Status{
		HasConsentData: true,
		Status:         c.Status,
		CustomerName:   c.CustomerName,
		CustomerEmail:  c.CustomerEmail,
		ConsentType:    c.ConsentType,
	}
	if expires, ok := c.ExpiresAt(s.retentionYears); ok {
		st.ExpiresAt = &expires
	}
	return st
}

// BulkStatus resolves consent summaries for listing UIs. Lookups are
// batched and fetched concurrently; a missing proof is reported as a
// missing-status entry rather than failing the batch. Proofs of other
// companies are indistinguishable from missing ones, so the listing cannot
// be used to probe another tenant's consent state.
func (s *Service) BulkStatus(ctx context.Context, companyID domain.CompanyID, ids []domain.ProofID) (map[domain.ProofID]Status, error) {
	ctx, span := s.tracer.Start(ctx, "consent.BulkStatus")
	defer span.End()

	out := make(map[domain.ProofID]Status, len(ids))
	for _, id := range ids {
		out[id] = Status{HasConsentData: false, Status: domain.ConsentMissing}
	}

	batches := make([][]domain.ProofID, 0, len(ids)/bulkStatusBatchSize+1)
	for start := 0; start < len(ids); start += bulkStatusBatchSize {
		end := min(start+bulkStatusBatchSize, len(ids))
		batches = append(batches, ids[start:end])
	}

	results := make([][]*proof.Proof, len(batches))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, batch := range batches {
		g.Go(func() error {
			proofs, err := s.store.FindByIDs(gctx, batch)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeUnavailable, "bulk consent status lookup failed")
			}
			results[i] = proofs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, proofs := range results {
		for _, p := range proofs {
			if p.CompanyID != companyID {
				continue
			}
			out[p.ID] = s.StatusOf(ctx, p)
		}
	}
	return out, nil
}

// Expiring returns the company's granted consents whose retention window
// ends within the given number of days. Already-expired consents are
// excluded; they are a remediation case, not an expiring one.
func (s *Service) Expiring(ctx context.Context, companyID domain.CompanyID, withinDays int) ([]ExpiringConsent, error) {
	ctx, span := s.tracer.Start(ctx, "consent.Expiring")
	defer span.End()

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.SweepLatency.Observe(time.Since(start).Seconds())
		}
	}()

	proofs, err := s.store.ListWithGrantedConsent(ctx, companyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "list granted consents failed")
	}

	now := requestcontext.Now(ctx)
	window := time.Duration(withinDays) * 24 * time.Hour

	var out []ExpiringConsent
	for _, p := range proofs {
		expires, ok := p.Metadata.Consent.ExpiresAt(s.retentionYears)
		if !ok {
			continue
		}
		remaining := expires.Sub(now)
		if remaining <= 0 || remaining > window {
			continue
		}
		out = append(out, ExpiringConsent{
			ProofID:       p.ID,
			Title:         p.Title,
			ConsentType:   p.Metadata.Consent.ConsentType,
			ExpiresAt:     expires,
			ExpiresInDays: int(remaining / (24 * time.Hour)),
		})
	}
	return out, nil
}

// SendRequest hands the consent request to the mail collaborator and, on
// success, records the attempt on the consent record. A delivery failure
// leaves consent state untouched.
func (s *Service) SendRequest(ctx context.Context, p *proof.Proof, token string, customer CustomerData) bool {
	c := p.Metadata.Consent
	if c == nil {
		return false
	}

	req := ConsentRequest{
		To:           customer.Email,
		CustomerName: customer.Name,
		ProofTitle:   p.Title,
		ConsentType:  c.ConsentType,
		Token:        token,
	}
	if err := s.mailer.SendConsentRequest(ctx, req); err != nil {
		s.metrics.ObserveMailHandoff("failed")
		s.logger.Warn("consent request hand-off failed", "proof_id", p.ID.String(), "error", err)
		return false
	}

	sentAt := requestcontext.Now(ctx)
	c.EmailSentAt = &sentAt
	s.metrics.ObserveMailHandoff("ok")
	return true
}

// WithdrawalLink builds the tenant-scoped URL a data subject uses to
// withdraw a granted consent. Returns "" unless consent is granted.
func (s *Service) WithdrawalLink(p *proof.Proof) string {
	c := p.Metadata.Consent
	if c == nil || c.Status != domain.ConsentGranted {
		return ""
	}
	return fmt.Sprintf("%s/companies/%s/proofs/%s/consent-withdraw",
		s.withdrawalBaseURL, p.CompanyID.String(), p.ID.String())
}

// Anonymize satisfies a right-to-erasure request: the customer identity
// fields are stripped from the consent record and the proof's public text
// is replaced, while non-identifying analytics stay intact.
func (s *Service) Anonymize(ctx context.Context, p *proof.Proof) bool {
	c := p.Metadata.Consent
	if c == nil {
		return false
	}

	c.Anonymize(requestcontext.Now(ctx))
	p.Title = "Anonymized " + p.Type.String()
	p.Description = "Content removed at the data subject's request."

	s.metrics.ObserveTransition("anonymized")
	s.logger.Info("consent data anonymized", "proof_id", p.ID.String())
	return true
}

// RetentionYears exposes the configured retention window for callers that
// render expiry information.
func (s *Service) RetentionYears() int {
	return s.retentionYears
}

func newConsentToken() (string, error) {
	buf := make([]byte, consentTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
