// Package security ranks each proof's sensitivity, compares it against a
// requester's clearance, enforces contextual access restrictions, scans for
// unintentionally leaked personal data, and issues revocable signed access
// tokens.
//
// The package never consults the consent module; request handlers compose
// the two. Tenant isolation is absolute: no clearance, restriction, or
// token outcome can cross a company boundary.
package security

import (
	"context"
	"log/slog"
	"regexp"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"proofguard/internal/cache"
	"proofguard/internal/proof"
	"proofguard/internal/security/metrics"
	"proofguard/internal/security/sink"
	"proofguard/pkg/domain"
	"proofguard/pkg/requestcontext"
)

// autoLevelByType is the deterministic base classification for proofs that
// were never explicitly classified. Re-derived on every read, not stored.
var autoLevelByType = map[domain.ProofType]domain.SecurityLevel{
	domain.ProofTypeTestimonial:  domain.LevelInternal,
	domain.ProofTypeCaseStudy:    domain.LevelInternal,
	domain.ProofTypeClientReview: domain.LevelInternal,
	domain.ProofTypeSocial:       domain.LevelPublic,
	domain.ProofTypeProfessional: domain.LevelInternal,
	domain.ProofTypePerformance:  domain.LevelConfidential,
	domain.ProofTypeTrust:        domain.LevelInternal,
}

// Config tunes the security service.
type Config struct {
	// MasterSecret seeds the HKDF-derived access-token signing key.
	MasterSecret string
	// Clearances overrides the role-to-clearance table; nil means
	// domain.DefaultClearanceTable().
	Clearances domain.ClearanceTable
	// PhonePattern overrides the national phone-number detector used by the
	// sensitive-data scanner.
	PhonePattern string
}

// Service is the Security Classifier & Access Guard.
type Service struct {
	clearances domain.ClearanceTable
	views      proof.ViewCounter
	cache      cache.Cache
	sink       sink.Sink
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer

	signingKey []byte
	phoneRe    *regexp.Regexp
}

func NewService(views proof.ViewCounter, tokenCache cache.Cache, eventSink sink.Sink, logger *slog.Logger, m *metrics.Metrics, cfg Config) (*Service, error) {
	key, err := deriveKey(cfg.MasterSecret, accessTokenKeyPurpose)
	if err != nil {
		return nil, err
	}

	clearances := cfg.Clearances
	if clearances == nil {
		clearances = domain.DefaultClearanceTable()
	}

	phoneRe := defaultPhoneRe
	if cfg.PhonePattern != "" {
		phoneRe, err = regexp.Compile(cfg.PhonePattern)
		if err != nil {
			return nil, err
		}
	}

	return &Service{
		clearances: clearances,
		views:      views,
		cache:      tokenCache,
		sink:       eventSink,
		logger:     logger,
		metrics:    m,
		tracer:     otel.Tracer("proofguard/security"),
		signingKey: key,
		phoneRe:    phoneRe,
	}, nil
}

// ClearanceFor resolves a principal's clearance level from the role table.
func (s *Service) ClearanceFor(p domain.Principal) domain.SecurityLevel {
	return s.clearances.ClearanceFor(p.Role)
}

// LevelOf returns the proof's effective security level: the explicit
// classification when present, otherwise a deterministic auto-classification
// from the proof type, elevated to at least confidential when the document
// is flagged as containing PII.
func (s *Service) LevelOf(p *proof.Proof) domain.SecurityLevel {
	if sc := p.Metadata.Security; sc != nil && sc.Level.IsValid() {
		return sc.Level
	}

	level, ok := autoLevelByType[p.Type]
	if !ok {
		level = domain.LevelInternal
	}
	if p.Metadata.ContainsPII && !level.AtLeast(domain.LevelConfidential) {
		level = domain.LevelConfidential
	}
	return level
}

// SetLevel explicitly classifies the proof. Unknown level names are
// rejected without mutation. Explicit classification overrides
// auto-classification for all subsequent reads.
func (s *Service) SetLevel(ctx context.Context, p *proof.Proof, levelName, reason string) bool {
	level, err := domain.ParseSecurityLevel(levelName)
	if err != nil {
		s.logger.Warn("classification rejected: unknown level",
			"proof_id", p.ID.String(), "level", levelName)
		return false
	}

	p.Metadata.Security = &proof.SecurityClassification{
		Level:          level,
		Reason:         reason,
		AutoClassified: false,
		ClassifiedBy:   requestcontext.Principal(ctx).UserID,
		ClassifiedAt:   requestcontext.Now(ctx),
	}
	return true
}

// CanAccess decides whether the principal may view sensitive content of the
// proof. Tenant isolation is checked before any clearance comparison: a
// cross-company request is denied regardless of role.
func (s *Service) CanAccess(ctx context.Context, p domain.Principal, pr *proof.Proof) bool {
	_, span := s.tracer.Start(ctx, "security.CanAccess")
	defer span.End()

	if p.CompanyID != pr.CompanyID {
		s.metrics.ObserveAccessDecision("denied_tenant")
		return false
	}
	if !s.ClearanceFor(p).AtLeast(s.LevelOf(pr)) {
		s.metrics.ObserveAccessDecision("denied_clearance")
		return false
	}
	s.metrics.ObserveAccessDecision("allowed")
	return true
}
