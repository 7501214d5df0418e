package security

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"proofguard/internal/cache"
	"proofguard/internal/proof"
	"proofguard/pkg/domain"
)

type recordingSink struct {
	published []proof.SecurityEvent
	err       error
}

func (s *recordingSink) Publish(_ context.Context, event proof.SecurityEvent) error {
	if s.err != nil {
		return s.err
	}
	s.published = append(s.published, event)
	return nil
}

type fixture struct {
	svc   *Service
	views *proof.InMemoryViewCounter
	cache *cache.InMemory
	sink  *recordingSink
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	views := proof.NewInMemoryViewCounter()
	tokenCache := cache.NewInMemory()
	eventSink := &recordingSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc, err := NewService(views, tokenCache, eventSink, logger, nil, Config{
		MasterSecret: "test-master-secret",
	})
	require.NoError(t, err)

	return &fixture{svc: svc, views: views, cache: tokenCache, sink: eventSink}
}

func newTestProof(companyID domain.CompanyID, proofType domain.ProofType) *proof.Proof {
	return &proof.Proof{
		ID:          domain.ProofID(uuid.New()),
		CompanyID:   companyID,
		Type:        proofType,
		Status:      domain.ProofStatusActive,
		Title:       "Acme rollout",
		Description: "How Acme cut onboarding time in half.",
		Metadata:    proof.Metadata{SchemaVersion: proof.SchemaVersion},
	}
}

func newPrincipal(companyID domain.CompanyID, role domain.Role) domain.Principal {
	return domain.Principal{
		UserID:    domain.UserID(uuid.New()),
		CompanyID: companyID,
		Role:      role,
	}
}
