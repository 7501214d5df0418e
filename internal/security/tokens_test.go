package security

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofguard/pkg/domain"
	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/requestcontext"
)

func TestAccessTokenLifecycle(t *testing.T) {
	company := domain.CompanyID(uuid.New())
	userID := domain.UserID(uuid.New())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("issued token validates for its user and proof", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		valid, err := f.svc.ValidateAccessToken(ctx, token, p, userID)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("token is bound to the user", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)

		valid, err := f.svc.ValidateAccessToken(ctx, token, p, domain.UserID(uuid.New()))
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("token is bound to the proof", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)
		other := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)

		valid, err := f.svc.ValidateAccessToken(ctx, token, other, userID)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("revoked token fails even though the signature still verifies", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)
		require.NoError(t, f.svc.RevokeAccessToken(ctx, p, userID))

		valid, err := f.svc.ValidateAccessToken(ctx, token, p, userID)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("expired token fails", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)

		later := requestcontext.WithTime(context.Background(), now.Add(2*time.Hour))
		valid, err := f.svc.ValidateAccessToken(later, token, p, userID)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("tampered token fails", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)

		valid, err := f.svc.ValidateAccessToken(ctx, token+"x", p, userID)
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("reissuing rotates the active token", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		first, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)
		second, err := f.svc.IssueAccessToken(requestcontext.WithTime(context.Background(), now.Add(time.Minute)), p, userID, 1)
		require.NoError(t, err)
		require.NotEqual(t, first, second)

		valid, err := f.svc.ValidateAccessToken(ctx, first, p, userID)
		require.NoError(t, err)
		assert.False(t, valid, "superseded token must be dead")

		valid, err = f.svc.ValidateAccessToken(ctx, second, p, userID)
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("non-positive TTL is rejected", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		_, err := f.svc.IssueAccessToken(ctx, p, userID, 0)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("a different master secret invalidates existing tokens", func(t *testing.T) {
		f := newFixture(t)
		p := newTestProof(company, domain.ProofTypeTestimonial)

		token, err := f.svc.IssueAccessToken(ctx, p, userID, 1)
		require.NoError(t, err)

		rotated, err := NewService(f.views, f.cache, f.sink, f.svc.logger, nil, Config{
			MasterSecret: "rotated-secret",
		})
		require.NoError(t, err)

		valid, err := rotated.ValidateAccessToken(ctx, token, p, userID)
		require.NoError(t, err)
		assert.False(t, valid)
	})
}
