package security

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"proofguard/internal/proof"
	"proofguard/pkg/domain"
	dErrors "proofguard/pkg/domain-errors"
	"proofguard/pkg/requestcontext"
	"proofguard/pkg/sentinel"
)

const tokenIssuer = "proofguard"

// accessTokenKey builds the cache key under which an issued token is
// mirrored. Deleting the key revokes the token independently of its
// cryptographic validity.
func accessTokenKey(userID domain.UserID, proofID domain.ProofID) string {
	return "proof_access_token:" + userID.String() + ":" + proofID.String()
}

// accessClaims binds a token to one user's access to one proof.
type accessClaims struct {
	ProofID string `json:"proof_id"`
	UserID  string `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueAccessToken produces a signed ephemeral token scoping userID's
// access to the proof, and mirrors it in the distributed cache with the
// same TTL so it can be revoked unilaterally cluster-wide.
func (s *Service) IssueAccessToken(ctx context.Context, p *proof.Proof, userID domain.UserID, ttlHours int) (string, error) {
	if ttlHours <= 0 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "token TTL must be positive")
	}

	now := requestcontext.Now(ctx)
	ttl := time.Duration(ttlHours) * time.Hour

	claims := accessClaims{
		ProofID: p.ID.String(),
		UserID:  userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign access token")
	}

	if err := s.cache.Set(ctx, accessTokenKey(userID, p.ID), token, ttl); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "cache access token")
	}
	return token, nil
}

// ValidateAccessToken accepts a token only when its signature verifies, its
// embedded proof and user match the call arguments, it has not expired, and
// it still matches the cached value. A revoked or rotated token fails even
// if cryptographically well-formed. The error return is reserved for cache
// collaborator failures.
func (s *Service) ValidateAccessToken(ctx context.Context, token string, p *proof.Proof, userID domain.UserID) (bool, error) {
	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(func() time.Time { return requestcontext.Now(ctx) }))
	if err != nil || !parsed.Valid {
		s.metrics.ObserveTokenValidation("invalid")
		return false, nil
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || claims.ProofID != p.ID.String() || claims.UserID != userID.String() {
		s.metrics.ObserveTokenValidation("invalid")
		return false, nil
	}

	cached, err := s.cache.Get(ctx, accessTokenKey(userID, p.ID))
	if errors.Is(err, sentinel.ErrNotFound) {
		s.metrics.ObserveTokenValidation("revoked")
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "access token cache lookup failed")
	}
	if subtle.ConstantTimeCompare([]byte(cached), []byte(token)) != 1 {
		s.metrics.ObserveTokenValidation("revoked")
		return false, nil
	}

	s.metrics.ObserveTokenValidation("valid")
	return true, nil
}

// RevokeAccessToken deletes the cached token mirror; subsequent validation
// of the previously issued token fails.
func (s *Service) RevokeAccessToken(ctx context.Context, p *proof.Proof, userID domain.UserID) error {
	if err := s.cache.Delete(ctx, accessTokenKey(userID, p.ID)); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}
