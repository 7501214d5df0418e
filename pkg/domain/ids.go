package domain

import (
	"github.com/google/uuid"

	dErrors "proofguard/pkg/domain-errors"
)

// Typed identifiers prevent cross-entity ID mix-ups at compile time.
// Construct via the Parse functions at trust boundaries; direct casting
// bypasses validation.
type (
	ProofID   uuid.UUID
	UserID    uuid.UUID
	CompanyID uuid.UUID
)

// ParseProofID validates and returns a ProofID.
func ParseProofID(s string) (ProofID, error) {
	u, err := parseUUID(s)
	return ProofID(u), err
}

// ParseUserID validates and returns a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	return UserID(u), err
}

// ParseCompanyID validates and returns a CompanyID.
func ParseCompanyID(s string) (CompanyID, error) {
	u, err := parseUUID(s)
	return CompanyID(u), err
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}

func (id ProofID) String() string   { return uuid.UUID(id).String() }
func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id CompanyID) String() string { return uuid.UUID(id).String() }

func (id ProofID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CompanyID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
