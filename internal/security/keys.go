package security

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	dErrors "proofguard/pkg/domain-errors"
)

// accessTokenKeyPurpose labels the HKDF derivation for access-token signing
// so other purposes derived from the same master secret can never collide.
const accessTokenKeyPurpose = "proofguard/access-token-signing/v1"

// deriveKey expands the server-held master secret into a purpose-bound
// 256-bit key. Rotating the master secret invalidates everything derived
// from it at once.
func deriveKey(masterSecret, purpose string) ([]byte, error) {
	if masterSecret == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "master secret must not be empty")
	}
	r := hkdf.New(sha256.New, []byte(masterSecret), nil, []byte(purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "derive signing key")
	}
	return key, nil
}
