package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "proofguard/pkg/domain-errors"
)

func TestParseIDs(t *testing.T) {
	valid := uuid.NewString()

	t.Run("valid UUIDs parse for every ID type", func(t *testing.T) {
		proofID, err := ParseProofID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, proofID.String())

		userID, err := ParseUserID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, userID.String())

		companyID, err := ParseCompanyID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, companyID.String())
	})

	t.Run("rejections carry the invalid-input code", func(t *testing.T) {
		for name, input := range map[string]string{
			"empty":    "",
			"garbage":  "not-a-uuid",
			"nil uuid": "00000000-0000-0000-0000-000000000000",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := ParseProofID(input)
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			})
		}
	})

	t.Run("IsNil detects the zero value", func(t *testing.T) {
		var id ProofID
		assert.True(t, id.IsNil())

		parsed, err := ParseProofID(valid)
		require.NoError(t, err)
		assert.False(t, parsed.IsNil())
	})
}
