package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsrfService(t *testing.T) {
	svc := NewCsrfService()

	secret, err := svc.GenerateSecret()
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	t.Run("TokenVerifiesAgainstOwnSecret", func(t *testing.T) {
		token, err := svc.CreateToken(secret)
		require.NoError(t, err)

		// Tokens are reusable: verification is not single-use.
		assert.True(t, svc.VerifyToken(secret, token))
		assert.True(t, svc.VerifyToken(secret, token))
	})

	t.Run("TokenNeverVerifiesAgainstOtherSecret", func(t *testing.T) {
		other, err := svc.GenerateSecret()
		require.NoError(t, err)

		token, err := svc.CreateToken(secret)
		require.NoError(t, err)

		assert.False(t, svc.VerifyToken(other, token))
	})

	t.Run("ManyDistinctTokensPerSecret", func(t *testing.T) {
		first, err := svc.CreateToken(secret)
		require.NoError(t, err)
		second, err := svc.CreateToken(secret)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.True(t, svc.VerifyToken(secret, first))
		assert.True(t, svc.VerifyToken(secret, second))
	})

	t.Run("MalformedTokensFail", func(t *testing.T) {
		assert.False(t, svc.VerifyToken(secret, ""))
		assert.False(t, svc.VerifyToken(secret, "no-dot-separator"))
		assert.False(t, svc.VerifyToken(secret, "%%%.abcdef"))
		assert.False(t, svc.VerifyToken(secret, "YWJjZA==.not-the-right-mac"))
	})

	t.Run("SecretsAreUnique", func(t *testing.T) {
		other, err := svc.GenerateSecret()
		require.NoError(t, err)
		assert.NotEqual(t, secret, other)
	})
}
