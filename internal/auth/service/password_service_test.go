package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

func TestNewPasswordService(t *testing.T) {
	t.Run("BcryptValidCost", func(t *testing.T) {
		svc, err := NewPasswordService("bcrypt", 10)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("BcryptCostTooLow", func(t *testing.T) {
		svc, err := NewPasswordService("bcrypt", 8)
		assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
		assert.Nil(t, svc)
	})

	t.Run("Argon2id", func(t *testing.T) {
		svc, err := NewPasswordService("argon2id", 0)
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("UnsupportedAlgorithm", func(t *testing.T) {
		svc, err := NewPasswordService("md5", 12)
		assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
		assert.Nil(t, svc)
	})
}

func TestPasswordService_HashAndVerify(t *testing.T) {
	// Cost 10 keeps the test fast; production default is 12.
	algorithms := map[string]PasswordService{}

	bcryptSvc, err := NewPasswordService("bcrypt", 10)
	require.NoError(t, err)
	algorithms["bcrypt"] = bcryptSvc

	argonSvc, err := NewPasswordService("argon2id", 0)
	require.NoError(t, err)
	algorithms["argon2id"] = argonSvc

	for name, svc := range algorithms {
		t.Run(name, func(t *testing.T) {
			hash, err := svc.Hash("Secret123!")
			require.NoError(t, err)
			assert.NotEqual(t, "Secret123!", hash)

			assert.True(t, svc.Verify("Secret123!", hash))
			assert.False(t, svc.Verify("Secret123?", hash))
			assert.False(t, svc.Verify("", hash))
			assert.False(t, svc.Verify("Secret123!", "not-a-hash"))
		})
	}
}

func TestPasswordService_HashesAreSalted(t *testing.T) {
	svc, err := NewPasswordService("bcrypt", 10)
	require.NoError(t, err)

	first, err := svc.Hash("Secret123!")
	require.NoError(t, err)
	second, err := svc.Hash("Secret123!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, svc.Verify("Secret123!", first))
	assert.True(t, svc.Verify("Secret123!", second))
}
