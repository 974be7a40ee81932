package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenService_Generate(t *testing.T) {
	svc := NewResetTokenService()

	plain, hash, err := svc.Generate()
	require.NoError(t, err)

	assert.NotEmpty(t, plain)
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, svc.HashToken(plain))

	// High entropy: two tokens never collide.
	otherPlain, otherHash, err := svc.Generate()
	require.NoError(t, err)
	assert.NotEqual(t, plain, otherPlain)
	assert.NotEqual(t, hash, otherHash)
}

func TestResetTokenService_HashIsDeterministic(t *testing.T) {
	svc := NewResetTokenService()

	assert.Equal(t, svc.HashToken("token"), svc.HashToken("token"))
	assert.NotEqual(t, svc.HashToken("token"), svc.HashToken("token2"))
}
