package service

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
)

func testAuditEvent() *authDomain.AuditEvent {
	return &authDomain.AuditEvent{
		ID:        uuid.Must(uuid.NewV7()),
		Actor:     uuid.Must(uuid.NewV7()).String(),
		Action:    authDomain.ActionLoginFailed,
		Resource:  "auth",
		IPAddress: "203.0.113.7",
		UserAgent: "Mozilla/5.0",
		SessionID: "sess-1",
		Success:   false,
		Severity:  authDomain.SeverityHigh,
		CreatedAt: time.Now().UTC(),
	}
}

func TestAuditSigner_SignAndVerify(t *testing.T) {
	signer := NewAuditSigner()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	event := testAuditEvent()

	signature, err := signer.Sign(key, event)
	require.NoError(t, err)
	require.Len(t, signature, 32)

	event.Signature = signature
	assert.NoError(t, signer.Verify(key, event))
}

func TestAuditSigner_DetectsTampering(t *testing.T) {
	signer := NewAuditSigner()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	event := testAuditEvent()
	signature, err := signer.Sign(key, event)
	require.NoError(t, err)
	event.Signature = signature

	t.Run("MutatedSuccessFlag", func(t *testing.T) {
		tampered := *event
		tampered.Success = true
		assert.ErrorIs(t, signer.Verify(key, &tampered), authDomain.ErrSignatureInvalid)
	})

	t.Run("MutatedActor", func(t *testing.T) {
		tampered := *event
		tampered.Actor = "someone-else"
		assert.ErrorIs(t, signer.Verify(key, &tampered), authDomain.ErrSignatureInvalid)
	})

	t.Run("WrongKey", func(t *testing.T) {
		otherKey := make([]byte, 32)
		_, err := rand.Read(otherKey)
		require.NoError(t, err)
		assert.ErrorIs(t, signer.Verify(otherKey, event), authDomain.ErrSignatureInvalid)
	})
}

func TestAuditSigner_FieldShiftIsNotAmbiguous(t *testing.T) {
	signer := NewAuditSigner()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	// Length-prefixed canonical encoding: moving bytes between adjacent
	// fields must change the signature.
	event := testAuditEvent()
	event.Resource = "transactions"
	event.ResourceID = "42"

	shifted := *event
	shifted.Resource = "transactions4"
	shifted.ResourceID = "2"

	sig, err := signer.Sign(key, event)
	require.NoError(t, err)
	shiftedSig, err := signer.Sign(key, &shifted)
	require.NoError(t, err)

	assert.NotEqual(t, sig, shiftedSig)
}
