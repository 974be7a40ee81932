package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

type auditSigner struct{}

// NewAuditSigner creates an HMAC-based audit event signer using HKDF-SHA256
// for key derivation and HMAC-SHA256 for signature generation.
func NewAuditSigner() AuditSigner {
	return &auditSigner{}
}

// deriveSigningKey uses HKDF-SHA256 to derive a 32-byte signing key from the
// field encryption key. Separates encryption key usage from signing key usage.
// Info parameter: "audit-event-signing-v1" (versioned for future algorithm changes).
func (a *auditSigner) deriveSigningKey(encryptionKey []byte) ([]byte, error) {
	info := []byte("audit-event-signing-v1")
	kdf := hkdf.New(sha256.New, encryptionKey, nil, info)

	signingKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		return nil, err
	}

	return signingKey, nil
}

// canonicalize converts an audit event to its canonical byte representation.
// Variable-length fields are length-prefixed to prevent ambiguity. Details is
// included in its stored (encrypted) form so verification never needs the
// plaintext.
func (a *auditSigner) canonicalize(event *authDomain.AuditEvent) []byte {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.Actor))
	buf = appendLengthPrefixed(buf, []byte(string(event.Action)))
	buf = appendLengthPrefixed(buf, []byte(event.Resource))
	buf = appendLengthPrefixed(buf, []byte(event.ResourceID))
	buf = appendLengthPrefixed(buf, []byte(event.Details))
	buf = appendLengthPrefixed(buf, []byte(event.IPAddress))
	buf = appendLengthPrefixed(buf, []byte(event.UserAgent))
	buf = appendLengthPrefixed(buf, []byte(event.SessionID))

	if event.Success {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	buf = appendLengthPrefixed(buf, []byte(string(event.Severity)))

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(event.CreatedAt.UnixNano()))
	buf = append(buf, timeBytes...)

	return buf
}

// appendLengthPrefixed adds a 4-byte big-endian length prefix followed by data.
func appendLengthPrefixed(buf []byte, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	buf = append(buf, length...)
	buf = append(buf, data...)
	return buf
}

// Sign generates the HMAC-SHA256 signature for the audit event.
func (a *auditSigner) Sign(key []byte, event *authDomain.AuditEvent) ([]byte, error) {
	signingKey, err := a.deriveSigningKey(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to derive signing key")
	}
	defer zero(signingKey)

	mac := hmac.New(sha256.New, signingKey)
	mac.Write(a.canonicalize(event))

	return mac.Sum(nil), nil
}

// Verify checks if the audit event signature is valid.
// Returns nil if valid, ErrSignatureInvalid if tampered or invalid.
func (a *auditSigner) Verify(key []byte, event *authDomain.AuditEvent) error {
	expected, err := a.Sign(key, event)
	if err != nil {
		return err
	}

	if !hmac.Equal(event.Signature, expected) {
		return authDomain.ErrSignatureInvalid
	}

	return nil
}

// zero overwrites sensitive data in memory with zeros.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
