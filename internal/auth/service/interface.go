// Package service provides technical services for credential lifecycle
// operations: password hashing, JWT issuance, reset token generation, CSRF
// token derivation, and audit event signing.
package service

import (
	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
)

// PasswordService defines operations for password hashing and verification.
// Implementations must use a slow adaptive hash and verify in constant time.
// Plaintext passwords are never stored or logged.
type PasswordService interface {
	// Hash hashes a plaintext password.
	Hash(plain string) (string, error)

	// Verify compares a plaintext password against a stored hash in constant
	// time. Returns false for any malformed hash rather than erroring, so
	// callers get a uniform authentication failure.
	Verify(plain string, hash string) bool
}

// TokenService defines signed token issuance and validation for the
// credential store. Access tokens are short-lived; refresh tokens carry a
// refresh type marker and are additionally tracked server-side by hash.
type TokenService interface {
	// IssuePair creates a signed access/refresh token pair for the user.
	IssuePair(userID uuid.UUID) (*authDomain.TokenPair, error)

	// ParseAccess validates an access token and returns the user ID.
	ParseAccess(token string) (uuid.UUID, error)

	// ParseRefresh validates a refresh token (signature, expiry, and the
	// refresh type marker) and returns the user ID.
	ParseRefresh(token string) (uuid.UUID, error)

	// HashToken hashes an opaque token with SHA-256 for server-side storage.
	HashToken(token string) string
}

// ResetTokenService generates high-entropy password reset tokens. Only the
// one-way hash is ever persisted; the plain token travels to the user once.
type ResetTokenService interface {
	// Generate creates a new cryptographically secure random token.
	// Returns the plain token and its SHA-256 hash.
	Generate() (plainToken string, tokenHash string, err error)

	// HashToken hashes a presented token for comparison against storage.
	HashToken(plainToken string) string
}

// CsrfService derives verifiable, unpredictable tokens from a session-scoped
// secret (double-submit pattern). The secret never leaves the server; only
// derived tokens are transmitted, and one secret validates many tokens
// without server-side token storage.
type CsrfService interface {
	// GenerateSecret creates a new random session secret.
	GenerateSecret() (string, error)

	// CreateToken derives a fresh token from the session secret.
	CreateToken(secret string) (string, error)

	// VerifyToken checks a presented token against the session secret.
	VerifyToken(secret string, token string) bool
}

// AuditSigner signs audit events so tampering with stored records is
// detectable. The signing key is derived from the field encryption key.
type AuditSigner interface {
	// Sign computes the HMAC signature for an audit event.
	Sign(key []byte, event *authDomain.AuditEvent) ([]byte, error)

	// Verify checks an event's stored signature. Returns
	// domain.ErrSignatureInvalid on mismatch.
	Verify(key []byte, event *authDomain.AuditEvent) error
}
