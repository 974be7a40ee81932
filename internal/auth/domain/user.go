package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxActiveRefreshTokens bounds the active refresh token set per user.
// Adding a token beyond the cap evicts the oldest active one.
const MaxActiveRefreshTokens = 5

// User is the identity record. Name and Email are plaintext in memory; the
// repository layer encrypts them at rest, so resolving a user by email
// requires a decrypt-and-compare scan (ciphertext is non-deterministic).
// PasswordHash is excluded from default reads and only loaded on credential
// paths.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Provider     Provider

	// Password reset state: only the one-way hash of the reset token is
	// stored, alongside its short expiry.
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RefreshTokenRecord is owned exclusively by a User. Only the SHA-256 hash of
// the opaque token is persisted. A record is usable iff it is neither revoked
// nor expired; revocation marks, it never deletes, preserving the audit trail.
// Terminal states (rotated-out, revoked, expired) are absorbing.
type RefreshTokenRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Usable reports whether the record can still redeem a refresh.
func (r *RefreshTokenRecord) Usable(now time.Time) bool {
	return !r.Revoked && now.Before(r.ExpiresAt)
}

// TokenPair is the result of credential issuance: a short-lived access token
// and a longer-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}
