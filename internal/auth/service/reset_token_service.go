package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// resetTokenService implements ResetTokenService using SHA-256 for token hashing.
type resetTokenService struct{}

// Generate creates a new cryptographically secure 32-byte random token.
// The token is base64 URL-encoded for easy transmission. Returns the plain
// token and its SHA-256 hash; only the hash is ever persisted.
func (r *resetTokenService) Generate() (plainToken string, tokenHash string, err error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate random token")
	}

	plainToken = base64.URLEncoding.EncodeToString(randomBytes)
	tokenHash = r.HashToken(plainToken)

	return plainToken, tokenHash, nil
}

// HashToken hashes a plain text token using SHA-256.
// Returns the hash as a hexadecimal string.
func (r *resetTokenService) HashToken(plainToken string) string {
	hash := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(hash[:])
}

// NewResetTokenService creates a ResetTokenService using SHA-256 hashing.
func NewResetTokenService() ResetTokenService {
	return &resetTokenService{}
}
