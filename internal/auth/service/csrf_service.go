package service

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// hmacCsrfService implements CsrfService with HMAC-SHA256 token derivation
// (double-submit pattern). A token is "base64url(nonce).hex(mac)" where
// mac = HMAC-SHA256(secret, nonce). The same secret validates any number of
// distinct tokens, so nothing is stored server-side per token, and a token
// stays valid until the session secret changes.
type hmacCsrfService struct{}

// NewCsrfService creates an HMAC-based CsrfService.
func NewCsrfService() CsrfService {
	return &hmacCsrfService{}
}

// GenerateSecret creates a new random 32-byte session secret.
func (h *hmacCsrfService) GenerateSecret() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", apperrors.Wrap(err, "failed to generate csrf secret")
	}
	return base64.URLEncoding.EncodeToString(secret), nil
}

// CreateToken derives a fresh token from the session secret. Each call uses
// a new random nonce, so issued tokens differ while all verifying against
// the same secret.
func (h *hmacCsrfService) CreateToken(secret string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", apperrors.Wrap(err, "failed to generate csrf nonce")
	}

	return base64.URLEncoding.EncodeToString(nonce) + "." + h.sign(secret, nonce), nil
}

// VerifyToken recomputes the MAC over the token's nonce and compares in
// constant time.
func (h *hmacCsrfService) VerifyToken(secret string, token string) bool {
	nonceB64, macHex, found := strings.Cut(token, ".")
	if !found {
		return false
	}

	nonce, err := base64.URLEncoding.DecodeString(nonceB64)
	if err != nil {
		return false
	}

	return hmac.Equal([]byte(h.sign(secret, nonce)), []byte(macHex))
}

// sign computes hex(HMAC-SHA256(secret, nonce)).
func (h *hmacCsrfService) sign(secret string, nonce []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(nonce)
	return hex.EncodeToString(mac.Sum(nil))
}
