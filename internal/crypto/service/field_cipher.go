package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// delimiter separates the hex-encoded nonce from the hex-encoded ciphertext.
// Its absence marks a value as plaintext written before encryption was enabled.
const delimiter = ":"

// fieldCipher implements FieldCipher using AES-256-GCM.
//
// Security properties:
//   - 256-bit key, validated at construction time
//   - 12-byte nonce, randomly generated per encryption and never reused
//   - 16-byte authentication tag appended to the ciphertext by GCM
//
// The random per-call nonce makes ciphertext non-deterministic, which is
// required for semantic security but means equality search on encrypted
// columns is impossible. Lookup by an encrypted value (e.g. email) has to
// decrypt-and-compare across candidate rows instead of querying by
// ciphertext equality.
//
// The cipher instance is stateless and safe for concurrent use.
type fieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher creates a FieldCipher keyed by the process-wide encryption key.
// The key must be exactly 32 bytes; anything else is a configuration error.
func NewFieldCipher(key []byte) (FieldCipher, error) {
	if len(key) != 32 {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "encryption key must be exactly 32 bytes")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create AES cipher")
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create GCM")
	}

	return &fieldCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with a fresh random nonce and returns
// "hex(nonce):hex(ciphertext)".
func (f *fieldCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, f.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", apperrors.Wrap(err, "failed to generate nonce")
	}

	ciphertext := f.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(nonce) + delimiter + hex.EncodeToString(ciphertext), nil
}

// Decrypt splits on the delimiter, recovers the nonce, and decrypts.
//
// Values that do not look like ciphertext (no delimiter, or segments that are
// not valid hex) are returned unchanged: they predate encryption and are
// already plaintext. A value that does parse as ciphertext but fails
// authentication propagates an error — returning garbage on a financial
// field is worse than failing the request.
func (f *fieldCipher) Decrypt(ciphertext string) (string, error) {
	nonceHex, ctHex, found := strings.Cut(ciphertext, delimiter)
	if !found {
		return ciphertext, nil
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != f.aead.NonceSize() {
		return ciphertext, nil
	}

	ct, err := hex.DecodeString(ctHex)
	if err != nil {
		return ciphertext, nil
	}

	plaintext, err := f.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to decrypt field")
	}

	return string(plaintext), nil
}

// EncryptAmount encodes the amount as a decimal string and encrypts it.
func (f *fieldCipher) EncryptAmount(amount float64) (string, error) {
	return f.Encrypt(strconv.FormatFloat(amount, 'f', -1, 64))
}

// DecryptAmount decrypts and parses an amount, defaulting to 0 when the
// decrypted value does not parse as a number.
func (f *fieldCipher) DecryptAmount(ciphertext string) (float64, error) {
	plaintext, err := f.Decrypt(ciphertext)
	if err != nil {
		return 0, err
	}

	amount, err := strconv.ParseFloat(plaintext, 64)
	if err != nil {
		return 0, nil
	}

	return amount, nil
}
