package service

import (
	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// minBcryptCost is the floor for the bcrypt cost factor. Anything lower is a
// configuration error, not a tunable.
const minBcryptCost = 10

// bcryptPasswordService implements PasswordService using bcrypt.
// bcrypt is deliberately slow (budget ~100ms+ per call at cost 12); callers
// must treat Hash and Verify as blocking CPU work.
type bcryptPasswordService struct {
	cost int
}

// Hash hashes a plaintext password with the configured cost factor.
func (b *bcryptPasswordService) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.cost)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// Verify performs a constant-time comparison via bcrypt's own verifier.
func (b *bcryptPasswordService) Verify(plain string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// argon2idPasswordService implements PasswordService using Argon2id.
type argon2idPasswordService struct {
	hasher *pwdhash.PasswordHasher
}

func (a *argon2idPasswordService) Hash(plain string) (string, error) {
	hash, err := a.hasher.Hash([]byte(plain))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash password")
	}
	return hash, nil
}

func (a *argon2idPasswordService) Verify(plain string, hash string) bool {
	ok, err := a.hasher.Verify([]byte(plain), hash)
	if err != nil {
		return false
	}
	return ok
}

// NewPasswordService creates a PasswordService for the configured algorithm.
// "bcrypt" (the default) requires a cost factor of at least 10; "argon2id"
// uses the moderate pwdhash policy.
func NewPasswordService(algorithm string, bcryptCost int) (PasswordService, error) {
	switch algorithm {
	case "bcrypt":
		if bcryptCost < minBcryptCost {
			return nil, apperrors.Wrap(apperrors.ErrConfiguration, "bcrypt cost must be at least 10")
		}
		if bcryptCost > bcrypt.MaxCost {
			return nil, apperrors.Wrap(apperrors.ErrConfiguration, "bcrypt cost exceeds maximum")
		}
		return &bcryptPasswordService{cost: bcryptCost}, nil

	case "argon2id":
		hasher, err := pwdhash.New(
			pwdhash.WithPolicy(pwdhash.PolicyModerate),
		)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConfiguration, "failed to create argon2id hasher")
		}
		return &argon2idPasswordService{hasher: hasher}, nil

	default:
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, "unsupported password hasher: "+algorithm)
	}
}
