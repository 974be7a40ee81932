package domain

import (
	"github.com/ledgerly/securecore/internal/errors"
)

// Authentication and credential lifecycle errors.
var (
	// ErrUserNotFound indicates no user matched the given identifier.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrEmailTaken indicates the email already belongs to an account.
	ErrEmailTaken = errors.Wrap(errors.ErrConflict, "email already registered")

	// ErrInvalidCredentials is the generic authentication failure. It is
	// deliberately identical for unknown emails, wrong passwords, and
	// invalid, expired, or reused tokens to prevent user enumeration.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrResetTokenInvalid indicates a password reset token that does not
	// match or has passed its expiry window.
	ErrResetTokenInvalid = errors.Wrap(errors.ErrUnauthorized, "invalid or expired token")

	// ErrPasswordUnchanged indicates the new password equals the current one.
	ErrPasswordUnchanged = errors.Wrap(errors.ErrInvalidInput, "new password must differ from current password")

	// ErrSignatureInvalid indicates an audit event failed signature
	// verification and may have been tampered with.
	ErrSignatureInvalid = errors.New("audit event signature invalid")
)
