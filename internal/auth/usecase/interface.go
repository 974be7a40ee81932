// Package usecase implements business logic orchestration for credential
// lifecycle and audit logging operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
)

// UserRepository defines persistence operations for users. Implementations
// apply the field codec at this boundary: name and email are encrypted on
// write and decrypted on read, so use cases only ever see plaintext.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *authDomain.User) error

	// Get retrieves a user by ID without credential material.
	Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// GetWithCredentials retrieves a user by ID including the password hash
	// and reset token fields. Only credential paths may use it.
	GetWithCredentials(ctx context.Context, userID uuid.UUID) (*authDomain.User, error)

	// GetByResetTokenHash resolves a user by the hash of an outstanding
	// password reset token, including credentials.
	GetByResetTokenHash(ctx context.Context, hash string) (*authDomain.User, error)

	// GetByEmail resolves a user by email address, including credentials.
	// Email ciphertext is non-deterministic, so implementations scan
	// candidate rows and decrypt-and-compare case-insensitively.
	GetByEmail(ctx context.Context, email string) (*authDomain.User, error)

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *authDomain.User) error
}

// RefreshTokenRepository defines persistence for per-user refresh token
// records. The active set per user is bounded; pruning and eviction are
// orchestrated by the use case through these primitives.
type RefreshTokenRepository interface {
	// Add inserts a new refresh token record.
	Add(ctx context.Context, record *authDomain.RefreshTokenRecord) error

	// ListByUser returns all records for a user, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*authDomain.RefreshTokenRecord, error)

	// Revoke marks the record with the given token hash revoked.
	// Revoked records are kept for the audit trail, not deleted.
	Revoke(ctx context.Context, userID uuid.UUID, tokenHash string) error

	// RevokeAll marks every record for the user revoked.
	RevokeAll(ctx context.Context, userID uuid.UUID) error

	// Delete removes a single record. Used for oldest-first eviction when
	// the active set would exceed its cap.
	Delete(ctx context.Context, recordID uuid.UUID) error

	// PruneInactive deletes the user's expired and revoked records.
	// Called opportunistically whenever the list is touched.
	PruneInactive(ctx context.Context, userID uuid.UUID) error

	// DeleteExpired removes all records expired before the cutoff, across
	// users. Used by the clean-expired-tokens command.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditEventRepository defines persistence for append-only audit events.
type AuditEventRepository interface {
	// Create appends an audit event.
	Create(ctx context.Context, event *authDomain.AuditEvent) error

	// ListByActor returns an actor's events, newest first, with optional
	// action/date filtering and pagination.
	ListByActor(
		ctx context.Context,
		actor string,
		filter *authDomain.AuditFilter,
		offset, limit int,
	) ([]*authDomain.AuditEvent, error)

	// List returns events across actors, oldest first, for signature
	// verification sweeps.
	List(ctx context.Context, offset, limit int) ([]*authDomain.AuditEvent, error)

	// Summarize aggregates an actor's events since the cutoff.
	Summarize(ctx context.Context, actor string, since time.Time) (*authDomain.SecuritySummary, error)

	// DeleteOlderThan removes events created before the cutoff. Used by the
	// clean-audit-events command; the application itself never deletes.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// CredentialUseCase orchestrates registration, login, token rotation, and
// password lifecycle operations.
type CredentialUseCase interface {
	// Register creates a local account and issues the first token pair.
	Register(ctx context.Context, name, email, password string) (*authDomain.User, *authDomain.TokenPair, error)

	// Login verifies credentials and issues a token pair. The failure mode
	// is identical for unknown emails and wrong passwords.
	Login(ctx context.Context, email, password string) (*authDomain.User, *authDomain.TokenPair, error)

	// Refresh rotates a refresh token: validates it, revokes it, and issues
	// a fresh pair. A rotated-out token replayed later fails validation.
	Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error)

	// Logout revokes the presented refresh token.
	Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error

	// Authenticate validates an access token and loads the user.
	Authenticate(ctx context.Context, accessToken string) (*authDomain.User, error)

	// ValidateRefreshToken reports whether a matching, non-revoked,
	// non-expired record exists for the token.
	ValidateRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string) (bool, error)

	// ChangePassword rehashes and persists a new password, then revokes all
	// refresh tokens except the one carrying the request (re-added so the
	// current session survives while all others must re-authenticate).
	ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, currentRefreshToken string) error

	// RequestPasswordReset generates a reset token for the account, if it
	// exists. The returned plain token is empty when no account matched;
	// callers must answer identically either way.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	// ResetPassword redeems a reset token within its expiry window, sets the
	// new password, and revokes all refresh tokens.
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuditUseCase records and queries audit events. Recording is best-effort:
// it never fails the calling operation.
type AuditUseCase interface {
	// LogEvent enqueues an audit event for background persistence. It never
	// blocks and never returns an error; failures are logged and counted.
	LogEvent(entry *Entry)

	// ListForUser returns a user's events, newest first.
	ListForUser(
		ctx context.Context,
		actor string,
		filter *authDomain.AuditFilter,
		offset, limit int,
	) ([]*authDomain.AuditEvent, error)

	// SecuritySummary aggregates a user's events over a trailing window.
	SecuritySummary(ctx context.Context, actor string, window time.Duration) (*authDomain.SecuritySummary, error)

	// VerifySignatures re-checks stored signatures over a page of events. It
	// returns how many events the page held and the IDs that failed, so
	// callers can page until a short page signals the end.
	VerifySignatures(ctx context.Context, offset, limit int) (int, []uuid.UUID, error)

	// DeleteOlderThan removes events older than the cutoff (operational
	// retention, never called by request paths).
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)

	// Dropped reports how many events were discarded due to backpressure.
	Dropped() int64

	// Close stops the background worker after draining queued events.
	Close(ctx context.Context) error
}

// Entry is the caller-facing shape of an audit event. Severity and timestamps
// are filled in by the use case; Details is encrypted before persistence.
type Entry struct {
	Actor      string
	Action     authDomain.Action
	Resource   string
	ResourceID string
	Details    string
	IPAddress  string
	UserAgent  string
	SessionID  string
	Success    bool
}
