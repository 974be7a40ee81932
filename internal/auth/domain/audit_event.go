package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is an append-only record of a security-relevant operation.
// Details is encrypted at rest (it may carry error messages referencing PII).
// Events are never mutated or deleted by the application; retention is an
// operational concern handled by the clean-audit-events command.
type AuditEvent struct {
	ID         uuid.UUID
	Actor      string // user ID or AnonymousActor
	Action     Action
	Resource   string
	ResourceID string
	Details    string
	IPAddress  string
	UserAgent  string
	SessionID  string
	Success    bool
	Severity   Severity
	Signature  []byte
	CreatedAt  time.Time
}

// AuditFilter narrows audit event queries. Nil fields mean no filter; both
// time boundaries are inclusive.
type AuditFilter struct {
	Action        *Action
	CreatedAtFrom *time.Time
	CreatedAtTo   *time.Time
}

// SecuritySummary aggregates a user's recent activity over a trailing window.
type SecuritySummary struct {
	Window       time.Duration
	TotalEvents  int
	FailedLogins int
	HighSeverity int // HIGH and CRITICAL combined
}
