// Package domain defines the identity and security domain models: users,
// refresh token records, and audit events with severity classification.
package domain

// Provider identifies how a user authenticates.
type Provider string

const (
	// LocalProvider indicates email/password authentication.
	LocalProvider Provider = "local"

	// GoogleProvider indicates Google OAuth first-login accounts.
	GoogleProvider Provider = "google"
)

// Action is the closed set of security-relevant event kinds recorded in the
// audit log. Severity is derived statically from the action.
type Action string

const (
	ActionRegister             Action = "register"
	ActionLogin                Action = "login"
	ActionLoginFailed          Action = "login_failed"
	ActionLogout               Action = "logout"
	ActionTokenRefresh         Action = "token_refresh"
	ActionPasswordChange       Action = "password_change"
	ActionPasswordResetRequest Action = "password_reset_request"
	ActionPasswordReset        Action = "password_reset"
	ActionUnauthorizedAccess   Action = "unauthorized_access"
	ActionRateLimitExceeded    Action = "rate_limit_exceeded"
	ActionSuspiciousActivity   Action = "suspicious_activity"
	ActionDataCreate           Action = "data_create"
	ActionDataUpdate           Action = "data_update"
	ActionDataDelete           Action = "data_delete"
)

// Severity is the coarse triage label attached to audit events.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityByAction is the static action-to-severity mapping. Failed logins,
// unauthorized access, rate-limit triggers, and suspicious activity are HIGH;
// destructive mutations and password/security changes are MEDIUM; the rest LOW.
// CRITICAL is reserved for tamper detection during signature verification and
// is never assigned at record time.
var severityByAction = map[Action]Severity{
	ActionRegister:             SeverityLow,
	ActionLogin:                SeverityLow,
	ActionLoginFailed:          SeverityHigh,
	ActionLogout:               SeverityLow,
	ActionTokenRefresh:         SeverityLow,
	ActionPasswordChange:       SeverityMedium,
	ActionPasswordResetRequest: SeverityLow,
	ActionPasswordReset:        SeverityMedium,
	ActionUnauthorizedAccess:   SeverityHigh,
	ActionRateLimitExceeded:    SeverityHigh,
	ActionSuspiciousActivity:   SeverityHigh,
	ActionDataCreate:           SeverityLow,
	ActionDataUpdate:           SeverityLow,
	ActionDataDelete:           SeverityMedium,
}

// SeverityFor returns the severity for an action, defaulting to LOW for
// unknown actions so a mapping gap never drops an event.
func SeverityFor(action Action) Severity {
	if severity, ok := severityByAction[action]; ok {
		return severity
	}
	return SeverityLow
}

// AnonymousActor is recorded when no authenticated user is associated with an
// event (failed logins, suspicious unauthenticated traffic).
const AnonymousActor = "anonymous"
