package dto

import (
	"time"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
)

// UserResponse represents a user in API responses. Credential material is
// never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *authDomain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Provider:  string(user.Provider),
		CreatedAt: user.CreatedAt,
	}
}

// TokenResponse carries an issued access/refresh token pair.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// MapTokenPairToResponse converts a domain token pair to an API response.
func MapTokenPairToResponse(pair *authDomain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}
}

// AuthResponse is returned by register and login: the user plus their first
// token pair.
type AuthResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

// MessageResponse is a neutral informational response.
type MessageResponse struct {
	Message string `json:"message"`
}

// CsrfTokenResponse carries a freshly derived CSRF token.
type CsrfTokenResponse struct {
	CsrfToken string `json:"csrf_token"`
}

// AuditEventResponse represents an audit event in API responses. Details is
// already decrypted by the use case; the signature stays internal.
type AuditEventResponse struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Success    bool      `json:"success"`
	Severity   string    `json:"severity"`
	CreatedAt  time.Time `json:"created_at"`
}

// MapAuditEventToResponse converts a domain audit event to an API response.
func MapAuditEventToResponse(event *authDomain.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:         event.ID.String(),
		Action:     string(event.Action),
		Resource:   event.Resource,
		ResourceID: event.ResourceID,
		Details:    event.Details,
		IPAddress:  event.IPAddress,
		UserAgent:  event.UserAgent,
		Success:    event.Success,
		Severity:   string(event.Severity),
		CreatedAt:  event.CreatedAt,
	}
}

// SecuritySummaryResponse aggregates a user's recent security activity.
type SecuritySummaryResponse struct {
	WindowHours  float64 `json:"window_hours"`
	TotalEvents  int     `json:"total_events"`
	FailedLogins int     `json:"failed_logins"`
	HighSeverity int     `json:"high_severity"`
}

// MapSecuritySummaryToResponse converts a domain summary to an API response.
func MapSecuritySummaryToResponse(summary *authDomain.SecuritySummary) SecuritySummaryResponse {
	return SecuritySummaryResponse{
		WindowHours:  summary.Window.Hours(),
		TotalEvents:  summary.TotalEvents,
		FailedLogins: summary.FailedLogins,
		HighSeverity: summary.HighSeverity,
	}
}
