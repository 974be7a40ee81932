package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeverityFor(t *testing.T) {
	tests := []struct {
		action Action
		want   Severity
	}{
		{ActionLoginFailed, SeverityHigh},
		{ActionUnauthorizedAccess, SeverityHigh},
		{ActionRateLimitExceeded, SeverityHigh},
		{ActionSuspiciousActivity, SeverityHigh},
		{ActionPasswordChange, SeverityMedium},
		{ActionPasswordReset, SeverityMedium},
		{ActionDataDelete, SeverityMedium},
		{ActionLogin, SeverityLow},
		{ActionLogout, SeverityLow},
		{ActionTokenRefresh, SeverityLow},
		{Action("unknown_action"), SeverityLow},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityFor(tt.action))
		})
	}
}

func TestRefreshTokenRecord_Usable(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		record RefreshTokenRecord
		want   bool
	}{
		{
			name:   "ActiveToken",
			record: RefreshTokenRecord{ExpiresAt: now.Add(time.Hour)},
			want:   true,
		},
		{
			name:   "ExpiredToken",
			record: RefreshTokenRecord{ExpiresAt: now.Add(-time.Minute)},
			want:   false,
		},
		{
			name:   "RevokedToken",
			record: RefreshTokenRecord{ExpiresAt: now.Add(time.Hour), Revoked: true},
			want:   false,
		},
		{
			name:   "RevokedAndExpired",
			record: RefreshTokenRecord{ExpiresAt: now.Add(-time.Hour), Revoked: true},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Usable(now))
		})
	}
}
