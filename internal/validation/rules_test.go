package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/ledgerly/securecore/internal/errors"
)

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("hello"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
	assert.Error(t, NotBlank.Validate("\t\n"))
}

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"alice@example.com", true},
		{"alice.smith+tag@sub.example.co", true},
		{"alice@example", false},
		{"@example.com", false},
		{"alice", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := Email.Validate(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPasswordStrength(t *testing.T) {
	policy := DefaultPasswordStrength

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Passw0rd", true},
		{"too short", "Pa0s", false},
		{"no uppercase", "passw0rd", false},
		{"no lowercase", "PASSW0RD", false},
		{"no number", "Password", false},
		{"long passphrase", "Correct Horse Battery 1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPasswordStrength_SpecialRequirement(t *testing.T) {
	policy := PasswordStrength{MinLength: 8, RequireSpecial: true}

	assert.Error(t, policy.Validate("longenough"))
	assert.NoError(t, policy.Validate("longenough!"))
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}
