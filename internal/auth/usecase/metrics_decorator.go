package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	"github.com/ledgerly/securecore/internal/metrics"
)

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics
// instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics
// recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "auth", operation, status)
	c.metrics.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

func (c *credentialUseCaseWithMetrics) Register(
	ctx context.Context,
	name, email, password string,
) (*authDomain.User, *authDomain.TokenPair, error) {
	start := time.Now()
	user, pair, err := c.next.Register(ctx, name, email, password)
	c.record(ctx, "register", start, err)
	return user, pair, err
}

func (c *credentialUseCaseWithMetrics) Login(
	ctx context.Context,
	email, password string,
) (*authDomain.User, *authDomain.TokenPair, error) {
	start := time.Now()
	user, pair, err := c.next.Login(ctx, email, password)
	c.record(ctx, "login", start, err)
	return user, pair, err
}

func (c *credentialUseCaseWithMetrics) Refresh(
	ctx context.Context,
	refreshToken string,
) (*authDomain.TokenPair, error) {
	start := time.Now()
	pair, err := c.next.Refresh(ctx, refreshToken)
	c.record(ctx, "token_refresh", start, err)
	return pair, err
}

func (c *credentialUseCaseWithMetrics) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	start := time.Now()
	err := c.next.Logout(ctx, userID, refreshToken)
	c.record(ctx, "logout", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	accessToken string,
) (*authDomain.User, error) {
	// Hot path: runs on every authenticated request, counted but not timed
	// per operation to keep overhead down.
	user, err := c.next.Authenticate(ctx, accessToken)
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordOperation(ctx, "auth", "authenticate", status)
	return user, err
}

func (c *credentialUseCaseWithMetrics) ValidateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	refreshToken string,
) (bool, error) {
	return c.next.ValidateRefreshToken(ctx, userID, refreshToken)
}

func (c *credentialUseCaseWithMetrics) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, newPassword, currentRefreshToken string,
) error {
	start := time.Now()
	err := c.next.ChangePassword(ctx, userID, current, newPassword, currentRefreshToken)
	c.record(ctx, "password_change", start, err)
	return err
}

func (c *credentialUseCaseWithMetrics) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	start := time.Now()
	token, err := c.next.RequestPasswordReset(ctx, email)
	c.record(ctx, "password_reset_request", start, err)
	return token, err
}

func (c *credentialUseCaseWithMetrics) ResetPassword(ctx context.Context, token, newPassword string) error {
	start := time.Now()
	err := c.next.ResetPassword(ctx, token, newPassword)
	c.record(ctx, "password_reset", start, err)
	return err
}
