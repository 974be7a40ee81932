package commands

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
)

type mockAuditUseCase struct {
	mock.Mock
}

func (m *mockAuditUseCase) LogEvent(entry *authUseCase.Entry) {
	m.Called(entry)
}

func (m *mockAuditUseCase) ListForUser(
	ctx context.Context,
	actor string,
	filter *authDomain.AuditFilter,
	offset, limit int,
) ([]*authDomain.AuditEvent, error) {
	args := m.Called(ctx, actor, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.AuditEvent), args.Error(1)
}

func (m *mockAuditUseCase) SecuritySummary(
	ctx context.Context,
	actor string,
	window time.Duration,
) (*authDomain.SecuritySummary, error) {
	args := m.Called(ctx, actor, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.SecuritySummary), args.Error(1)
}

func (m *mockAuditUseCase) VerifySignatures(ctx context.Context, offset, limit int) (int, []uuid.UUID, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(1) == nil {
		return args.Int(0), nil, args.Error(2)
	}
	return args.Int(0), args.Get(1).([]uuid.UUID), args.Error(2)
}

func (m *mockAuditUseCase) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuditUseCase) Dropped() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

func (m *mockAuditUseCase) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Add(ctx context.Context, record *authDomain.RefreshTokenRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.RefreshTokenRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*authDomain.RefreshTokenRecord), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	args := m.Called(ctx, userID, tokenHash)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) PruneInactive(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
