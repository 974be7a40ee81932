package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
)

// mockCredentialUseCase is a mock implementation of CredentialUseCase for
// testing.
type mockCredentialUseCase struct {
	mock.Mock
}

func (m *mockCredentialUseCase) Register(
	ctx context.Context,
	name, email, password string,
) (*authDomain.User, *authDomain.TokenPair, error) {
	args := m.Called(ctx, name, email, password)
	var user *authDomain.User
	var pair *authDomain.TokenPair
	if args.Get(0) != nil {
		user = args.Get(0).(*authDomain.User)
	}
	if args.Get(1) != nil {
		pair = args.Get(1).(*authDomain.TokenPair)
	}
	return user, pair, args.Error(2)
}

func (m *mockCredentialUseCase) Login(
	ctx context.Context,
	email, password string,
) (*authDomain.User, *authDomain.TokenPair, error) {
	args := m.Called(ctx, email, password)
	var user *authDomain.User
	var pair *authDomain.TokenPair
	if args.Get(0) != nil {
		user = args.Get(0).(*authDomain.User)
	}
	if args.Get(1) != nil {
		pair = args.Get(1).(*authDomain.TokenPair)
	}
	return user, pair, args.Error(2)
}

func (m *mockCredentialUseCase) Refresh(ctx context.Context, refreshToken string) (*authDomain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.TokenPair), args.Error(1)
}

func (m *mockCredentialUseCase) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	args := m.Called(ctx, userID, refreshToken)
	return args.Error(0)
}

func (m *mockCredentialUseCase) Authenticate(ctx context.Context, accessToken string) (*authDomain.User, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockCredentialUseCase) ValidateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	refreshToken string,
) (bool, error) {
	args := m.Called(ctx, userID, refreshToken)
	return args.Bool(0), args.Error(1)
}

func (m *mockCredentialUseCase) ChangePassword(
	ctx context.Context,
	userID uuid.UUID,
	current, newPassword, currentRefreshToken string,
) error {
	args := m.Called(ctx, userID, current, newPassword, currentRefreshToken)
	return args.Error(0)
}

func (m *mockCredentialUseCase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *mockCredentialUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

// recordingAuditUseCase captures logged entries for assertions. The query
// side is unused by handlers under test unless stubbed.
type recordingAuditUseCase struct {
	mu      sync.Mutex
	entries []*authUseCase.Entry

	events  []*authDomain.AuditEvent
	summary *authDomain.SecuritySummary
}

func (r *recordingAuditUseCase) LogEvent(entry *authUseCase.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAuditUseCase) logged() []*authUseCase.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*authUseCase.Entry{}, r.entries...)
}

func (r *recordingAuditUseCase) ListForUser(
	_ context.Context,
	_ string,
	_ *authDomain.AuditFilter,
	_, _ int,
) ([]*authDomain.AuditEvent, error) {
	return r.events, nil
}

func (r *recordingAuditUseCase) SecuritySummary(
	_ context.Context,
	_ string,
	window time.Duration,
) (*authDomain.SecuritySummary, error) {
	if r.summary == nil {
		return &authDomain.SecuritySummary{Window: window}, nil
	}
	summary := *r.summary
	summary.Window = window
	return &summary, nil
}

func (r *recordingAuditUseCase) VerifySignatures(_ context.Context, _, _ int) (int, []uuid.UUID, error) {
	return 0, nil, nil
}

func (r *recordingAuditUseCase) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *recordingAuditUseCase) Dropped() int64 { return 0 }

func (r *recordingAuditUseCase) Close(_ context.Context) error { return nil }

// createTestContext builds a gin test context with an optional JSON body.
func createTestContext(t *testing.T, method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

// withTestUser attaches an authenticated user to the test context.
func withTestUser(c *gin.Context, user *authDomain.User) {
	c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
}
