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
	authHTTP "github.com/ledgerly/securecore/internal/auth/http"
	authUseCase "github.com/ledgerly/securecore/internal/auth/usecase"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
)

type mockFinanceUseCase struct {
	mock.Mock
}

func (m *mockFinanceUseCase) CreateTransaction(ctx context.Context, tx *financeDomain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockFinanceUseCase) GetTransaction(
	ctx context.Context,
	userID, txID uuid.UUID,
) (*financeDomain.Transaction, error) {
	args := m.Called(ctx, userID, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeDomain.Transaction), args.Error(1)
}

func (m *mockFinanceUseCase) ListTransactions(
	ctx context.Context,
	userID uuid.UUID,
	from, to *time.Time,
	offset, limit int,
) ([]*financeDomain.Transaction, error) {
	args := m.Called(ctx, userID, from, to, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*financeDomain.Transaction), args.Error(1)
}

func (m *mockFinanceUseCase) UpdateTransaction(ctx context.Context, tx *financeDomain.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockFinanceUseCase) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error {
	args := m.Called(ctx, userID, txID)
	return args.Error(0)
}

func (m *mockFinanceUseCase) CreateBudget(ctx context.Context, budget *financeDomain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *mockFinanceUseCase) UpdateBudget(ctx context.Context, budget *financeDomain.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *mockFinanceUseCase) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *mockFinanceUseCase) BudgetReport(
	ctx context.Context,
	userID uuid.UUID,
	month string,
) ([]*financeDomain.BudgetStatus, error) {
	args := m.Called(ctx, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*financeDomain.BudgetStatus), args.Error(1)
}

func (m *mockFinanceUseCase) CreateGoal(ctx context.Context, goal *financeDomain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *mockFinanceUseCase) ListGoals(
	ctx context.Context,
	userID uuid.UUID,
) ([]*financeDomain.Goal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*financeDomain.Goal), args.Error(1)
}

func (m *mockFinanceUseCase) ContributeToGoal(
	ctx context.Context,
	userID, goalID uuid.UUID,
	amount float64,
) (*financeDomain.Goal, error) {
	args := m.Called(ctx, userID, goalID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*financeDomain.Goal), args.Error(1)
}

func (m *mockFinanceUseCase) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	args := m.Called(ctx, userID, goalID)
	return args.Error(0)
}

// recordingAuditUseCase captures logged entries for assertions. Query methods
// are unused by these handlers.
type recordingAuditUseCase struct {
	mu      sync.Mutex
	entries []*authUseCase.Entry
}

func (r *recordingAuditUseCase) LogEvent(entry *authUseCase.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAuditUseCase) logged() []*authUseCase.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*authUseCase.Entry(nil), r.entries...)
}

func (r *recordingAuditUseCase) ListForUser(
	_ context.Context,
	_ string,
	_ *authDomain.AuditFilter,
	_, _ int,
) ([]*authDomain.AuditEvent, error) {
	return nil, nil
}

func (r *recordingAuditUseCase) SecuritySummary(
	_ context.Context,
	_ string,
	_ time.Duration,
) (*authDomain.SecuritySummary, error) {
	return &authDomain.SecuritySummary{}, nil
}

func (r *recordingAuditUseCase) VerifySignatures(_ context.Context, _, _ int) (int, []uuid.UUID, error) {
	return 0, nil, nil
}

func (r *recordingAuditUseCase) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *recordingAuditUseCase) Dropped() int64 { return 0 }

func (r *recordingAuditUseCase) Close(_ context.Context) error { return nil }

func testUser() *authDomain.User {
	return &authDomain.User{
		ID:    uuid.Must(uuid.NewV7()),
		Name:  "Alice Example",
		Email: "alice@example.com",
	}
}

// createTestContext builds a gin context with an optional JSON body.
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

// withTestUser attaches an authenticated user to the request context, the way
// the authentication middleware does.
func withTestUser(c *gin.Context, user *authDomain.User) {
	c.Request = c.Request.WithContext(authHTTP.WithUser(c.Request.Context(), user))
}
