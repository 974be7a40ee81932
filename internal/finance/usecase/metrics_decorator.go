package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
	"github.com/ledgerly/securecore/internal/metrics"
)

// financeUseCaseWithMetrics decorates FinanceUseCase with metrics
// instrumentation.
type financeUseCaseWithMetrics struct {
	next    FinanceUseCase
	metrics metrics.BusinessMetrics
}

// NewFinanceUseCaseWithMetrics wraps a FinanceUseCase with metrics recording.
func NewFinanceUseCaseWithMetrics(useCase FinanceUseCase, m metrics.BusinessMetrics) FinanceUseCase {
	return &financeUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (f *financeUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	f.metrics.RecordOperation(ctx, "finance", operation, status)
	f.metrics.RecordDuration(ctx, "finance", operation, time.Since(start), status)
}

func (f *financeUseCaseWithMetrics) CreateTransaction(ctx context.Context, tx *financeDomain.Transaction) error {
	start := time.Now()
	err := f.next.CreateTransaction(ctx, tx)
	f.record(ctx, "transaction_create", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) GetTransaction(
	ctx context.Context,
	userID, txID uuid.UUID,
) (*financeDomain.Transaction, error) {
	start := time.Now()
	tx, err := f.next.GetTransaction(ctx, userID, txID)
	f.record(ctx, "transaction_get", start, err)
	return tx, err
}

func (f *financeUseCaseWithMetrics) ListTransactions(
	ctx context.Context,
	userID uuid.UUID,
	from, to *time.Time,
	offset, limit int,
) ([]*financeDomain.Transaction, error) {
	start := time.Now()
	transactions, err := f.next.ListTransactions(ctx, userID, from, to, offset, limit)
	f.record(ctx, "transaction_list", start, err)
	return transactions, err
}

func (f *financeUseCaseWithMetrics) UpdateTransaction(ctx context.Context, tx *financeDomain.Transaction) error {
	start := time.Now()
	err := f.next.UpdateTransaction(ctx, tx)
	f.record(ctx, "transaction_update", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error {
	start := time.Now()
	err := f.next.DeleteTransaction(ctx, userID, txID)
	f.record(ctx, "transaction_delete", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) CreateBudget(ctx context.Context, budget *financeDomain.Budget) error {
	start := time.Now()
	err := f.next.CreateBudget(ctx, budget)
	f.record(ctx, "budget_create", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) UpdateBudget(ctx context.Context, budget *financeDomain.Budget) error {
	start := time.Now()
	err := f.next.UpdateBudget(ctx, budget)
	f.record(ctx, "budget_update", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	start := time.Now()
	err := f.next.DeleteBudget(ctx, userID, budgetID)
	f.record(ctx, "budget_delete", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) BudgetReport(
	ctx context.Context,
	userID uuid.UUID,
	month string,
) ([]*financeDomain.BudgetStatus, error) {
	start := time.Now()
	statuses, err := f.next.BudgetReport(ctx, userID, month)
	f.record(ctx, "budget_report", start, err)
	return statuses, err
}

func (f *financeUseCaseWithMetrics) CreateGoal(ctx context.Context, goal *financeDomain.Goal) error {
	start := time.Now()
	err := f.next.CreateGoal(ctx, goal)
	f.record(ctx, "goal_create", start, err)
	return err
}

func (f *financeUseCaseWithMetrics) ListGoals(
	ctx context.Context,
	userID uuid.UUID,
) ([]*financeDomain.Goal, error) {
	start := time.Now()
	goals, err := f.next.ListGoals(ctx, userID)
	f.record(ctx, "goal_list", start, err)
	return goals, err
}

func (f *financeUseCaseWithMetrics) ContributeToGoal(
	ctx context.Context,
	userID, goalID uuid.UUID,
	amount float64,
) (*financeDomain.Goal, error) {
	start := time.Now()
	goal, err := f.next.ContributeToGoal(ctx, userID, goalID, amount)
	f.record(ctx, "goal_contribute", start, err)
	return goal, err
}

func (f *financeUseCaseWithMetrics) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	start := time.Now()
	err := f.next.DeleteGoal(ctx, userID, goalID)
	f.record(ctx, "goal_delete", start, err)
	return err
}
