// Package usecase implements business logic for personal finance data.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
)

// TransactionRepository defines persistence for transactions. Amounts and
// descriptions cross this boundary encrypted; implementations apply the
// field codec. Every query is scoped by user ID, so another user's rows are
// indistinguishable from absent rows.
type TransactionRepository interface {
	Create(ctx context.Context, tx *financeDomain.Transaction) error
	Get(ctx context.Context, userID, txID uuid.UUID) (*financeDomain.Transaction, error)
	ListByUser(
		ctx context.Context,
		userID uuid.UUID,
		from, to *time.Time,
		offset, limit int,
	) ([]*financeDomain.Transaction, error)
	Update(ctx context.Context, tx *financeDomain.Transaction) error
	Delete(ctx context.Context, userID, txID uuid.UUID) error
}

// BudgetRepository defines persistence for budgets.
type BudgetRepository interface {
	Create(ctx context.Context, budget *financeDomain.Budget) error
	Get(ctx context.Context, userID, budgetID uuid.UUID) (*financeDomain.Budget, error)
	GetByCategoryMonth(
		ctx context.Context,
		userID uuid.UUID,
		category, month string,
	) (*financeDomain.Budget, error)
	ListByMonth(ctx context.Context, userID uuid.UUID, month string) ([]*financeDomain.Budget, error)
	Update(ctx context.Context, budget *financeDomain.Budget) error
	Delete(ctx context.Context, userID, budgetID uuid.UUID) error
}

// GoalRepository defines persistence for savings goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *financeDomain.Goal) error
	Get(ctx context.Context, userID, goalID uuid.UUID) (*financeDomain.Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*financeDomain.Goal, error)
	Update(ctx context.Context, goal *financeDomain.Goal) error
	Delete(ctx context.Context, userID, goalID uuid.UUID) error
}

// FinanceUseCase orchestrates transaction, budget, and goal operations for a
// single authenticated user.
type FinanceUseCase interface {
	CreateTransaction(ctx context.Context, tx *financeDomain.Transaction) error
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*financeDomain.Transaction, error)
	ListTransactions(
		ctx context.Context,
		userID uuid.UUID,
		from, to *time.Time,
		offset, limit int,
	) ([]*financeDomain.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *financeDomain.Transaction) error
	DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error

	CreateBudget(ctx context.Context, budget *financeDomain.Budget) error
	UpdateBudget(ctx context.Context, budget *financeDomain.Budget) error
	DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error

	// BudgetReport computes per-budget spending for a month. Amount
	// ciphertext does not support SQL aggregation, so spending is summed
	// after decryption.
	BudgetReport(ctx context.Context, userID uuid.UUID, month string) ([]*financeDomain.BudgetStatus, error)

	CreateGoal(ctx context.Context, goal *financeDomain.Goal) error
	ListGoals(ctx context.Context, userID uuid.UUID) ([]*financeDomain.Goal, error)
	ContributeToGoal(ctx context.Context, userID, goalID uuid.UUID, amount float64) (*financeDomain.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error
}
