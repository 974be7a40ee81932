package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/ledgerly/securecore/internal/errors"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
	"github.com/ledgerly/securecore/internal/validation"
)

// listPageSize bounds how many transactions a budget report reads per page.
const listPageSize = 500

type financeUseCase struct {
	transactionRepo TransactionRepository
	budgetRepo      BudgetRepository
	goalRepo        GoalRepository
	logger          *slog.Logger
}

// NewFinanceUseCase creates a new FinanceUseCase.
func NewFinanceUseCase(
	transactionRepo TransactionRepository,
	budgetRepo BudgetRepository,
	goalRepo GoalRepository,
	logger *slog.Logger,
) FinanceUseCase {
	return &financeUseCase{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		goalRepo:        goalRepo,
		logger:          logger,
	}
}

func (u *financeUseCase) CreateTransaction(ctx context.Context, tx *financeDomain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return validation.WrapValidationError(err)
	}

	now := time.Now().UTC()
	tx.ID = uuid.Must(uuid.NewV7())
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := u.transactionRepo.Create(ctx, tx); err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}
	return nil
}

func (u *financeUseCase) GetTransaction(
	ctx context.Context,
	userID, txID uuid.UUID,
) (*financeDomain.Transaction, error) {
	return u.transactionRepo.Get(ctx, userID, txID)
}

func (u *financeUseCase) ListTransactions(
	ctx context.Context,
	userID uuid.UUID,
	from, to *time.Time,
	offset, limit int,
) ([]*financeDomain.Transaction, error) {
	return u.transactionRepo.ListByUser(ctx, userID, from, to, offset, limit)
}

func (u *financeUseCase) UpdateTransaction(ctx context.Context, tx *financeDomain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return validation.WrapValidationError(err)
	}

	// Ownership check: a transaction belonging to someone else reads as
	// not found.
	existing, err := u.transactionRepo.Get(ctx, tx.UserID, tx.ID)
	if err != nil {
		return err
	}

	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = time.Now().UTC()

	if err := u.transactionRepo.Update(ctx, tx); err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}
	return nil
}

func (u *financeUseCase) DeleteTransaction(ctx context.Context, userID, txID uuid.UUID) error {
	if _, err := u.transactionRepo.Get(ctx, userID, txID); err != nil {
		return err
	}
	if err := u.transactionRepo.Delete(ctx, userID, txID); err != nil {
		return apperrors.Wrap(err, "failed to delete transaction")
	}
	return nil
}

func (u *financeUseCase) CreateBudget(ctx context.Context, budget *financeDomain.Budget) error {
	if err := budget.Validate(); err != nil {
		return validation.WrapValidationError(err)
	}

	_, err := u.budgetRepo.GetByCategoryMonth(ctx, budget.UserID, budget.Category, budget.Month)
	if err == nil {
		return financeDomain.ErrBudgetExists
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return apperrors.Wrap(err, "failed to check budget")
	}

	now := time.Now().UTC()
	budget.ID = uuid.Must(uuid.NewV7())
	budget.CreatedAt = now
	budget.UpdatedAt = now

	if err := u.budgetRepo.Create(ctx, budget); err != nil {
		return apperrors.Wrap(err, "failed to create budget")
	}
	return nil
}

func (u *financeUseCase) UpdateBudget(ctx context.Context, budget *financeDomain.Budget) error {
	if err := budget.Validate(); err != nil {
		return validation.WrapValidationError(err)
	}

	existing, err := u.budgetRepo.Get(ctx, budget.UserID, budget.ID)
	if err != nil {
		return err
	}

	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now().UTC()

	if err := u.budgetRepo.Update(ctx, budget); err != nil {
		return apperrors.Wrap(err, "failed to update budget")
	}
	return nil
}

func (u *financeUseCase) DeleteBudget(ctx context.Context, userID, budgetID uuid.UUID) error {
	if _, err := u.budgetRepo.Get(ctx, userID, budgetID); err != nil {
		return err
	}
	if err := u.budgetRepo.Delete(ctx, userID, budgetID); err != nil {
		return apperrors.Wrap(err, "failed to delete budget")
	}
	return nil
}

func (u *financeUseCase) BudgetReport(
	ctx context.Context,
	userID uuid.UUID,
	month string,
) ([]*financeDomain.BudgetStatus, error) {
	budgets, err := u.budgetRepo.ListByMonth(ctx, userID, month)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list budgets")
	}
	if len(budgets) == 0 {
		return []*financeDomain.BudgetStatus{}, nil
	}

	from, to, err := monthRange(month)
	if err != nil {
		return nil, validation.WrapValidationError(err)
	}

	spentByCategory := make(map[string]float64)
	for offset := 0; ; offset += listPageSize {
		page, err := u.transactionRepo.ListByUser(ctx, userID, &from, &to, offset, listPageSize)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to list transactions")
		}

		for _, tx := range page {
			if tx.Type == financeDomain.TransactionTypeExpense {
				spentByCategory[tx.Category] += tx.Amount
			}
		}

		if len(page) < listPageSize {
			break
		}
	}

	statuses := make([]*financeDomain.BudgetStatus, 0, len(budgets))
	for _, budget := range budgets {
		spent := spentByCategory[budget.Category]
		statuses = append(statuses, &financeDomain.BudgetStatus{
			Budget:    budget,
			Spent:     spent,
			Remaining: budget.Limit - spent,
			Exceeded:  spent > budget.Limit,
		})
	}
	return statuses, nil
}

func (u *financeUseCase) CreateGoal(ctx context.Context, goal *financeDomain.Goal) error {
	if err := goal.Validate(); err != nil {
		return validation.WrapValidationError(err)
	}

	now := time.Now().UTC()
	goal.ID = uuid.Must(uuid.NewV7())
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := u.goalRepo.Create(ctx, goal); err != nil {
		return apperrors.Wrap(err, "failed to create goal")
	}
	return nil
}

func (u *financeUseCase) ListGoals(ctx context.Context, userID uuid.UUID) ([]*financeDomain.Goal, error) {
	return u.goalRepo.ListByUser(ctx, userID)
}

func (u *financeUseCase) ContributeToGoal(
	ctx context.Context,
	userID, goalID uuid.UUID,
	amount float64,
) (*financeDomain.Goal, error) {
	if amount <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "contribution amount must be positive")
	}

	goal, err := u.goalRepo.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	goal.CurrentAmount += amount
	goal.UpdatedAt = time.Now().UTC()

	if err := u.goalRepo.Update(ctx, goal); err != nil {
		return nil, apperrors.Wrap(err, "failed to update goal")
	}
	return goal, nil
}

func (u *financeUseCase) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	if _, err := u.goalRepo.Get(ctx, userID, goalID); err != nil {
		return err
	}
	if err := u.goalRepo.Delete(ctx, userID, goalID); err != nil {
		return apperrors.Wrap(err, "failed to delete goal")
	}
	return nil
}

// monthRange converts a YYYY-MM month into its [start, end) time window.
func monthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
