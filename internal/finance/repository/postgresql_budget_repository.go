package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
)

// PostgreSQLBudgetRepository implements budget persistence for PostgreSQL.
// The spending limit is encrypted; category and month stay plaintext because
// the unique (user, category, month) constraint and lookups depend on them.
type PostgreSQLBudgetRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewPostgreSQLBudgetRepository creates a new PostgreSQL budget repository.
func NewPostgreSQLBudgetRepository(
	db *sql.DB,
	cipher cryptoService.FieldCipher,
) *PostgreSQLBudgetRepository {
	return &PostgreSQLBudgetRepository{db: db, cipher: cipher}
}

// Create inserts a new budget.
func (p *PostgreSQLBudgetRepository) Create(ctx context.Context, budget *financeDomain.Budget) error {
	querier := database.GetTx(ctx, p.db)

	encryptedLimit, err := p.cipher.EncryptAmount(budget.Limit)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt budget limit")
	}

	query := `INSERT INTO budgets (id, user_id, category, spend_limit, month, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = querier.ExecContext(
		ctx,
		query,
		budget.ID,
		budget.UserID,
		budget.Category,
		encryptedLimit,
		budget.Month,
		budget.CreatedAt,
		budget.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create budget")
	}
	return nil
}

// Get retrieves a budget by ID, scoped to the owning user.
func (p *PostgreSQLBudgetRepository) Get(
	ctx context.Context,
	userID, budgetID uuid.UUID,
) (*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, category, spend_limit, month, created_at, updated_at
			  FROM budgets WHERE id = $1 AND user_id = $2`

	budget, err := p.scanBudget(querier.QueryRowContext(ctx, query, budgetID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get budget")
	}
	return budget, nil
}

// GetByCategoryMonth retrieves the budget for a category and month.
func (p *PostgreSQLBudgetRepository) GetByCategoryMonth(
	ctx context.Context,
	userID uuid.UUID,
	category, month string,
) (*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, category, spend_limit, month, created_at, updated_at
			  FROM budgets WHERE user_id = $1 AND category = $2 AND month = $3`

	budget, err := p.scanBudget(querier.QueryRowContext(ctx, query, userID, category, month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get budget")
	}
	return budget, nil
}

// ListByMonth returns the user's budgets for a month, ordered by category.
func (p *PostgreSQLBudgetRepository) ListByMonth(
	ctx context.Context,
	userID uuid.UUID,
	month string,
) ([]*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, category, spend_limit, month, created_at, updated_at
			  FROM budgets WHERE user_id = $1 AND month = $2 ORDER BY category ASC`

	rows, err := querier.QueryContext(ctx, query, userID, month)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list budgets")
	}
	defer rows.Close()

	var budgets []*financeDomain.Budget
	for rows.Next() {
		budget, err := p.scanBudget(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan budget")
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate budgets")
	}

	return budgets, nil
}

// Update modifies an existing budget.
func (p *PostgreSQLBudgetRepository) Update(ctx context.Context, budget *financeDomain.Budget) error {
	querier := database.GetTx(ctx, p.db)

	encryptedLimit, err := p.cipher.EncryptAmount(budget.Limit)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt budget limit")
	}

	query := `UPDATE budgets SET category = $1, spend_limit = $2, month = $3, updated_at = $4
			  WHERE id = $5 AND user_id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		budget.Category,
		encryptedLimit,
		budget.Month,
		budget.UpdatedAt,
		budget.ID,
		budget.UserID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update budget")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check budget update")
	}
	if affected == 0 {
		return financeDomain.ErrBudgetNotFound
	}
	return nil
}

// Delete removes a budget, scoped to the owning user.
func (p *PostgreSQLBudgetRepository) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM budgets WHERE id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, budgetID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete budget")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check budget delete")
	}
	if affected == 0 {
		return financeDomain.ErrBudgetNotFound
	}
	return nil
}

func (p *PostgreSQLBudgetRepository) scanBudget(row rowScanner) (*financeDomain.Budget, error) {
	var budget financeDomain.Budget
	var encryptedLimit string

	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&budget.Category,
		&encryptedLimit,
		&budget.Month,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	budget.Limit, err = p.cipher.DecryptAmount(encryptedLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt budget limit")
	}
	return &budget, nil
}
