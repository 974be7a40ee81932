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

// MySQLBudgetRepository implements budget persistence for MySQL. Uses
// BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLBudgetRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewMySQLBudgetRepository creates a new MySQL budget repository.
func NewMySQLBudgetRepository(
	db *sql.DB,
	cipher cryptoService.FieldCipher,
) *MySQLBudgetRepository {
	return &MySQLBudgetRepository{db: db, cipher: cipher}
}

// Create inserts a new budget.
func (m *MySQLBudgetRepository) Create(ctx context.Context, budget *financeDomain.Budget) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalOwnedID(budget.ID, budget.UserID)
	if err != nil {
		return err
	}
	encryptedLimit, err := m.cipher.EncryptAmount(budget.Limit)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt budget limit")
	}

	query := `INSERT INTO budgets (id, user_id, category, spend_limit, month, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
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
func (m *MySQLBudgetRepository) Get(
	ctx context.Context,
	userID, budgetID uuid.UUID,
) (*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, m.db)

	id, owner, err := marshalOwnedID(budgetID, userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, category, spend_limit, month, created_at, updated_at
			  FROM budgets WHERE id = ? AND user_id = ?`

	budget, err := m.scanBudget(querier.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get budget")
	}
	return budget, nil
}

// GetByCategoryMonth retrieves the budget for a category and month.
func (m *MySQLBudgetRepository) GetByCategoryMonth(
	ctx context.Context,
	userID uuid.UUID,
	category, month string,
) (*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, category, spend_limit, month, created_at, updated_at
			  FROM budgets WHERE user_id = ? AND category = ? AND month = ?`

	budget, err := m.scanBudget(querier.QueryRowContext(ctx, query, owner, category, month))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get budget")
	}
	return budget, nil
}

// ListByMonth returns the user's budgets for a month, ordered by category.
func (m *MySQLBudgetRepository) ListByMonth(
	ctx context.Context,
	userID uuid.UUID,
	month string,
) ([]*financeDomain.Budget, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, category, spend_limit, month, created_at, updated_at
			  FROM budgets WHERE user_id = ? AND month = ? ORDER BY category ASC`

	rows, err := querier.QueryContext(ctx, query, owner, month)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list budgets")
	}
	defer rows.Close()

	var budgets []*financeDomain.Budget
	for rows.Next() {
		budget, err := m.scanBudget(rows)
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
func (m *MySQLBudgetRepository) Update(ctx context.Context, budget *financeDomain.Budget) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalOwnedID(budget.ID, budget.UserID)
	if err != nil {
		return err
	}
	encryptedLimit, err := m.cipher.EncryptAmount(budget.Limit)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt budget limit")
	}

	query := `UPDATE budgets SET category = ?, spend_limit = ?, month = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		budget.Category,
		encryptedLimit,
		budget.Month,
		budget.UpdatedAt,
		id,
		userID,
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
func (m *MySQLBudgetRepository) Delete(ctx context.Context, userID, budgetID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, owner, err := marshalOwnedID(budgetID, userID)
	if err != nil {
		return err
	}

	query := `DELETE FROM budgets WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query, id, owner)
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

func (m *MySQLBudgetRepository) scanBudget(row rowScanner) (*financeDomain.Budget, error) {
	var budget financeDomain.Budget
	var idBytes, userIDBytes []byte
	var encryptedLimit string

	err := row.Scan(
		&idBytes,
		&userIDBytes,
		&budget.Category,
		&encryptedLimit,
		&budget.Month,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if budget.ID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal budget id")
	}
	if budget.UserID, err = uuid.FromBytes(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	budget.Limit, err = m.cipher.DecryptAmount(encryptedLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt budget limit")
	}
	return &budget, nil
}
