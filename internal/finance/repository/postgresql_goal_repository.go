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

// PostgreSQLGoalRepository implements savings goal persistence for
// PostgreSQL. The goal name and both amounts are encrypted.
type PostgreSQLGoalRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewPostgreSQLGoalRepository creates a new PostgreSQL goal repository.
func NewPostgreSQLGoalRepository(
	db *sql.DB,
	cipher cryptoService.FieldCipher,
) *PostgreSQLGoalRepository {
	return &PostgreSQLGoalRepository{db: db, cipher: cipher}
}

// Create inserts a new goal.
func (p *PostgreSQLGoalRepository) Create(ctx context.Context, goal *financeDomain.Goal) error {
	querier := database.GetTx(ctx, p.db)

	name, target, current, err := encryptGoalFields(p.cipher, goal)
	if err != nil {
		return err
	}

	query := `INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		goal.ID,
		goal.UserID,
		name,
		target,
		current,
		goal.Deadline,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create goal")
	}
	return nil
}

// Get retrieves a goal by ID, scoped to the owning user.
func (p *PostgreSQLGoalRepository) Get(
	ctx context.Context,
	userID, goalID uuid.UUID,
) (*financeDomain.Goal, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at
			  FROM goals WHERE id = $1 AND user_id = $2`

	goal, err := p.scanGoal(querier.QueryRowContext(ctx, query, goalID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get goal")
	}
	return goal, nil
}

// ListByUser returns all goals for a user, oldest first.
func (p *PostgreSQLGoalRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*financeDomain.Goal, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at
			  FROM goals WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list goals")
	}
	defer rows.Close()

	var goals []*financeDomain.Goal
	for rows.Next() {
		goal, err := p.scanGoal(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan goal")
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate goals")
	}

	return goals, nil
}

// Update modifies an existing goal.
func (p *PostgreSQLGoalRepository) Update(ctx context.Context, goal *financeDomain.Goal) error {
	querier := database.GetTx(ctx, p.db)

	name, target, current, err := encryptGoalFields(p.cipher, goal)
	if err != nil {
		return err
	}

	query := `UPDATE goals SET name = $1, target_amount = $2, current_amount = $3, deadline = $4, updated_at = $5
			  WHERE id = $6 AND user_id = $7`

	result, err := querier.ExecContext(
		ctx,
		query,
		name,
		target,
		current,
		goal.Deadline,
		goal.UpdatedAt,
		goal.ID,
		goal.UserID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update goal")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check goal update")
	}
	if affected == 0 {
		return financeDomain.ErrGoalNotFound
	}
	return nil
}

// Delete removes a goal, scoped to the owning user.
func (p *PostgreSQLGoalRepository) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM goals WHERE id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, goalID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete goal")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check goal delete")
	}
	if affected == 0 {
		return financeDomain.ErrGoalNotFound
	}
	return nil
}

func encryptGoalFields(
	cipher cryptoService.FieldCipher,
	goal *financeDomain.Goal,
) (name, target, current string, err error) {
	name, err = cipher.Encrypt(goal.Name)
	if err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to encrypt goal name")
	}
	target, err = cipher.EncryptAmount(goal.TargetAmount)
	if err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to encrypt target amount")
	}
	current, err = cipher.EncryptAmount(goal.CurrentAmount)
	if err != nil {
		return "", "", "", apperrors.Wrap(err, "failed to encrypt current amount")
	}
	return name, target, current, nil
}

func (p *PostgreSQLGoalRepository) scanGoal(row rowScanner) (*financeDomain.Goal, error) {
	var goal financeDomain.Goal
	var encryptedName, encryptedTarget, encryptedCurrent string

	err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&encryptedName,
		&encryptedTarget,
		&encryptedCurrent,
		&goal.Deadline,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	goal.Name, err = p.cipher.Decrypt(encryptedName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt goal name")
	}
	goal.TargetAmount, err = p.cipher.DecryptAmount(encryptedTarget)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt target amount")
	}
	goal.CurrentAmount, err = p.cipher.DecryptAmount(encryptedCurrent)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt current amount")
	}
	return &goal, nil
}
