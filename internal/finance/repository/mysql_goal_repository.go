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

// MySQLGoalRepository implements savings goal persistence for MySQL. Uses
// BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLGoalRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewMySQLGoalRepository creates a new MySQL goal repository.
func NewMySQLGoalRepository(
	db *sql.DB,
	cipher cryptoService.FieldCipher,
) *MySQLGoalRepository {
	return &MySQLGoalRepository{db: db, cipher: cipher}
}

// Create inserts a new goal.
func (m *MySQLGoalRepository) Create(ctx context.Context, goal *financeDomain.Goal) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalOwnedID(goal.ID, goal.UserID)
	if err != nil {
		return err
	}
	name, target, current, err := encryptGoalFields(m.cipher, goal)
	if err != nil {
		return err
	}

	query := `INSERT INTO goals (id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
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
func (m *MySQLGoalRepository) Get(
	ctx context.Context,
	userID, goalID uuid.UUID,
) (*financeDomain.Goal, error) {
	querier := database.GetTx(ctx, m.db)

	id, owner, err := marshalOwnedID(goalID, userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at
			  FROM goals WHERE id = ? AND user_id = ?`

	goal, err := m.scanGoal(querier.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get goal")
	}
	return goal, nil
}

// ListByUser returns all goals for a user, oldest first.
func (m *MySQLGoalRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*financeDomain.Goal, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, name, target_amount, current_amount, deadline, created_at, updated_at
			  FROM goals WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list goals")
	}
	defer rows.Close()

	var goals []*financeDomain.Goal
	for rows.Next() {
		goal, err := m.scanGoal(rows)
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
func (m *MySQLGoalRepository) Update(ctx context.Context, goal *financeDomain.Goal) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalOwnedID(goal.ID, goal.UserID)
	if err != nil {
		return err
	}
	name, target, current, err := encryptGoalFields(m.cipher, goal)
	if err != nil {
		return err
	}

	query := `UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, deadline = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		name,
		target,
		current,
		goal.Deadline,
		goal.UpdatedAt,
		id,
		userID,
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
func (m *MySQLGoalRepository) Delete(ctx context.Context, userID, goalID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, owner, err := marshalOwnedID(goalID, userID)
	if err != nil {
		return err
	}

	query := `DELETE FROM goals WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query, id, owner)
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

func (m *MySQLGoalRepository) scanGoal(row rowScanner) (*financeDomain.Goal, error) {
	var goal financeDomain.Goal
	var idBytes, userIDBytes []byte
	var encryptedName, encryptedTarget, encryptedCurrent string

	err := row.Scan(
		&idBytes,
		&userIDBytes,
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

	if goal.ID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal goal id")
	}
	if goal.UserID, err = uuid.FromBytes(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	goal.Name, err = m.cipher.Decrypt(encryptedName)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt goal name")
	}
	goal.TargetAmount, err = m.cipher.DecryptAmount(encryptedTarget)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt target amount")
	}
	goal.CurrentAmount, err = m.cipher.DecryptAmount(encryptedCurrent)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt current amount")
	}
	return &goal, nil
}
