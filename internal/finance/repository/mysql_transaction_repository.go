package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
	financeDomain "github.com/ledgerly/securecore/internal/finance/domain"
)

// MySQLTransactionRepository implements transaction persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via
// database.GetTx().
type MySQLTransactionRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewMySQLTransactionRepository creates a new MySQL transaction repository.
func NewMySQLTransactionRepository(
	db *sql.DB,
	cipher cryptoService.FieldCipher,
) *MySQLTransactionRepository {
	return &MySQLTransactionRepository{db: db, cipher: cipher}
}

// Create inserts a new transaction with amount and description encrypted.
func (m *MySQLTransactionRepository) Create(
	ctx context.Context,
	tx *financeDomain.Transaction,
) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalOwnedID(tx.ID, tx.UserID)
	if err != nil {
		return err
	}
	encryptedAmount, encryptedDescription, err := encryptTransactionFields(m.cipher, tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO transactions (id, user_id, type, amount, category, description, occurred_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		tx.Type,
		encryptedAmount,
		tx.Category,
		encryptedDescription,
		tx.OccurredAt,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create transaction")
	}
	return nil
}

// Get retrieves a transaction by ID, scoped to the owning user.
func (m *MySQLTransactionRepository) Get(
	ctx context.Context,
	userID, txID uuid.UUID,
) (*financeDomain.Transaction, error) {
	querier := database.GetTx(ctx, m.db)

	id, owner, err := marshalOwnedID(txID, userID)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, type, amount, category, description, occurred_at, created_at, updated_at
			  FROM transactions WHERE id = ? AND user_id = ?`

	tx, err := m.scanTransaction(querier.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, financeDomain.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get transaction")
	}
	return tx, nil
}

// ListByUser returns the user's transactions newest first, optionally bounded
// to [from, to).
func (m *MySQLTransactionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	from, to *time.Time,
	offset, limit int,
) ([]*financeDomain.Transaction, error) {
	querier := database.GetTx(ctx, m.db)

	owner, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, type, amount, category, description, occurred_at, created_at, updated_at
			  FROM transactions WHERE user_id = ?`
	args := []any{owner}

	if from != nil {
		query += ` AND occurred_at >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND occurred_at < ?`
		args = append(args, *to)
	}
	query += ` ORDER BY occurred_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	var transactions []*financeDomain.Transaction
	for rows.Next() {
		tx, err := m.scanTransaction(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan transaction")
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate transactions")
	}

	return transactions, nil
}

// Update modifies an existing transaction, re-encrypting its sensitive
// fields.
func (m *MySQLTransactionRepository) Update(
	ctx context.Context,
	tx *financeDomain.Transaction,
) error {
	querier := database.GetTx(ctx, m.db)

	id, userID, err := marshalOwnedID(tx.ID, tx.UserID)
	if err != nil {
		return err
	}
	encryptedAmount, encryptedDescription, err := encryptTransactionFields(m.cipher, tx)
	if err != nil {
		return err
	}

	query := `UPDATE transactions
			  SET type = ?, amount = ?, category = ?, description = ?, occurred_at = ?, updated_at = ?
			  WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		tx.Type,
		encryptedAmount,
		tx.Category,
		encryptedDescription,
		tx.OccurredAt,
		tx.UpdatedAt,
		id,
		userID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update transaction")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check transaction update")
	}
	if affected == 0 {
		return financeDomain.ErrTransactionNotFound
	}
	return nil
}

// Delete removes a transaction, scoped to the owning user.
func (m *MySQLTransactionRepository) Delete(ctx context.Context, userID, txID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, owner, err := marshalOwnedID(txID, userID)
	if err != nil {
		return err
	}

	query := `DELETE FROM transactions WHERE id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query, id, owner)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete transaction")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to check transaction delete")
	}
	if affected == 0 {
		return financeDomain.ErrTransactionNotFound
	}
	return nil
}

func (m *MySQLTransactionRepository) scanTransaction(row rowScanner) (*financeDomain.Transaction, error) {
	var tx financeDomain.Transaction
	var idBytes, userIDBytes []byte
	var encryptedAmount, encryptedDescription string

	err := row.Scan(
		&idBytes,
		&userIDBytes,
		&tx.Type,
		&encryptedAmount,
		&tx.Category,
		&encryptedDescription,
		&tx.OccurredAt,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tx.ID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal transaction id")
	}
	if tx.UserID, err = uuid.FromBytes(userIDBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	tx.Amount, err = m.cipher.DecryptAmount(encryptedAmount)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt amount")
	}
	if encryptedDescription != "" {
		tx.Description, err = m.cipher.Decrypt(encryptedDescription)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decrypt description")
		}
	}
	return &tx, nil
}

// marshalOwnedID converts an entity ID and its owning user ID to BINARY(16)
// form.
func marshalOwnedID(entityID, userID uuid.UUID) ([]byte, []byte, error) {
	id, err := entityID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal id")
	}
	owner, err := userID.MarshalBinary()
	if err != nil {
		return nil, nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	return id, owner, nil
}
