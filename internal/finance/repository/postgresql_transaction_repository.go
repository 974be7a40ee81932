// Package repository implements persistence for finance entities on
// PostgreSQL and MySQL. Monetary amounts, descriptions, and goal names are
// encrypted before INSERT/UPDATE and decrypted after SELECT; the rest of the
// application only ever sees plaintext values.
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

// PostgreSQLTransactionRepository implements transaction persistence for
// PostgreSQL.
type PostgreSQLTransactionRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewPostgreSQLTransactionRepository creates a new PostgreSQL transaction
// repository.
func NewPostgreSQLTransactionRepository(
	db *sql.DB,
	cipher cryptoService.FieldCipher,
) *PostgreSQLTransactionRepository {
	return &PostgreSQLTransactionRepository{db: db, cipher: cipher}
}

// Create inserts a new transaction with amount and description encrypted.
func (p *PostgreSQLTransactionRepository) Create(
	ctx context.Context,
	tx *financeDomain.Transaction,
) error {
	querier := database.GetTx(ctx, p.db)

	encryptedAmount, encryptedDescription, err := encryptTransactionFields(p.cipher, tx)
	if err != nil {
		return err
	}

	query := `INSERT INTO transactions (id, user_id, type, amount, category, description, occurred_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		tx.ID,
		tx.UserID,
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
func (p *PostgreSQLTransactionRepository) Get(
	ctx context.Context,
	userID, txID uuid.UUID,
) (*financeDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, type, amount, category, description, occurred_at, created_at, updated_at
			  FROM transactions WHERE id = $1 AND user_id = $2`

	row := querier.QueryRowContext(ctx, query, txID, userID)

	tx, err := scanTransaction(p.cipher, row)
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
func (p *PostgreSQLTransactionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	from, to *time.Time,
	offset, limit int,
) ([]*financeDomain.Transaction, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, type, amount, category, description, occurred_at, created_at, updated_at
			  FROM transactions WHERE user_id = $1`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += ` AND occurred_at >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			query += ` AND occurred_at < $3`
		} else {
			query += ` AND occurred_at < $2`
		}
	}

	switch len(args) {
	case 1:
		query += ` ORDER BY occurred_at DESC LIMIT $2 OFFSET $3`
	case 2:
		query += ` ORDER BY occurred_at DESC LIMIT $3 OFFSET $4`
	default:
		query += ` ORDER BY occurred_at DESC LIMIT $4 OFFSET $5`
	}
	args = append(args, limit, offset)

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list transactions")
	}
	defer rows.Close()

	var transactions []*financeDomain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(p.cipher, rows)
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
func (p *PostgreSQLTransactionRepository) Update(
	ctx context.Context,
	tx *financeDomain.Transaction,
) error {
	querier := database.GetTx(ctx, p.db)

	encryptedAmount, encryptedDescription, err := encryptTransactionFields(p.cipher, tx)
	if err != nil {
		return err
	}

	query := `UPDATE transactions
			  SET type = $1, amount = $2, category = $3, description = $4, occurred_at = $5, updated_at = $6
			  WHERE id = $7 AND user_id = $8`

	result, err := querier.ExecContext(
		ctx,
		query,
		tx.Type,
		encryptedAmount,
		tx.Category,
		encryptedDescription,
		tx.OccurredAt,
		tx.UpdatedAt,
		tx.ID,
		tx.UserID,
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
func (p *PostgreSQLTransactionRepository) Delete(ctx context.Context, userID, txID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, txID, userID)
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

func encryptTransactionFields(
	cipher cryptoService.FieldCipher,
	tx *financeDomain.Transaction,
) (amount, description string, err error) {
	amount, err = cipher.EncryptAmount(tx.Amount)
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to encrypt amount")
	}
	if tx.Description != "" {
		description, err = cipher.Encrypt(tx.Description)
		if err != nil {
			return "", "", apperrors.Wrap(err, "failed to encrypt description")
		}
	}
	return amount, description, nil
}

func scanTransaction(cipher cryptoService.FieldCipher, row rowScanner) (*financeDomain.Transaction, error) {
	var tx financeDomain.Transaction
	var encryptedAmount, encryptedDescription string

	err := row.Scan(
		&tx.ID,
		&tx.UserID,
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

	tx.Amount, err = cipher.DecryptAmount(encryptedAmount)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to decrypt amount")
	}
	if encryptedDescription != "" {
		tx.Description, err = cipher.Decrypt(encryptedDescription)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decrypt description")
		}
	}
	return &tx, nil
}

// rowScanner lets scan helpers accept both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}
