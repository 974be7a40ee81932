package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// MySQLRefreshTokenRepository implements RefreshTokenRecord persistence for
// MySQL. Uses BINARY(16) for UUID storage with transaction support via
// database.GetTx().
type MySQLRefreshTokenRepository struct {
	db *sql.DB
}

// NewMySQLRefreshTokenRepository creates a new MySQL refresh token repository.
func NewMySQLRefreshTokenRepository(db *sql.DB) *MySQLRefreshTokenRepository {
	return &MySQLRefreshTokenRepository{db: db}
}

// Add inserts a new refresh token record.
func (m *MySQLRefreshTokenRepository) Add(
	ctx context.Context,
	record *authDomain.RefreshTokenRecord,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	userID, err := record.UserID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, revoked)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		userID,
		record.TokenHash,
		record.CreatedAt,
		record.ExpiresAt,
		record.Revoked,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to add refresh token")
	}
	return nil
}

// ListByUser returns all records for a user, oldest first.
func (m *MySQLRefreshTokenRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.RefreshTokenRecord, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, user_id, token_hash, created_at, expires_at, revoked
			  FROM refresh_tokens WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, id)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list refresh tokens")
	}
	defer rows.Close()

	var records []*authDomain.RefreshTokenRecord
	for rows.Next() {
		var record authDomain.RefreshTokenRecord
		var idBytes, userIDBytes []byte
		err := rows.Scan(
			&idBytes,
			&userIDBytes,
			&record.TokenHash,
			&record.CreatedAt,
			&record.ExpiresAt,
			&record.Revoked,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan refresh token")
		}

		if record.ID, err = uuid.FromBytes(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal record id")
		}
		if record.UserID, err = uuid.FromBytes(userIDBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal user id")
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate refresh tokens")
	}

	return records, nil
}

// Revoke marks the matching record revoked.
func (m *MySQLRefreshTokenRepository) Revoke(
	ctx context.Context,
	userID uuid.UUID,
	tokenHash string,
) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = ? AND token_hash = ?`

	_, err = querier.ExecContext(ctx, query, id, tokenHash)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh token")
	}
	return nil
}

// RevokeAll marks every record for the user revoked.
func (m *MySQLRefreshTokenRepository) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = ?`

	_, err = querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh tokens")
	}
	return nil
}

// Delete removes a single record by ID.
func (m *MySQLRefreshTokenRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := recordID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	query := `DELETE FROM refresh_tokens WHERE id = ?`

	_, err = querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete refresh token")
	}
	return nil
}

// PruneInactive deletes the user's expired and revoked records.
func (m *MySQLRefreshTokenRepository) PruneInactive(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `DELETE FROM refresh_tokens WHERE user_id = ? AND (revoked = TRUE OR expires_at <= ?)`

	_, err = querier.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to prune refresh tokens")
	}
	return nil
}

// DeleteExpired removes all records expired before the cutoff, across users.
func (m *MySQLRefreshTokenRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM refresh_tokens WHERE expires_at <= ?`

	result, err := querier.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired refresh tokens")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count deleted refresh tokens")
	}
	return count, nil
}
