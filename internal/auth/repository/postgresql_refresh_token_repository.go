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

// PostgreSQLRefreshTokenRepository implements RefreshTokenRecord persistence
// for PostgreSQL. Only token hashes are stored, never raw tokens.
type PostgreSQLRefreshTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLRefreshTokenRepository creates a new PostgreSQL refresh token
// repository.
func NewPostgreSQLRefreshTokenRepository(db *sql.DB) *PostgreSQLRefreshTokenRepository {
	return &PostgreSQLRefreshTokenRepository{db: db}
}

// Add inserts a new refresh token record.
func (p *PostgreSQLRefreshTokenRepository) Add(
	ctx context.Context,
	record *authDomain.RefreshTokenRecord,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO refresh_tokens (id, user_id, token_hash, created_at, expires_at, revoked)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
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
func (p *PostgreSQLRefreshTokenRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.RefreshTokenRecord, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, user_id, token_hash, created_at, expires_at, revoked
			  FROM refresh_tokens WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list refresh tokens")
	}
	defer rows.Close()

	var records []*authDomain.RefreshTokenRecord
	for rows.Next() {
		var record authDomain.RefreshTokenRecord
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.TokenHash,
			&record.CreatedAt,
			&record.ExpiresAt,
			&record.Revoked,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan refresh token")
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate refresh tokens")
	}

	return records, nil
}

// Revoke marks the matching record revoked. The row is kept so that replays
// of a rotated token remain distinguishable from unknown tokens.
func (p *PostgreSQLRefreshTokenRepository) Revoke(
	ctx context.Context,
	userID uuid.UUID,
	tokenHash string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND token_hash = $2`

	_, err := querier.ExecContext(ctx, query, userID, tokenHash)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh token")
	}
	return nil
}

// RevokeAll marks every record for the user revoked.
func (p *PostgreSQLRefreshTokenRepository) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1`

	_, err := querier.ExecContext(ctx, query, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to revoke refresh tokens")
	}
	return nil
}

// Delete removes a single record by ID.
func (p *PostgreSQLRefreshTokenRepository) Delete(ctx context.Context, recordID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM refresh_tokens WHERE id = $1`

	_, err := querier.ExecContext(ctx, query, recordID)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete refresh token")
	}
	return nil
}

// PruneInactive deletes the user's expired and revoked records.
func (p *PostgreSQLRefreshTokenRepository) PruneInactive(ctx context.Context, userID uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM refresh_tokens WHERE user_id = $1 AND (revoked = TRUE OR expires_at <= $2)`

	_, err := querier.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return apperrors.Wrap(err, "failed to prune refresh tokens")
	}
	return nil
}

// DeleteExpired removes all records expired before the cutoff, across users.
func (p *PostgreSQLRefreshTokenRepository) DeleteExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM refresh_tokens WHERE expires_at <= $1`

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
