package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
	"github.com/ledgerly/securecore/internal/database"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

// MySQLUserRepository implements User persistence for MySQL.
// Uses BINARY(16) for UUID storage with transaction support via database.GetTx().
type MySQLUserRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewMySQLUserRepository creates a new MySQL User repository.
func NewMySQLUserRepository(db *sql.DB, cipher cryptoService.FieldCipher) *MySQLUserRepository {
	return &MySQLUserRepository{db: db, cipher: cipher}
}

// Create inserts a new User with name and email encrypted at rest.
func (m *MySQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	name, err := m.cipher.Encrypt(user.Name)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt user name")
	}
	email, err := m.cipher.Encrypt(user.Email)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt user email")
	}

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `INSERT INTO users (id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		name,
		email,
		user.PasswordHash,
		user.Provider,
		user.ResetTokenHash,
		user.ResetTokenExpiresAt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// Update modifies an existing User, re-encrypting name and email.
func (m *MySQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, m.db)

	name, err := m.cipher.Encrypt(user.Name)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt user name")
	}
	email, err := m.cipher.Encrypt(user.Email)
	if err != nil {
		return apperrors.Wrap(err, "failed to encrypt user email")
	}

	id, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `UPDATE users
			  SET name = ?,
			  	  email = ?,
				  password_hash = ?,
				  provider = ?,
				  reset_token_hash = ?,
				  reset_token_expires_at = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err = querier.ExecContext(
		ctx,
		query,
		name,
		email,
		user.PasswordHash,
		user.Provider,
		user.ResetTokenHash,
		user.ResetTokenExpiresAt,
		user.UpdatedAt,
		id,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// Get retrieves a User by ID without credential material.
func (m *MySQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}

	query := `SELECT id, name, email, provider, created_at, updated_at FROM users WHERE id = ?`

	var user authDomain.User
	var idBytes []byte
	err = querier.QueryRowContext(ctx, query, id).Scan(
		&idBytes,
		&user.Name,
		&user.Email,
		&user.Provider,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if user.ID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	if err := m.decryptIdentity(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithCredentials retrieves a User by ID including the password hash and
// reset token fields.
func (m *MySQLUserRepository) GetWithCredentials(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.User, error) {
	id, err := userID.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal user id")
	}
	return m.getFullUser(ctx, `WHERE id = ?`, id)
}

// GetByResetTokenHash retrieves a User by the hash of an outstanding reset
// token.
func (m *MySQLUserRepository) GetByResetTokenHash(
	ctx context.Context,
	hash string,
) (*authDomain.User, error) {
	return m.getFullUser(ctx, `WHERE reset_token_hash = ?`, hash)
}

// GetByEmail resolves a User by email. Email ciphertext is non-deterministic
// so the rows are scanned and each stored email decrypted and compared
// case-insensitively.
func (m *MySQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at
			  FROM users`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	for rows.Next() {
		user, err := m.scanFullUser(rows)
		if err != nil {
			return nil, err
		}

		storedEmail, err := m.cipher.Decrypt(user.Email)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decrypt user email")
		}

		if strings.EqualFold(storedEmail, email) {
			user.Email = storedEmail
			name, err := m.cipher.Decrypt(user.Name)
			if err != nil {
				return nil, apperrors.Wrap(err, "failed to decrypt user name")
			}
			user.Name = name
			return user, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}

	return nil, authDomain.ErrUserNotFound
}

func (m *MySQLUserRepository) getFullUser(
	ctx context.Context,
	where string,
	arg any,
) (*authDomain.User, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at
			  FROM users ` + where

	var user authDomain.User
	var idBytes []byte
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	if user.ID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}

	if err := m.decryptIdentity(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *MySQLUserRepository) scanFullUser(rows *sql.Rows) (*authDomain.User, error) {
	var user authDomain.User
	var idBytes []byte
	err := rows.Scan(
		&idBytes,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Provider,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan user")
	}

	if user.ID, err = uuid.FromBytes(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal user id")
	}
	return &user, nil
}

func (m *MySQLUserRepository) decryptIdentity(user *authDomain.User) error {
	name, err := m.cipher.Decrypt(user.Name)
	if err != nil {
		return apperrors.Wrap(err, "failed to decrypt user name")
	}
	user.Name = name

	email, err := m.cipher.Decrypt(user.Email)
	if err != nil {
		return apperrors.Wrap(err, "failed to decrypt user email")
	}
	user.Email = email
	return nil
}
