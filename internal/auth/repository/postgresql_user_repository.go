// Package repository implements data persistence for users, refresh tokens,
// and audit events.
//
// Provides PostgreSQL and MySQL implementations with transaction support via
// database.GetTx(). PostgreSQL uses native UUID types, MySQL uses BINARY(16)
// types. Personal fields (user name, email, audit details) cross this
// boundary encrypted: repositories encrypt on write and decrypt on read, so
// the layers above only ever handle plaintext.
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

// PostgreSQLUserRepository implements User persistence for PostgreSQL.
type PostgreSQLUserRepository struct {
	db     *sql.DB
	cipher cryptoService.FieldCipher
}

// NewPostgreSQLUserRepository creates a new PostgreSQL User repository.
func NewPostgreSQLUserRepository(db *sql.DB, cipher cryptoService.FieldCipher) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{db: db, cipher: cipher}
}

// Create inserts a new User with name and email encrypted at rest.
func (p *PostgreSQLUserRepository) Create(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	name, email, err := p.encryptIdentity(user)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
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
func (p *PostgreSQLUserRepository) Update(ctx context.Context, user *authDomain.User) error {
	querier := database.GetTx(ctx, p.db)

	name, email, err := p.encryptIdentity(user)
	if err != nil {
		return err
	}

	query := `UPDATE users
			  SET name = $1,
			  	  email = $2,
				  password_hash = $3,
				  provider = $4,
				  reset_token_hash = $5,
				  reset_token_expires_at = $6,
				  updated_at = $7
			  WHERE id = $8`

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
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user")
	}
	return nil
}

// Get retrieves a User by ID without credential material.
func (p *PostgreSQLUserRepository) Get(ctx context.Context, userID uuid.UUID) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, email, provider, created_at, updated_at FROM users WHERE id = $1`

	var user authDomain.User
	err := querier.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
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

	if err := p.decryptIdentity(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetWithCredentials retrieves a User by ID including the password hash and
// reset token fields.
func (p *PostgreSQLUserRepository) GetWithCredentials(
	ctx context.Context,
	userID uuid.UUID,
) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at
			  FROM users WHERE id = $1`

	user, err := scanFullUser(querier.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, err
	}

	if err := p.decryptIdentity(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByResetTokenHash retrieves a User by the hash of an outstanding reset
// token. The hash is deterministic, so this is an indexed lookup.
func (p *PostgreSQLUserRepository) GetByResetTokenHash(
	ctx context.Context,
	hash string,
) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at
			  FROM users WHERE reset_token_hash = $1`

	user, err := scanFullUser(querier.QueryRowContext(ctx, query, hash))
	if err != nil {
		return nil, err
	}

	if err := p.decryptIdentity(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetByEmail resolves a User by email. Email ciphertext is non-deterministic
// so there is no email index to probe; the rows are scanned and each stored
// email decrypted and compared case-insensitively.
func (p *PostgreSQLUserRepository) GetByEmail(ctx context.Context, email string) (*authDomain.User, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at
			  FROM users`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to query users")
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanFullUserRows(rows)
		if err != nil {
			return nil, err
		}

		storedEmail, err := p.cipher.Decrypt(user.Email)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to decrypt user email")
		}

		if strings.EqualFold(storedEmail, email) {
			user.Email = storedEmail
			name, err := p.cipher.Decrypt(user.Name)
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

func (p *PostgreSQLUserRepository) encryptIdentity(user *authDomain.User) (name, email string, err error) {
	name, err = p.cipher.Encrypt(user.Name)
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to encrypt user name")
	}

	email, err = p.cipher.Encrypt(user.Email)
	if err != nil {
		return "", "", apperrors.Wrap(err, "failed to encrypt user email")
	}
	return name, email, nil
}

func (p *PostgreSQLUserRepository) decryptIdentity(user *authDomain.User) error {
	name, err := p.cipher.Decrypt(user.Name)
	if err != nil {
		return apperrors.Wrap(err, "failed to decrypt user name")
	}
	user.Name = name

	email, err := p.cipher.Decrypt(user.Email)
	if err != nil {
		return apperrors.Wrap(err, "failed to decrypt user email")
	}
	user.Email = email
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFullUser(row rowScanner) (*authDomain.User, error) {
	var user authDomain.User
	err := row.Scan(
		&user.ID,
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
	return &user, nil
}

func scanFullUserRows(rows *sql.Rows) (*authDomain.User, error) {
	var user authDomain.User
	err := rows.Scan(
		&user.ID,
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
	return &user, nil
}
