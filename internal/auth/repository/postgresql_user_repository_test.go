package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
	apperrors "github.com/ledgerly/securecore/internal/errors"
)

func newTestCipher(t *testing.T) cryptoService.FieldCipher {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := cryptoService.NewFieldCipher(key)
	require.NoError(t, err)
	return cipher
}

func newUserRepoMock(t *testing.T) (*PostgreSQLUserRepository, sqlmock.Sqlmock, cryptoService.FieldCipher) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cipher := newTestCipher(t)
	return NewPostgreSQLUserRepository(db, cipher), mock, cipher
}

func fullUserColumns() []string {
	return []string{
		"id", "name", "email", "password_hash", "provider",
		"reset_token_hash", "reset_token_expires_at", "created_at", "updated_at",
	}
}

func addFullUserRow(
	t *testing.T,
	rows *sqlmock.Rows,
	cipher cryptoService.FieldCipher,
	user *authDomain.User,
) {
	t.Helper()

	name, err := cipher.Encrypt(user.Name)
	require.NoError(t, err)
	email, err := cipher.Encrypt(user.Email)
	require.NoError(t, err)

	var resetHash any
	if user.ResetTokenHash != nil {
		resetHash = *user.ResetTokenHash
	}
	var resetExpires any
	if user.ResetTokenExpiresAt != nil {
		resetExpires = *user.ResetTokenExpiresAt
	}

	rows.AddRow(
		user.ID.String(),
		name,
		email,
		user.PasswordHash,
		string(user.Provider),
		resetHash,
		resetExpires,
		user.CreatedAt,
		user.UpdatedAt,
	)
}

func testUser() *authDomain.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &authDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         "Alice Smith",
		Email:        "alice@example.com",
		PasswordHash: "$2a$12$stored-hash",
		Provider:     authDomain.LocalProvider,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	repo, mock, _ := newUserRepoMock(t)
	user := testUser()

	// Name and email are encrypted with a random nonce, so only their
	// presence can be matched, not their value.
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(
			user.ID,
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			user.PasswordHash,
			user.Provider,
			nil,
			nil,
			user.CreatedAt,
			user.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), user)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLUserRepository_Get(t *testing.T) {
	t.Run("Success_DecryptsIdentityFields", func(t *testing.T) {
		repo, mock, cipher := newUserRepoMock(t)
		user := testUser()

		name, err := cipher.Encrypt(user.Name)
		require.NoError(t, err)
		email, err := cipher.Encrypt(user.Email)
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{"id", "name", "email", "provider", "created_at", "updated_at"}).
			AddRow(user.ID.String(), name, email, string(user.Provider), user.CreatedAt, user.UpdatedAt)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, provider, created_at, updated_at FROM users WHERE id = $1`)).
			WithArgs(user.ID).
			WillReturnRows(rows)

		got, err := repo.Get(context.Background(), user.ID)

		require.NoError(t, err)
		assert.Equal(t, "Alice Smith", got.Name)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.Empty(t, got.PasswordHash, "default read excludes credentials")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		repo, mock, _ := newUserRepoMock(t)
		userID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, provider, created_at, updated_at FROM users WHERE id = $1`)).
			WithArgs(userID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), userID)

		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	t.Run("Success_ScansAndComparesCaseInsensitively", func(t *testing.T) {
		repo, mock, cipher := newUserRepoMock(t)

		other := testUser()
		other.Email = "bob@example.com"
		target := testUser()
		target.Email = "Alice@Example.com"

		rows := sqlmock.NewRows(fullUserColumns())
		addFullUserRow(t, rows, cipher, other)
		addFullUserRow(t, rows, cipher, target)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, password_hash, provider, reset_token_hash, reset_token_expires_at, created_at, updated_at`)).
			WillReturnRows(rows)

		got, err := repo.GetByEmail(context.Background(), "alice@EXAMPLE.com")

		require.NoError(t, err)
		assert.Equal(t, target.ID, got.ID)
		assert.Equal(t, "Alice@Example.com", got.Email)
		assert.Equal(t, target.PasswordHash, got.PasswordHash, "login path needs the hash")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NoMatch", func(t *testing.T) {
		repo, mock, cipher := newUserRepoMock(t)

		other := testUser()
		other.Email = "bob@example.com"

		rows := sqlmock.NewRows(fullUserColumns())
		addFullUserRow(t, rows, cipher, other)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).WillReturnRows(rows)

		_, err := repo.GetByEmail(context.Background(), "ghost@example.com")

		assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
	})

	t.Run("Success_PlaintextLegacyRowsStillMatch", func(t *testing.T) {
		repo, mock, _ := newUserRepoMock(t)

		// A row written before encryption was enabled is stored as
		// plaintext and must still resolve.
		legacy := testUser()
		rows := sqlmock.NewRows(fullUserColumns()).AddRow(
			legacy.ID.String(),
			legacy.Name,
			legacy.Email,
			legacy.PasswordHash,
			string(legacy.Provider),
			nil,
			nil,
			legacy.CreatedAt,
			legacy.UpdatedAt,
		)

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT`)).WillReturnRows(rows)

		got, err := repo.GetByEmail(context.Background(), "alice@example.com")

		require.NoError(t, err)
		assert.Equal(t, legacy.ID, got.ID)
	})
}

func TestPostgreSQLUserRepository_GetByResetTokenHash(t *testing.T) {
	repo, mock, cipher := newUserRepoMock(t)

	hash := "deadbeef"
	expires := time.Now().UTC().Add(5 * time.Minute).Truncate(time.Microsecond)
	user := testUser()
	user.ResetTokenHash = &hash
	user.ResetTokenExpiresAt = &expires

	rows := sqlmock.NewRows(fullUserColumns())
	addFullUserRow(t, rows, cipher, user)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE reset_token_hash = $1`)).
		WithArgs(hash).
		WillReturnRows(rows)

	got, err := repo.GetByResetTokenHash(context.Background(), hash)

	require.NoError(t, err)
	require.NotNil(t, got.ResetTokenHash)
	assert.Equal(t, hash, *got.ResetTokenHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLUserRepository_Update(t *testing.T) {
	repo, mock, _ := newUserRepoMock(t)
	user := testUser()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users`)).
		WithArgs(
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			user.PasswordHash,
			user.Provider,
			nil,
			nil,
			user.UpdatedAt,
			user.ID,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), user)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
