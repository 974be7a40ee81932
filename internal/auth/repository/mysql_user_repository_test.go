package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/ledgerly/securecore/internal/auth/domain"
	cryptoService "github.com/ledgerly/securecore/internal/crypto/service"
)

func newMySQLUserRepoMock(t *testing.T) (*MySQLUserRepository, sqlmock.Sqlmock, cryptoService.FieldCipher) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cipher := newTestCipher(t)
	return NewMySQLUserRepository(db, cipher), mock, cipher
}

func TestMySQLUserRepository_Create(t *testing.T) {
	repo, mock, _ := newMySQLUserRepoMock(t)
	user := testUser()

	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).
		WithArgs(
			id,
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

	err = repo.Create(context.Background(), user)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_Get(t *testing.T) {
	repo, mock, cipher := newMySQLUserRepoMock(t)
	user := testUser()

	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	name, err := cipher.Encrypt(user.Name)
	require.NoError(t, err)
	email, err := cipher.Encrypt(user.Email)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "provider", "created_at", "updated_at"}).
		AddRow(id, name, email, string(user.Provider), user.CreatedAt, user.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, email, provider, created_at, updated_at FROM users WHERE id = ?`)).
		WithArgs(id).
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), user.ID)

	require.NoError(t, err)
	// BINARY(16) round-trips back to the same UUID.
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "Alice Smith", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_GetByEmail(t *testing.T) {
	repo, mock, cipher := newMySQLUserRepoMock(t)

	user := testUser()
	id, err := user.ID.MarshalBinary()
	require.NoError(t, err)

	name, err := cipher.Encrypt(user.Name)
	require.NoError(t, err)
	email, err := cipher.Encrypt(user.Email)
	require.NoError(t, err)

	rows := sqlmock.NewRows(fullUserColumns()).AddRow(
		id, name, email, user.PasswordHash, string(user.Provider),
		nil, nil, user.CreatedAt, user.UpdatedAt,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "ALICE@example.com")

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUserRepository_GetNotFound(t *testing.T) {
	repo, mock, _ := newMySQLUserRepoMock(t)
	userID := uuid.Must(uuid.NewV7())

	id, err := userID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = ?`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "provider", "created_at", "updated_at"}))

	_, err = repo.Get(context.Background(), userID)

	assert.ErrorIs(t, err, authDomain.ErrUserNotFound)
}
