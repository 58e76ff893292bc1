package identity

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func newMockRepository(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(sqlx.NewDb(db, "postgres"), zap.NewNop()), mock
}

func TestPostgresRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	user := &User{
		ID:           "u-1",
		Name:         "Budi",
		Email:        "budi@example.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	t.Run("Success", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WithArgs(user.ID, user.Name, user.Email, user.PasswordHash, now, now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		assert.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: uniqueViolation, Message: "duplicate key value violates unique constraint"})

		assert.ErrorIs(t, repo.Create(ctx, user), ErrEmailTaken)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepository_FindByEmail(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT id, name, email, password_hash, created_at, updated_at FROM users WHERE email = $1")

	t.Run("Found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		now := time.Now().UTC()
		mock.ExpectQuery(query).
			WithArgs("budi@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow("u-1", "Budi", "budi@example.com", "hash", now, now))

		user, err := repo.FindByEmail(ctx, "budi@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(query).
			WithArgs("nobody@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresRepository_EnsureSchema(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaskDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://app:***@db:5432/scandidate", maskDatabaseURL("postgres://app:secret@db:5432/scandidate"))
	assert.Equal(t, "postgres://db/scandidate", maskDatabaseURL("postgres://db/scandidate"))
}
