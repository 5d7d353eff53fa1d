package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"socialapi/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUser(t *testing.T, repo UserRepository, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@gmail.com"}
	require.NoError(t, repo.Create(context.Background(), u))
	require.NotEmpty(t, u.ID)
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := NewUserRepository(setupSQLite(t))
	ctx := context.Background()

	jenny := createUser(t, repo, "jenny")
	assert.Empty(t, jenny.FriendIDs)
	assert.NotNil(t, jenny.FriendIDs)

	got, err := repo.GetByID(ctx, jenny.ID)
	require.NoError(t, err)
	assert.Equal(t, "jenny", got.Username)
	assert.Equal(t, "jenny@gmail.com", got.Email)
	assert.Equal(t, []string{}, got.ThoughtIDs)
	assert.Equal(t, []string{}, got.FriendIDs)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	repo := NewUserRepository(setupSQLite(t))
	createUser(t, repo, "jenny")

	tests := []struct {
		name string
		user *models.User
	}{
		{"duplicate username", &models.User{Username: "jenny", Email: "other@gmail.com"}},
		{"duplicate email", &models.User{Username: "other", Email: "jenny@gmail.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), tt.user)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		})
	}
}

func TestUserRepository_ListOrderAndGetByIDs(t *testing.T) {
	repo := NewUserRepository(setupSQLite(t))
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, createUser(t, repo, fmt.Sprintf("user%d", i)).ID)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	for i, u := range users {
		assert.Equal(t, ids[i], u.ID, "creation order")
	}

	got, err := repo.GetByIDs(ctx, []string{ids[2], "missing", ids[0], ids[2]})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[0], got[1].ID)

	empty, err := repo.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(setupSQLite(t))
	ctx := context.Background()
	jenny := createUser(t, repo, "jenny")
	createUser(t, repo, "mike")

	jenny.Email = "jenny@yahoo.com"
	require.NoError(t, repo.Update(ctx, jenny))

	got, err := repo.GetByID(ctx, jenny.ID)
	require.NoError(t, err)
	assert.Equal(t, "jenny@yahoo.com", got.Email)

	jenny.Username = "mike"
	assert.Equal(t, models.CodeValidation, models.ErrorCode(repo.Update(ctx, jenny)))

	err = repo.Update(ctx, &models.User{ID: "missing", Username: "x", Email: "x@gmail.com"})
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_AddFriend(t *testing.T) {
	repo := NewUserRepository(setupSQLite(t))
	ctx := context.Background()
	jenny := createUser(t, repo, "jenny")
	mike := createUser(t, repo, "mike")
	vero := createUser(t, repo, "veronica")

	require.NoError(t, repo.AddFriend(ctx, jenny.ID, mike.ID))
	require.NoError(t, repo.AddFriend(ctx, jenny.ID, vero.ID))
	require.NoError(t, repo.AddFriend(ctx, jenny.ID, mike.ID), "repeat is a no-op")

	got, err := repo.GetByID(ctx, jenny.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{mike.ID, vero.ID}, got.FriendIDs, "insertion order, no duplicates")

	other, err := repo.GetByID(ctx, mike.ID)
	require.NoError(t, err)
	assert.Empty(t, other.FriendIDs, "friendship is one-directional")
}

func TestUserRepository_GetByID_Mock(t *testing.T) {
	tests := []struct {
		name     string
		mockFunc func(mock sqlmock.Sqlmock)
		wantCode string
	}{
		{
			name: "Not Found",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
					WithArgs("u1", 1).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email"}))
			},
			wantCode: models.CodeNotFound,
		},
		{
			name: "Database Error",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
					WithArgs("u1", 1).
					WillReturnError(errors.New("connection reset"))
			},
			wantCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewUserRepository(db)
			tt.mockFunc(mock)

			_, err := repo.GetByID(context.Background(), "u1")
			assert.Equal(t, tt.wantCode, models.ErrorCode(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Update_UniqueViolationMock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "users" SET`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.User{ID: "u1", Username: "jenny", Email: "jenny@gmail.com"})
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pg error", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg other code", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.email"), true},
		{"unrelated", errors.New("timeout"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintError(tt.err))
		})
	}
}
