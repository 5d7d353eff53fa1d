package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"socialapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn    func(context.Context, *models.User) error
	getByIDFn   func(context.Context, string) (*models.User, error)
	getByIDsFn  func(context.Context, []string) ([]models.User, error)
	listFn      func(context.Context) ([]models.User, error)
	updateFn    func(context.Context, *models.User) error
	addFriendFn func(context.Context, string, string) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *userRepoStub) List(ctx context.Context) ([]models.User, error) {
	return s.listFn(ctx)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) AddFriend(ctx context.Context, userID, friendID string) error {
	return s.addFriendFn(ctx, userID, friendID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id, Username: "user-" + id, Email: id + "@gmail.com"}, nil
		},
		getByIDsFn:  func(_ context.Context, _ []string) ([]models.User, error) { return []models.User{}, nil },
		listFn:      func(_ context.Context) ([]models.User, error) { return nil, nil },
		updateFn:    func(_ context.Context, _ *models.User) error { return nil },
		addFriendFn: func(_ context.Context, _, _ string) error { return nil },
	}
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateUserInput
		msg   string
	}{
		{"missing username", CreateUserInput{Email: "jenny@gmail.com"}, "username is required"},
		{"blank username", CreateUserInput{Username: "   ", Email: "jenny@gmail.com"}, "username is required"},
		{"missing email", CreateUserInput{Username: "jenny"}, "email is required"},
		{"invalid email", CreateUserInput{Username: "jenny", Email: "not-an-email"}, "email must be a valid email address"},
		{"username too long", CreateUserInput{Username: strings.Repeat("j", 101), Email: "jenny@gmail.com"}, "username must be at most 100 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreateUser(ctx, tt.input)
			assertValidationError(t, err)
			assert.EqualError(t, err, tt.msg)
		})
	}
}

func TestUserService_CreateUser_Success(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	var stored *models.User
	repo.createFn = func(_ context.Context, u *models.User) error {
		u.ID = "u1"
		stored = u
		return nil
	}

	profile, err := NewUserService(repo).CreateUser(context.Background(), CreateUserInput{
		Username: "  jenny ",
		Email:    " jenny@gmail.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.ID)
	assert.Equal(t, "jenny", stored.Username, "input is trimmed")
	assert.Equal(t, "jenny@gmail.com", stored.Email)
	assert.Empty(t, profile.Friends)
	assert.NotNil(t, profile.Friends)
}

func TestUserService_CreateUser_DuplicatePropagates(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.createFn = func(_ context.Context, _ *models.User) error {
		return models.NewValidationError("Username or email already exists")
	}
	_, err := NewUserService(repo).CreateUser(context.Background(), CreateUserInput{Username: "jenny", Email: "jenny@gmail.com"})
	assertValidationError(t, err)
}

func TestUserService_ListUsers_PopulatesFriends(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.listFn = func(_ context.Context) ([]models.User, error) {
		return []models.User{
			{ID: "a", Username: "jenny", FriendIDs: []string{"b", "c"}},
			{ID: "b", Username: "mike", FriendIDs: []string{"c"}},
			{ID: "c", Username: "veronica"},
		}, nil
	}
	calls := 0
	repo.getByIDsFn = func(_ context.Context, ids []string) ([]models.User, error) {
		calls++
		assert.ElementsMatch(t, []string{"b", "c", "c"}, ids)
		return []models.User{
			{ID: "b", Username: "mike", FriendIDs: []string{"c"}},
			{ID: "c", Username: "veronica"},
		}, nil
	}

	profiles, err := NewUserService(repo).ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, 1, calls, "friends are resolved in one batch")

	require.Len(t, profiles[0].Friends, 2)
	assert.Equal(t, "mike", profiles[0].Friends[0].Username)
	assert.Equal(t, []string{"c"}, profiles[0].Friends[0].FriendIDs)
	assert.Equal(t, "veronica", profiles[1].Friends[0].Username)
	assert.Empty(t, profiles[2].Friends)
}

func TestUserService_ListUsers_Empty(t *testing.T) {
	t.Parallel()

	profiles, err := NewUserService(noopUserRepo()).ListUsers(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	t.Parallel()

	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}
	_, err := NewUserService(repo).GetUser(context.Background(), "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestUserService_UpdateUser(t *testing.T) {
	t.Parallel()

	t.Run("empty fields are left unchanged", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		var updated models.User
		repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
			if updated.ID != "" {
				u := updated
				return &u, nil
			}
			return &models.User{ID: id, Username: "jenny", Email: "jenny@gmail.com"}, nil
		}
		repo.updateFn = func(_ context.Context, u *models.User) error {
			updated = *u
			return nil
		}

		profile, err := NewUserService(repo).UpdateUser(context.Background(), UpdateUserInput{ID: "u1", Email: "jenny@yahoo.com"})
		require.NoError(t, err)
		assert.Equal(t, "jenny", updated.Username)
		assert.Equal(t, "jenny@yahoo.com", updated.Email)
		assert.Equal(t, "jenny@yahoo.com", profile.Email)
	})

	t.Run("invalid email", func(t *testing.T) {
		t.Parallel()
		_, err := NewUserService(noopUserRepo()).UpdateUser(context.Background(), UpdateUserInput{ID: "u1", Email: "nope"})
		assertValidationError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		}
		repo.updateFn = func(_ context.Context, _ *models.User) error {
			t.Error("update must not run for an unknown user")
			return nil
		}
		_, err := NewUserService(repo).UpdateUser(context.Background(), UpdateUserInput{ID: "missing", Username: "x"})
		assert.True(t, models.IsNotFound(err))
	})
}

func TestUserService_AddFriend(t *testing.T) {
	t.Parallel()

	t.Run("unknown friend", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
			if id == "ghost" {
				return nil, models.NewNotFoundError("User", id)
			}
			return &models.User{ID: id}, nil
		}
		repo.addFriendFn = func(_ context.Context, _, _ string) error {
			t.Error("add friend must not run for an unknown friend")
			return nil
		}
		_, err := NewUserService(repo).AddFriend(context.Background(), "a", "ghost")
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("existing friend is a no-op", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
			if id == "a" {
				return &models.User{ID: "a", FriendIDs: []string{"b"}}, nil
			}
			return &models.User{ID: id}, nil
		}
		repo.addFriendFn = func(_ context.Context, _, _ string) error {
			t.Error("add friend must not run twice")
			return nil
		}
		repo.getByIDsFn = func(_ context.Context, ids []string) ([]models.User, error) {
			return []models.User{{ID: "b", Username: "mike"}}, nil
		}
		profile, err := NewUserService(repo).AddFriend(context.Background(), "a", "b")
		require.NoError(t, err)
		assert.Len(t, profile.Friends, 1)
	})

	t.Run("adds friend", func(t *testing.T) {
		t.Parallel()
		repo := noopUserRepo()
		friends := []string{}
		repo.getByIDFn = func(_ context.Context, id string) (*models.User, error) {
			if id == "a" {
				return &models.User{ID: "a", FriendIDs: friends}, nil
			}
			return &models.User{ID: id}, nil
		}
		repo.addFriendFn = func(_ context.Context, userID, friendID string) error {
			assert.Equal(t, "a", userID)
			friends = append(friends, friendID)
			return nil
		}
		repo.getByIDsFn = func(_ context.Context, ids []string) ([]models.User, error) {
			out := make([]models.User, 0, len(ids))
			for _, id := range ids {
				out = append(out, models.User{ID: id})
			}
			return out, nil
		}
		profile, err := NewUserService(repo).AddFriend(context.Background(), "a", "b")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, profile.FriendIDs)
		require.Len(t, profile.Friends, 1)
		assert.Equal(t, "b", profile.Friends[0].ID)
	})
}
