// Package service holds the business rules for users, thoughts and
// reactions. Handlers call services; services call repositories.
package service

import (
	"context"
	"strings"

	"socialapi/internal/models"
	"socialapi/internal/observability"
	"socialapi/internal/repository"
	"socialapi/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type UserService struct {
	userRepo repository.UserRepository
}

type CreateUserInput struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// UpdateUserInput leaves a field unchanged when it is empty.
type UpdateUserInput struct {
	ID       string `json:"-"`
	Username string `json:"username" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (profile *models.UserProfile, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.CreateUser")
	defer func() { span.End(err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user := &models.User{Username: in.Username, Email: in.Email}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, Friends: []models.User{}}, nil
}

// ListUsers returns every user in creation order with friends resolved in
// a single batched lookup.
func (s *UserService) ListUsers(ctx context.Context) (profiles []models.UserProfile, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.ListUsers")
	defer func() { span.End(err) }()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	var friendIDs []string
	for _, u := range users {
		friendIDs = append(friendIDs, u.FriendIDs...)
	}
	friends, err := s.userRepo.GetByIDs(ctx, friendIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.User, len(friends))
	for _, f := range friends {
		byID[f.ID] = f
	}

	profiles = make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, profileOf(u, byID))
	}
	return profiles, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (profile *models.UserProfile, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.GetUser", attribute.String("user.id", id))
	defer func() { span.End(err) }()

	return s.getProfile(ctx, id)
}

func (s *UserService) UpdateUser(ctx context.Context, in UpdateUserInput) (profile *models.UserProfile, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.UpdateUser", attribute.String("user.id", in.ID))
	defer func() { span.End(err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.userRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.Username != "" {
		user.Username = in.Username
	}
	if in.Email != "" {
		user.Email = in.Email
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.getProfile(ctx, in.ID)
}

// AddFriend records friendID as a friend of userID. The relation is
// one-directional and adding an existing friend changes nothing.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID string) (profile *models.UserProfile, err error) {
	span, ctx := observability.NewSpan(ctx, "UserService.AddFriend",
		attribute.String("user.id", userID),
		attribute.String("friend.id", friendID),
	)
	defer func() { span.End(err) }()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, friendID); err != nil {
		return nil, err
	}

	if !user.HasFriend(friendID) {
		if err := s.userRepo.AddFriend(ctx, userID, friendID); err != nil {
			return nil, err
		}
	}

	return s.getProfile(ctx, userID)
}

func (s *UserService) getProfile(ctx context.Context, id string) (*models.UserProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	friends, err := s.userRepo.GetByIDs(ctx, user.FriendIDs)
	if err != nil {
		return nil, err
	}
	return &models.UserProfile{User: *user, Friends: friends}, nil
}

func profileOf(u models.User, byID map[string]models.User) models.UserProfile {
	friends := make([]models.User, 0, len(u.FriendIDs))
	for _, id := range u.FriendIDs {
		if f, ok := byID[id]; ok {
			friends = append(friends, f)
		}
	}
	return models.UserProfile{User: u, Friends: friends}
}
