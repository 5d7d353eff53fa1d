package server

import (
	"context"
	"time"

	"socialapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users
// @Summary List users
// @Tags Users
// @Produce json
// @Success 200 {array} models.UserProfile
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	users, err := s.userSvc().ListUsers(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// CreateUser handles POST /api/users
// @Summary Create a user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body service.CreateUserInput true "Username and email"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Router /users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	user, err := s.userSvc().CreateUser(ctx, service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUser handles GET /api/users/:id
// @Summary Get a user with friends populated
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	user, err := s.userSvc().GetUser(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateUser handles PUT /api/users/:id
// @Summary Update a user's username or email
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body service.UpdateUserInput true "Fields to change"
// @Success 200 {object} models.UserProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	user, err := s.userSvc().UpdateUser(ctx, service.UpdateUserInput{
		ID:       id,
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// AddFriend handles POST /api/users/:userId/friends/:friendId
// @Summary Add a friend (one-directional)
// @Tags Users
// @Produce json
// @Param userId path string true "User ID"
// @Param friendId path string true "Friend user ID"
// @Success 200 {object} models.UserProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/friends/{friendId} [post]
func (s *Server) AddFriend(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}
	friendID, err := s.parseID(c, "friendId")
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	user, err := s.userSvc().AddFriend(ctx, userID, friendID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}
