package server

import (
	"context"
	"time"

	"socialapi/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetThoughts handles GET /api/thoughts
// @Summary List thoughts
// @Tags Thoughts
// @Produce json
// @Success 200 {array} models.Thought
// @Router /thoughts [get]
func (s *Server) GetThoughts(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	thoughts, err := s.thoughtSvc().ListThoughts(ctx)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(thoughts)
}

// CreateThought handles POST /api/thoughts
// @Summary Create a thought for a user
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param body body service.CreateThoughtInput true "Thought text, username and author id"
// @Success 200 {object} models.Thought
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /thoughts [post]
func (s *Server) CreateThought(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	var req struct {
		ThoughtText string `json:"thoughtText"`
		Username    string `json:"username"`
		UserID      string `json:"userId"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	thought, err := s.thoughtSvc().CreateThought(ctx, service.CreateThoughtInput{
		ThoughtText: req.ThoughtText,
		Username:    req.Username,
		UserID:      req.UserID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(thought)
}

// GetThought handles GET /api/thoughts/:id
// @Summary Get a thought
// @Tags Thoughts
// @Produce json
// @Param id path string true "Thought ID"
// @Success 200 {object} models.Thought
// @Failure 404 {object} models.ErrorResponse
// @Router /thoughts/{id} [get]
func (s *Server) GetThought(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	thought, err := s.thoughtSvc().GetThought(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(thought)
}

// UpdateThought handles PUT /api/thoughts/:id
// @Summary Replace a thought's text
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param id path string true "Thought ID"
// @Param body body service.UpdateThoughtInput true "New text"
// @Success 200 {object} models.Thought
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /thoughts/{id} [put]
func (s *Server) UpdateThought(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ThoughtText string `json:"thoughtText"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	thought, err := s.thoughtSvc().UpdateThought(ctx, service.UpdateThoughtInput{
		ID:          id,
		ThoughtText: req.ThoughtText,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(thought)
}

// AddReaction handles POST /api/thoughts/:thoughtId/reactions
// @Summary Add a reaction to a thought
// @Tags Thoughts
// @Accept json
// @Produce json
// @Param thoughtId path string true "Thought ID"
// @Param body body service.AddReactionInput true "Reaction body and username"
// @Success 200 {object} models.Thought
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /thoughts/{thoughtId}/reactions [post]
func (s *Server) AddReaction(c *fiber.Ctx) error {
	thoughtID, err := s.parseID(c, "thoughtId")
	if err != nil {
		return nil
	}

	var req struct {
		ReactionBody string `json:"reactionBody"`
		Username     string `json:"username"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	thought, err := s.thoughtSvc().AddReaction(ctx, service.AddReactionInput{
		ThoughtID:    thoughtID,
		ReactionBody: req.ReactionBody,
		Username:     req.Username,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(thought)
}
