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

type ThoughtService struct {
	thoughtRepo repository.ThoughtRepository
	userRepo    repository.UserRepository
}

// CreateThoughtInput names the author by UserID. Username is copied onto the
// thought and defaults to the author's current username.
type CreateThoughtInput struct {
	ThoughtText string `json:"thoughtText" validate:"required,max=280"`
	Username    string `json:"username" validate:"omitempty,max=100"`
	UserID      string `json:"userId" validate:"required"`
}

type UpdateThoughtInput struct {
	ID          string `json:"-"`
	ThoughtText string `json:"thoughtText" validate:"required,max=280"`
}

type AddReactionInput struct {
	ThoughtID    string `json:"-"`
	ReactionBody string `json:"reactionBody" validate:"required,max=280"`
	Username     string `json:"username" validate:"required,max=100"`
}

func NewThoughtService(thoughtRepo repository.ThoughtRepository, userRepo repository.UserRepository) *ThoughtService {
	return &ThoughtService{thoughtRepo: thoughtRepo, userRepo: userRepo}
}

func (s *ThoughtService) CreateThought(ctx context.Context, in CreateThoughtInput) (thought *models.Thought, err error) {
	span, ctx := observability.NewSpan(ctx, "ThoughtService.CreateThought", attribute.String("user.id", in.UserID))
	defer func() { span.End(err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.UserID = strings.TrimSpace(in.UserID)
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	username := in.Username
	if username == "" {
		username = author.Username
	}

	thought = &models.Thought{
		ThoughtText: in.ThoughtText,
		Username:    username,
		UserID:      author.ID,
		Reactions:   []models.Reaction{},
	}
	if err := s.thoughtRepo.Create(ctx, thought); err != nil {
		return nil, err
	}
	return thought, nil
}

func (s *ThoughtService) ListThoughts(ctx context.Context) (thoughts []models.Thought, err error) {
	span, ctx := observability.NewSpan(ctx, "ThoughtService.ListThoughts")
	defer func() { span.End(err) }()

	thoughts, err = s.thoughtRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if thoughts == nil {
		thoughts = []models.Thought{}
	}
	return thoughts, nil
}

func (s *ThoughtService) GetThought(ctx context.Context, id string) (thought *models.Thought, err error) {
	span, ctx := observability.NewSpan(ctx, "ThoughtService.GetThought", attribute.String("thought.id", id))
	defer func() { span.End(err) }()

	return s.thoughtRepo.GetByID(ctx, id)
}

// UpdateThought replaces the text. Username and createdAt are left as they were.
func (s *ThoughtService) UpdateThought(ctx context.Context, in UpdateThoughtInput) (thought *models.Thought, err error) {
	span, ctx := observability.NewSpan(ctx, "ThoughtService.UpdateThought", attribute.String("thought.id", in.ID))
	defer func() { span.End(err) }()

	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	thought, err = s.thoughtRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if err := s.thoughtRepo.UpdateText(ctx, in.ID, in.ThoughtText); err != nil {
		return nil, err
	}
	thought.ThoughtText = in.ThoughtText
	return thought, nil
}

func (s *ThoughtService) AddReaction(ctx context.Context, in AddReactionInput) (thought *models.Thought, err error) {
	span, ctx := observability.NewSpan(ctx, "ThoughtService.AddReaction", attribute.String("thought.id", in.ThoughtID))
	defer func() { span.End(err) }()

	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	reaction := &models.Reaction{ReactionBody: in.ReactionBody, Username: in.Username}
	if err := s.thoughtRepo.AddReaction(ctx, in.ThoughtID, reaction); err != nil {
		return nil, err
	}
	return s.thoughtRepo.GetByID(ctx, in.ThoughtID)
}
