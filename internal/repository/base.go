// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"socialapi/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users. Returned users
// carry their thought ids (creation order) and friend ids (insertion order).
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs returns the users in the order of ids, skipping unknown ids.
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Update writes username and email.
	Update(ctx context.Context, user *models.User) error
	// AddFriend appends friendID to userID's friends; repeating it is a no-op.
	AddFriend(ctx context.Context, userID, friendID string) error
}

// ThoughtRepository defines persistence operations for thoughts and their reactions.
type ThoughtRepository interface {
	// Create stores the thought and links it to its author.
	Create(ctx context.Context, thought *models.Thought) error
	GetByID(ctx context.Context, id string) (*models.Thought, error)
	List(ctx context.Context) ([]models.Thought, error)
	UpdateText(ctx context.Context, id, text string) error
	AddReaction(ctx context.Context, thoughtID string, reaction *models.Reaction) error
}

const uniqueViolation = "23505"

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, uniqueViolation)
}

func duplicateUserError() error {
	return models.NewValidationError("Username or email already exists")
}

// uniqueStrings drops repeated ids, keeping first occurrences.
func uniqueStrings(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
