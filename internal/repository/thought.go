package repository

import (
	"context"
	"errors"

	"socialapi/internal/models"

	"gorm.io/gorm"
)

type thoughtRepository struct {
	db *gorm.DB
}

// NewThoughtRepository returns a GORM-backed ThoughtRepository. The author
// link is the thoughts.user_id column, so Create is a single insert.
func NewThoughtRepository(db *gorm.DB) ThoughtRepository {
	return &thoughtRepository{db: db}
}

func withReactions(db *gorm.DB) *gorm.DB {
	return db.Preload("Reactions", func(db *gorm.DB) *gorm.DB {
		return db.Order("reactions.id")
	})
}

func (r *thoughtRepository) Create(ctx context.Context, thought *models.Thought) error {
	if err := r.db.WithContext(ctx).Create(thought).Error; err != nil {
		return models.NewInternalError(err)
	}
	if thought.Reactions == nil {
		thought.Reactions = []models.Reaction{}
	}
	return nil
}

func (r *thoughtRepository) GetByID(ctx context.Context, id string) (*models.Thought, error) {
	var thought models.Thought
	if err := withReactions(r.db.WithContext(ctx)).Where("id = ?", id).First(&thought).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thought", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &thought, nil
}

func (r *thoughtRepository) List(ctx context.Context) ([]models.Thought, error) {
	var thoughts []models.Thought
	if err := withReactions(r.db.WithContext(ctx)).Order("created_at, id").Find(&thoughts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return thoughts, nil
}

func (r *thoughtRepository) UpdateText(ctx context.Context, id, text string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Thought{}).
		Where("id = ?", id).
		Update("thought_text", text)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Thought", id)
	}
	return nil
}

func (r *thoughtRepository) AddReaction(ctx context.Context, thoughtID string, reaction *models.Reaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Thought{}).Where("id = ?", thoughtID).Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}
		if count == 0 {
			return models.NewNotFoundError("Thought", thoughtID)
		}

		reaction.ThoughtID = thoughtID
		if err := tx.Create(reaction).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
}
