package repository

import (
	"context"

	"socialapi/internal/cache"
	"socialapi/internal/models"
)

// cachedUserRepository serves GetByID from Redis and invalidates on every write.
type cachedUserRepository struct {
	UserRepository
	cache *cache.Cache
}

// NewCachedUserRepository decorates next with cache-aside reads.
func NewCachedUserRepository(next UserRepository, c *cache.Cache) UserRepository {
	return &cachedUserRepository{UserRepository: next, cache: c}
}

func (r *cachedUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		u, err := r.UserRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *cachedUserRepository) Update(ctx context.Context, user *models.User) error {
	err := r.UserRepository.Update(ctx, user)
	r.cache.InvalidateUser(ctx, user.ID)
	return err
}

func (r *cachedUserRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	err := r.UserRepository.AddFriend(ctx, userID, friendID)
	r.cache.InvalidateUser(ctx, userID)
	return err
}

// cachedThoughtRepository serves GetByID from Redis. Creating a thought also
// invalidates its author, whose thought list changed.
type cachedThoughtRepository struct {
	ThoughtRepository
	cache *cache.Cache
}

// NewCachedThoughtRepository decorates next with cache-aside reads.
func NewCachedThoughtRepository(next ThoughtRepository, c *cache.Cache) ThoughtRepository {
	return &cachedThoughtRepository{ThoughtRepository: next, cache: c}
}

func (r *cachedThoughtRepository) Create(ctx context.Context, thought *models.Thought) error {
	userID := thought.UserID
	err := r.ThoughtRepository.Create(ctx, thought)
	r.cache.InvalidateUser(ctx, userID)
	return err
}

func (r *cachedThoughtRepository) GetByID(ctx context.Context, id string) (*models.Thought, error) {
	var thought models.Thought
	err := r.cache.Aside(ctx, cache.ThoughtKey(id), &thought, cache.ThoughtTTL, func() error {
		t, err := r.ThoughtRepository.GetByID(ctx, id)
		if err != nil {
			return err
		}
		thought = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &thought, nil
}

func (r *cachedThoughtRepository) UpdateText(ctx context.Context, id, text string) error {
	err := r.ThoughtRepository.UpdateText(ctx, id, text)
	r.cache.InvalidateThought(ctx, id)
	return err
}

func (r *cachedThoughtRepository) AddReaction(ctx context.Context, thoughtID string, reaction *models.Reaction) error {
	err := r.ThoughtRepository.AddReaction(ctx, thoughtID, reaction)
	r.cache.InvalidateThought(ctx, thoughtID)
	return err
}
