package repository

import (
	"context"
	"errors"

	"socialapi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a GORM-backed UserRepository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return duplicateUserError()
		}
		return models.NewInternalError(err)
	}
	user.ThoughtIDs = []string{}
	user.FriendIDs = []string{}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}

	users := []models.User{user}
	if err := r.hydrate(ctx, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return []models.User{}, nil
	}

	var found []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.hydrate(ctx, found); err != nil {
		return nil, err
	}

	byID := make(map[string]models.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	users := make([]models.User, 0, len(found))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at, id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.hydrate(ctx, users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"username": user.Username,
			"email":    user.Email,
		})
	if result.Error != nil {
		if isUniqueConstraintError(result.Error) {
			return duplicateUserError()
		}
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("User", user.ID)
	}
	return nil
}

func (r *userRepository) AddFriend(ctx context.Context, userID, friendID string) error {
	edge := models.Friendship{UserID: userID, FriendID: friendID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "friend_id"}},
			DoNothing: true,
		}).
		Create(&edge).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// hydrate fills ThoughtIDs and FriendIDs for users with two queries.
func (r *userRepository) hydrate(ctx context.Context, users []models.User) error {
	if len(users) == 0 {
		return nil
	}

	ids := make([]string, len(users))
	index := make(map[string]int, len(users))
	for i := range users {
		ids[i] = users[i].ID
		index[users[i].ID] = i
		users[i].ThoughtIDs = []string{}
		users[i].FriendIDs = []string{}
	}

	var thoughts []struct {
		ID     string
		UserID string
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Thought{}).
		Select("id", "user_id").
		Where("user_id IN ?", ids).
		Order("created_at, id").
		Scan(&thoughts).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, t := range thoughts {
		i := index[t.UserID]
		users[i].ThoughtIDs = append(users[i].ThoughtIDs, t.ID)
	}

	var edges []models.Friendship
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Order("id").
		Find(&edges).Error; err != nil {
		return models.NewInternalError(err)
	}
	for _, e := range edges {
		i := index[e.UserID]
		users[i].FriendIDs = append(users[i].FriendIDs, e.FriendID)
	}
	return nil
}
