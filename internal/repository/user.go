package repository

import (
	"context"
	"errors"

	"litreview/internal/cache"
	"litreview/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetCredentials(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername looks a user up case-insensitively. Unknown usernames are a NotFound error.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	if username == "" {
		return nil, models.NewNotFoundError("User", username)
	}

	var user models.User
	err := cache.Aside(ctx, cache.UserNameKey(username), &user, cache.UserTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", username)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetCredentials loads a user with its password hash from the primary, skipping the cache.
func (r *userRepository) GetCredentials(ctx context.Context, username string) (*models.User, error) {
	username = models.NormalizeUsername(username)
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", username)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError("User already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Update writes the editable profile fields (email and bio) and drops every
// cached copy of the user, including the key of the username stored before the write.
func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	var stored []string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Pluck("username", &stored).Error; err != nil {
		return models.NewInternalError(err)
	}
	if len(stored) == 0 {
		return models.NewNotFoundError("User", user.ID)
	}

	if err := r.db.WithContext(ctx).Model(user).Select("email", "bio").Updates(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID, stored[0], user.Username)
	return nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	var users []models.User
	if err := readDB(r.db).WithContext(ctx).
		Order("username ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}
