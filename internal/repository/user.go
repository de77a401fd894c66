// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"kulan/internal/cache"
	"kulan/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// Delete removes the user and all rows they own (posts, comments, likes,
	// messages, reports) in one transaction.
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, excludeID uint) ([]models.User, error)
	Search(ctx context.Context, query string, excludeID uint) ([]models.User, error)
	ListWithPostCounts(ctx context.Context) ([]models.User, error)
	SetBlocked(ctx context.Context, id uint, blocked bool) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// cachedUser is the Redis serialization of a user row. models.User hides the
// password hash from JSON, so caching the model directly would return hits
// with an empty hash and break every flow that re-verifies the password.
type cachedUser struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Name         string    `json:"name"`
	ProfileImage string    `json:"profile_image"`
	Bio          string    `json:"bio"`
	IsAdmin      bool      `json:"is_admin"`
	IsBlocked    bool      `json:"is_blocked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newCachedUser(u *models.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		IsAdmin:      u.IsAdmin,
		IsBlocked:    u.IsBlocked,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c cachedUser) toModel() *models.User {
	return &models.User{
		ID:           c.ID,
		Username:     c.Username,
		Password:     c.PasswordHash,
		Name:         c.Name,
		ProfileImage: c.ProfileImage,
		Bio:          c.Bio,
		IsAdmin:      c.IsAdmin,
		IsBlocked:    c.IsBlocked,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var cached cachedUser

	err := cache.Aside(ctx, cache.UserKey(id), &cached, cache.UserTTL, func() error {
		var user models.User
		if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		cached = newCachedUser(&user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cached.toModel(), nil
}

// GetByUsername looks up a user case-insensitively. Returns (nil, nil) when no
// such user exists.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateUsernameError()
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateUsernameError()
		}
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		postIDs := tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id IN (?)", postIDs).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("sender_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reporter_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, excludeID uint) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("id <> ? AND is_blocked = ?", excludeID, false).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Search(ctx context.Context, query string, excludeID uint) ([]models.User, error) {
	var users []models.User
	like := "%" + strings.ToLower(query) + "%"
	err := r.db.WithContext(ctx).
		Where("id <> ? AND is_blocked = ?", excludeID, false).
		Where("LOWER(username) LIKE ? OR LOWER(name) LIKE ?", like, like).
		Order("username ASC").
		Limit(50).
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) ListWithPostCounts(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*, (SELECT COUNT(*) FROM posts WHERE posts.user_id = users.id) AS posts_count").
		Order("users.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) SetBlocked(ctx context.Context, id uint, blocked bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_blocked", blocked)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// isUniqueConstraintError matches uniqueness violations across SQLite and
// PostgreSQL without importing driver-specific error types.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "23505")
}
