package repository

import (
	"context"
	"errors"

	"kulan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedLimit caps the number of rows returned by the feed query.
const FeedLimit = 50

// PostRepository defines the interface for post and like data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID fetches a single post with the same visibility rule as the
	// feed: another user's private post reads as not found.
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	// Feed returns public posts plus the requester's own private posts,
	// newest first, enriched with author identity, aggregate counts and the
	// requester's liked flag.
	Feed(ctx context.Context, currentUserID uint) ([]*models.Post, error)
	// Like inserts the (post,user) like row; reports false when the row
	// already existed. The insert is conflict-safe, not check-then-act.
	Like(ctx context.Context, postID, userID uint) (bool, error)
	Unlike(ctx context.Context, postID, userID uint) error
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{}), currentUserID).
		Preload("User").
		Where("posts.privacy = ? OR posts.user_id = ?", models.PrivacyPublic, currentUserID).
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Feed(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{}), currentUserID).
		Preload("User").
		Where("posts.privacy = ? OR posts.user_id = ?", models.PrivacyPublic, currentUserID).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(FeedLimit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// applyPostDetails adds subqueries fetching counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+
			", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked",
			currentUserID)
	}

	return db.Select(selectQuery + ", 0 AS liked")
}

func (r *postRepository) Like(ctx context.Context, postID, userID uint) (bool, error) {
	like := models.Like{PostID: postID, UserID: userID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) error {
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
