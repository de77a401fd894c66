// Package service provides application business logic on top of the
// repository layer.
package service

import (
	"context"
	"strings"

	"kulan/internal/models"
	"kulan/internal/repository"
)

const maxPostContentLen = 10000 // 10K characters

// PostService provides feed, post, like and comment business logic.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
}

// CreatePostInput is the input for creating a post.
type CreatePostInput struct {
	UserID   uint
	Content  string
	Privacy  string
	ImageURL string
	VideoURL string
	AudioURL string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository) *PostService {
	return &PostService{postRepo: postRepo, commentRepo: commentRepo}
}

// CreatePost validates and stores a new post. A post needs text content or at
// least one attached media file; privacy defaults to public.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	privacy := in.Privacy
	switch privacy {
	case "":
		privacy = models.PrivacyPublic
	case models.PrivacyPublic, models.PrivacyPrivate:
		// valid
	default:
		return nil, models.NewValidationError("Invalid privacy value")
	}

	post := &models.Post{
		UserID:   in.UserID,
		Content:  content,
		Privacy:  privacy,
		ImageURL: in.ImageURL,
		VideoURL: in.VideoURL,
		AudioURL: in.AudioURL,
	}
	if content == "" && !post.HasMedia() {
		return nil, models.NewValidationError("Post needs content or a media attachment")
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// Feed returns the newest-first feed visible to the user: public posts plus
// the user's own private posts.
func (s *PostService) Feed(ctx context.Context, currentUserID uint) ([]*models.Post, error) {
	return s.postRepo.Feed(ctx, currentUserID)
}

// ToggleLike alternates the like state for (post, user) and returns the new
// state. The underlying insert is conflict-safe so concurrent double-clicks
// cannot double-insert.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return false, err
	}

	inserted, err := s.postRepo.Like(ctx, postID, userID)
	if err != nil {
		return false, err
	}
	if inserted {
		return true, nil
	}
	if err := s.postRepo.Unlike(ctx, postID, userID); err != nil {
		return false, err
	}
	return false, nil
}

// CreateComment appends a comment to the post.
func (s *PostService) CreateComment(ctx context.Context, postID, userID uint, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if len(content) > maxPostContentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the post's comments ascending by creation time.
func (s *PostService) ListComments(ctx context.Context, postID, currentUserID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, currentUserID); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
