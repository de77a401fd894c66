package service

import (
	"context"

	"kulan/internal/models"
	"kulan/internal/repository"

	"golang.org/x/sync/errgroup"
)

// Stats aggregates the four admin dashboard counts.
type Stats struct {
	Users    int64 `json:"users"`
	Posts    int64 `json:"posts"`
	Comments int64 `json:"comments"`
	Messages int64 `json:"messages"`
}

// AdminService provides admin panel business logic.
type AdminService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	chatRepo    repository.ChatRepository
	reportRepo  repository.ReportRepository
}

// NewAdminService returns a new AdminService.
func NewAdminService(
	userRepo repository.UserRepository,
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	chatRepo repository.ChatRepository,
	reportRepo repository.ReportRepository,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		chatRepo:    chatRepo,
		reportRepo:  reportRepo,
	}
}

// GetStats runs the four independent count queries concurrently and responds
// only once all of them have completed.
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.userRepo.Count(gctx)
		stats.Users = n
		return err
	})
	g.Go(func() error {
		n, err := s.postRepo.Count(gctx)
		stats.Posts = n
		return err
	})
	g.Go(func() error {
		n, err := s.commentRepo.Count(gctx)
		stats.Comments = n
		return err
	})
	g.Go(func() error {
		n, err := s.chatRepo.CountMessages(gctx)
		stats.Messages = n
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListUsers returns all users with their post counts.
func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.ListWithPostCounts(ctx)
}

// ToggleBlock flips the blocked flag for the user and returns the new state.
func (s *AdminService) ToggleBlock(ctx context.Context, userID uint) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	blocked := !user.IsBlocked
	if err := s.userRepo.SetBlocked(ctx, userID, blocked); err != nil {
		return false, err
	}
	return blocked, nil
}

// DeleteUser removes the user and everything they own in one transaction.
// Admin accounts cannot be deleted through this path.
func (s *AdminService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return models.NewForbiddenError("Cannot delete an admin account")
	}
	return s.userRepo.Delete(ctx, userID)
}

// FileReport records a moderation report from a user.
func (s *AdminService) FileReport(ctx context.Context, reporterID uint, targetType string, targetID uint, reason string) (*models.Report, error) {
	switch targetType {
	case models.ReportTargetPost, models.ReportTargetUser, models.ReportTargetComment:
		// valid
	default:
		return nil, models.NewValidationError("Invalid report target type")
	}
	if targetID == 0 {
		return nil, models.NewValidationError("A report target is required")
	}
	if reason == "" {
		return nil, models.NewValidationError("A report reason is required")
	}

	report := &models.Report{
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns reports filtered by status ("" for all).
func (s *AdminService) ListReports(ctx context.Context, status string) ([]*models.Report, error) {
	switch status {
	case "", models.ReportStatusPending, models.ReportStatusReviewed, models.ReportStatusDismissed:
		return s.reportRepo.List(ctx, status)
	default:
		return nil, models.NewValidationError("Invalid report status")
	}
}

// ResolveReport updates a report's review status.
func (s *AdminService) ResolveReport(ctx context.Context, id uint, status string) error {
	switch status {
	case models.ReportStatusReviewed, models.ReportStatusDismissed, models.ReportStatusPending:
		return s.reportRepo.UpdateStatus(ctx, id, status)
	default:
		return models.NewValidationError("Invalid report status")
	}
}

// PublishNotice stores an admin broadcast notice.
func (s *AdminService) PublishNotice(ctx context.Context, adminID uint, title, content string) (*models.AdminMessage, error) {
	if title == "" || content == "" {
		return nil, models.NewValidationError("Title and content are required")
	}
	notice := &models.AdminMessage{
		AdminID: adminID,
		Title:   title,
		Content: content,
	}
	if err := s.reportRepo.CreateNotice(ctx, notice); err != nil {
		return nil, err
	}
	return notice, nil
}

// ListNotices returns all admin broadcast notices, newest first.
func (s *AdminService) ListNotices(ctx context.Context) ([]*models.AdminMessage, error) {
	return s.reportRepo.ListNotices(ctx)
}
