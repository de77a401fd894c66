package repository

import (
	"context"

	"kulan/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines persistence operations for moderation reports and
// admin broadcast notices.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	List(ctx context.Context, status string) ([]*models.Report, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	CreateNotice(ctx context.Context, notice *models.AdminMessage) error
	ListNotices(ctx context.Context) ([]*models.AdminMessage, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) List(ctx context.Context, status string) ([]*models.Report, error) {
	q := r.db.WithContext(ctx).Preload("Reporter").Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var reports []*models.Report
	if err := q.Find(&reports).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Report", id)
	}
	return nil
}

func (r *reportRepository) CreateNotice(ctx context.Context, notice *models.AdminMessage) error {
	if err := r.db.WithContext(ctx).Create(notice).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) ListNotices(ctx context.Context) ([]*models.AdminMessage, error) {
	var notices []*models.AdminMessage
	err := r.db.WithContext(ctx).
		Preload("Admin").
		Order("created_at DESC").
		Find(&notices).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notices, nil
}
