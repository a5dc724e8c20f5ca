package repository

import (
	"context"

	"shelftalk/internal/models"

	"gorm.io/gorm"
)

// ReportRepository defines the interface for moderation report data operations
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	ListForUser(ctx context.Context, reportedUserID string, limit, offset int) ([]*models.Report, error)
	List(ctx context.Context, limit, offset int) ([]*models.Report, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) ListForUser(ctx context.Context, reportedUserID string, limit, offset int) ([]*models.Report, error) {
	var reports []*models.Report
	err := r.db.WithContext(ctx).
		Where("reported_user_id = ?", reportedUserID).
		Preload("Reporter").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, err
}

func (r *reportRepository) List(ctx context.Context, limit, offset int) ([]*models.Report, error) {
	var reports []*models.Report
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("ReportedUser").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	return reports, err
}
