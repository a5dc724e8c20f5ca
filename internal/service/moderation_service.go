package service

import (
	"context"
	"errors"
	"log/slog"

	"shelftalk/internal/cache"
	"shelftalk/internal/middleware"
	"shelftalk/internal/models"
	"shelftalk/internal/repository"

	"gorm.io/gorm"
)

// ModerationService provides reporting and admin ban/unban logic.
type ModerationService struct {
	userRepo   repository.UserRepository
	reportRepo repository.ReportRepository
}

// NewModerationService returns a new ModerationService.
func NewModerationService(userRepo repository.UserRepository, reportRepo repository.ReportRepository) *ModerationService {
	return &ModerationService{
		userRepo:   userRepo,
		reportRepo: reportRepo,
	}
}

// ReportUser files a moderation report against a user and bumps their report
// count. Repeated reports from the same reporter all count; dedup is a
// moderator concern, not a write-path one.
func (s *ModerationService) ReportUser(ctx context.Context, reporterID, reportedUserID, reason string) (*models.Report, error) {
	if reason == "" {
		return nil, models.NewValidationError("A report reason is required")
	}
	if reporterID == reportedUserID {
		return nil, models.NewValidationError("You cannot report yourself")
	}

	reported, err := s.userRepo.GetByID(ctx, reportedUserID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if reported == nil {
		return nil, models.NewNotFoundError("User", reportedUserID)
	}

	report := &models.Report{
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		Reason:         reason,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, classifyStoreError(err)
	}

	// The count rides a field-level increment, so concurrent reports from
	// different moderator queues never clobber each other. A failure here
	// leaves the report row in place and only the denormalized count stale.
	if err := s.userRepo.IncrementReportCount(ctx, reportedUserID); err != nil {
		slog.WarnContext(ctx, "report count increment failed",
			"reported_user_id", reportedUserID, "report_id", report.ID, "err", err)
	}

	middleware.ReportsFiled.Inc()
	cache.InvalidateUser(ctx, reportedUserID)

	return report, nil
}

// SetBanned bans or unbans a user. The caller must hold the admin role in
// the user table; a client-supplied claim is never trusted for this.
func (s *ModerationService) SetBanned(ctx context.Context, adminID, targetID string, banned bool, reason string) error {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return classifyStoreError(err)
	}
	if admin == nil || !admin.IsAdmin() {
		return models.NewPermissionError("Admin role required")
	}
	if adminID == targetID {
		return models.NewValidationError("Admins cannot ban themselves")
	}

	if err := s.userRepo.SetBanned(ctx, targetID, banned, reason); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", targetID)
		}
		return classifyStoreError(err)
	}
	cache.InvalidateUser(ctx, targetID)

	slog.InfoContext(ctx, "user ban state changed",
		"admin_id", adminID, "target_id", targetID, "banned", banned)
	return nil
}

// ListReports returns recent reports for admin review, newest first.
func (s *ModerationService) ListReports(ctx context.Context, adminID string, limit, offset int) ([]*models.Report, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if admin == nil || !admin.IsAdmin() {
		return nil, models.NewPermissionError("Admin role required")
	}
	limit, offset = clampPagination(limit, offset)
	reports, err := s.reportRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	return reports, nil
}

// ListReportsForUser returns reports filed against one user, newest first.
func (s *ModerationService) ListReportsForUser(ctx context.Context, adminID, reportedUserID string, limit, offset int) ([]*models.Report, error) {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if admin == nil || !admin.IsAdmin() {
		return nil, models.NewPermissionError("Admin role required")
	}
	limit, offset = clampPagination(limit, offset)
	reports, err := s.reportRepo.ListForUser(ctx, reportedUserID, limit, offset)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	return reports, nil
}
