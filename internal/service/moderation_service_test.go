package service

import (
	"context"
	"testing"

	"shelftalk/internal/models"
	"shelftalk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModerationService_ReportUser_Validation(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewModerationService(repository.NewUserRepository(db), repository.NewReportRepository(db))
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")
	bob := createServiceUser(t, db, "bob")

	t.Run("Missing reason", func(t *testing.T) {
		_, err := svc.ReportUser(ctx, alice.ID, bob.ID, "")
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Self report", func(t *testing.T) {
		_, err := svc.ReportUser(ctx, alice.ID, alice.ID, "suspicious")
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Unknown target", func(t *testing.T) {
		_, err := svc.ReportUser(ctx, alice.ID, "missing-id", "spam")
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestModerationService_ReportUser_CountsEveryReport(t *testing.T) {
	db := setupServiceDB(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewModerationService(userRepo, repository.NewReportRepository(db))
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")
	bob := createServiceUser(t, db, "bob")
	carol := createServiceUser(t, db, "carol")

	// Two reporters plus a duplicate from the first; no dedup.
	for _, in := range []struct{ reporter, reason string }{
		{alice.ID, "spam"},
		{carol.ID, "harassment"},
		{alice.ID, "spam again"},
	} {
		report, err := svc.ReportUser(ctx, in.reporter, bob.ID, in.reason)
		require.NoError(t, err)
		assert.Equal(t, bob.ID, report.ReportedUserID)
	}

	reported, err := userRepo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reported.ReportCount)
}

func TestModerationService_SetBanned(t *testing.T) {
	db := setupServiceDB(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewModerationService(userRepo, repository.NewReportRepository(db))
	ctx := context.Background()

	admin := createServiceUser(t, db, "admin")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.RoleAdmin).Error)
	alice := createServiceUser(t, db, "alice")
	bob := createServiceUser(t, db, "bob")

	t.Run("Non-admin caller", func(t *testing.T) {
		err := svc.SetBanned(ctx, alice.ID, bob.ID, true, "spam")
		assert.True(t, models.HasCode(err, models.CodePermission))
	})

	t.Run("Admin bans and unbans", func(t *testing.T) {
		require.NoError(t, svc.SetBanned(ctx, admin.ID, bob.ID, true, "spam"))

		banned, err := userRepo.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.True(t, banned.IsBanned)
		assert.Equal(t, "spam", banned.BannedReason)
		assert.NotNil(t, banned.BannedAt)

		require.NoError(t, svc.SetBanned(ctx, admin.ID, bob.ID, false, ""))
		unbanned, err := userRepo.GetByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.False(t, unbanned.IsBanned)
		assert.Nil(t, unbanned.BannedAt)
	})

	t.Run("Self ban rejected", func(t *testing.T) {
		err := svc.SetBanned(ctx, admin.ID, admin.ID, true, "oops")
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Unknown target", func(t *testing.T) {
		err := svc.SetBanned(ctx, admin.ID, "missing-id", true, "spam")
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestModerationService_ListReports(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewModerationService(repository.NewUserRepository(db), repository.NewReportRepository(db))
	ctx := context.Background()

	admin := createServiceUser(t, db, "admin")
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", admin.ID).Update("role", models.RoleAdmin).Error)
	alice := createServiceUser(t, db, "alice")
	bob := createServiceUser(t, db, "bob")

	_, err := svc.ReportUser(ctx, alice.ID, bob.ID, "spam")
	require.NoError(t, err)

	t.Run("Admin sees reports", func(t *testing.T) {
		reports, err := svc.ListReports(ctx, admin.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.Equal(t, "spam", reports[0].Reason)

		forBob, err := svc.ListReportsForUser(ctx, admin.ID, bob.ID, 0, 0)
		require.NoError(t, err)
		assert.Len(t, forBob, 1)
	})

	t.Run("Non-admin denied", func(t *testing.T) {
		_, err := svc.ListReports(ctx, alice.ID, 0, 0)
		assert.True(t, models.HasCode(err, models.CodePermission))
	})
}
