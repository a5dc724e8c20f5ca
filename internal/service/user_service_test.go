package service

import (
	"context"
	"testing"
	"time"

	"shelftalk/internal/models"
	"shelftalk/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_UpdateProfile_UsernameCooldown(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUserService(repository.NewUserRepository(db), 30, 10)
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")

	t.Run("First change allowed", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:   alice.ID,
			Username: "alice-reads",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice-reads", updated.Username)
		assert.NotNil(t, updated.UsernameChangedAt)
	})

	t.Run("Second change inside window rejected", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:   alice.ID,
			Username: "alice-writes",
		})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Change after window allowed", func(t *testing.T) {
		old := time.Now().UTC().Add(-31 * 24 * time.Hour)
		require.NoError(t, db.Model(&models.User{}).
			Where("id = ?", alice.ID).
			Update("username_changed_at", &old).Error)

		updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:   alice.ID,
			Username: "alice-writes",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice-writes", updated.Username)
	})
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUserService(repository.NewUserRepository(db), 30, 10)
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")
	createServiceUser(t, db, "taken")

	t.Run("Taken username", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, Username: "taken"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Invalid username", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: alice.ID, Username: "x"})
		assert.True(t, models.HasCode(err, models.CodeValidation))
	})

	t.Run("Same username is a no-op", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{
			UserID:   alice.ID,
			Username: "alice",
			Bio:      "I read a lot",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", updated.Username)
		assert.Equal(t, "I read a lot", updated.Bio)
		assert.Nil(t, updated.UsernameChangedAt)
	})
}

func TestUserService_DeleteAccount_ReauthWindow(t *testing.T) {
	db := setupServiceDB(t)
	userRepo := repository.NewUserRepository(db)
	chatSvc := NewChatService(repository.NewChatRepository(db), userRepo, nil, nil)
	svc := NewUserService(userRepo, 30, 10)
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")
	bob := createServiceUser(t, db, "bob")

	_, err := chatSvc.SendMessage(ctx, SendMessageInput{
		SenderID: alice.ID, RecipientID: bob.ID, Text: "parting words",
	})
	require.NoError(t, err)

	t.Run("Stale session rejected", func(t *testing.T) {
		stale := time.Now().Add(-time.Hour)
		err := svc.DeleteAccount(ctx, alice.ID, stale)
		assert.True(t, models.HasCode(err, models.CodeReauthRequired))
	})

	t.Run("Zero issue time rejected", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, alice.ID, time.Time{})
		assert.True(t, models.HasCode(err, models.CodeReauthRequired))
	})

	t.Run("Fresh session deletes account but keeps messages", func(t *testing.T) {
		require.NoError(t, svc.DeleteAccount(ctx, alice.ID, time.Now()))

		gone, err := userRepo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		messages, err := chatSvc.GetMessages(ctx, bob.ID, alice.ID, 0, 0)
		require.NoError(t, err)
		require.Len(t, messages, 1)
		assert.Equal(t, "parting words", messages[0].Text)
	})
}

func TestUserService_GetUser(t *testing.T) {
	db := setupServiceDB(t)
	svc := NewUserService(repository.NewUserRepository(db), 30, 10)
	ctx := context.Background()

	alice := createServiceUser(t, db, "alice")

	got, err := svc.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	byName, err := svc.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = svc.GetUserByID(ctx, "missing-id")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
