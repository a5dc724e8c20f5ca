package service

import (
	"context"
	"fmt"
	"time"

	"shelftalk/internal/cache"
	"shelftalk/internal/models"
	"shelftalk/internal/repository"
	"shelftalk/internal/validation"
)

// UserService provides profile and account business logic.
type UserService struct {
	userRepo         repository.UserRepository
	usernameCooldown time.Duration
	reauthWindow     time.Duration
}

// UpdateProfileInput is the input for updating a user profile.
type UpdateProfileInput struct {
	UserID   string
	Username string
	Bio      string
	Avatar   string
}

// NewUserService returns a new UserService. cooldownDays bounds username
// changes; reauthWindowMinutes bounds how old a session may be for account
// deletion.
func NewUserService(userRepo repository.UserRepository, cooldownDays, reauthWindowMinutes int) *UserService {
	return &UserService{
		userRepo:         userRepo,
		usernameCooldown: time.Duration(cooldownDays) * 24 * time.Hour,
		reauthWindow:     time.Duration(reauthWindowMinutes) * time.Minute,
	}
}

// GetUserByID returns the user or a NotFound error.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

// GetUserByUsername returns the user or a NotFound error.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

const maxBioLen = 500

// UpdateProfile applies profile changes. Username changes are rate limited
// by the cooldown window; the window starts at the previous change, not at
// account creation.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != "" && in.Username != user.Username {
		if err := validation.ValidateUsername(in.Username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if user.UsernameChangedAt != nil {
			nextAllowed := user.UsernameChangedAt.Add(s.usernameCooldown)
			if remaining := time.Until(nextAllowed); remaining > 0 {
				days := int(remaining.Hours()/24) + 1
				return nil, models.NewValidationError(
					fmt.Sprintf("Username can be changed again in %d day(s)", days))
			}
		}
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, classifyStoreError(err)
		}
		if existing != nil {
			return nil, models.NewValidationError("Username is already taken")
		}
		now := time.Now().UTC()
		user.Username = in.Username
		user.UsernameChangedAt = &now
	}
	if in.Bio != "" {
		if len(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, classifyStoreError(err)
	}
	cache.InvalidateUser(ctx, user.ID)

	return user, nil
}

// DeleteAccount removes the account. The session must have been issued
// within the reauth window; older sessions get REAUTH_REQUIRED and the
// client must log in again first. Authored messages are kept in their
// conversation logs.
func (s *UserService) DeleteAccount(ctx context.Context, userID string, tokenIssuedAt time.Time) error {
	if tokenIssuedAt.IsZero() || time.Since(tokenIssuedAt) > s.reauthWindow {
		return models.NewReauthRequiredError("Recent login required to delete your account")
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return classifyStoreError(err)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}
