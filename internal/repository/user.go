// Package repository contains data access layers over the backing store.
package repository

import (
	"context"
	"errors"
	"time"

	"shelftalk/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	SetBanned(ctx context.Context, id string, banned bool, reason string) error
	IncrementReportCount(ctx context.Context, id string) error
	PromoteAdminByEmail(ctx context.Context, email string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// Delete removes the account record. Authored messages are intentionally not
// cascade-deleted; they remain in their conversation logs.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

func (r *userRepository) SetBanned(ctx context.Context, id string, banned bool, reason string) error {
	updates := map[string]interface{}{
		"is_banned":     banned,
		"banned_reason": reason,
	}
	if banned {
		now := time.Now().UTC()
		updates["banned_at"] = &now
	} else {
		updates["banned_at"] = nil
		updates["banned_reason"] = ""
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementReportCount bumps the denormalized report counter with a
// field-level increment so concurrent reporters never lose updates.
func (r *userRepository) IncrementReportCount(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error
}

func (r *userRepository) PromoteAdminByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("role", models.RoleAdmin).Error
}
