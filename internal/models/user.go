// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. Moderation powers come from the role column, never from a
// client-supplied claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a ShelfTalk account.
type User struct {
	ID                string         `gorm:"primaryKey;size:36" json:"id"`
	Username          string         `gorm:"unique;not null" json:"username"`
	Email             string         `gorm:"unique;not null" json:"email"`
	Password          string         `gorm:"not null" json:"-"`
	Bio               string         `json:"bio"`
	Avatar            string         `json:"avatar"`
	Role              string         `gorm:"default:'user'" json:"role"`
	IsBanned          bool           `gorm:"default:false" json:"is_banned"`
	BannedAt          *time.Time     `json:"banned_at,omitempty"`
	BannedReason      string         `json:"banned_reason,omitempty"`
	ReportCount       int            `gorm:"default:0" json:"report_count"`
	UsernameChangedAt *time.Time     `json:"username_changed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
	Books             []Book         `gorm:"foreignKey:UserID" json:"books,omitempty"`
}

// BeforeCreate assigns a UUID identifier. UUIDs never contain the
// conversation-ID separator, which keeps derived IDs collision-free.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
