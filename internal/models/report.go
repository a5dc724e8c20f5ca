package models

import "time"

// Report is a user-filed moderation report. Repeated reports from the same
// reporter are not deduplicated; each successful report bumps the reported
// user's report count by one (at-least-once).
type Report struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReporterID     string    `gorm:"not null;index;size:36" json:"reporter_id"`
	Reporter       *User     `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReportedUserID string    `gorm:"not null;index;size:36" json:"reported_user_id"`
	ReportedUser   *User     `gorm:"foreignKey:ReportedUserID" json:"reported_user,omitempty"`
	Reason         string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}
