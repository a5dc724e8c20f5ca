package models

import (
	"time"

	"gorm.io/gorm"
)

// Shelf statuses for a book on a user's shelf.
const (
	ShelfRead       = "read"
	ShelfReading    = "reading"
	ShelfWantToRead = "want_to_read"
)

// Book is one entry on a user's shelf.
type Book struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"not null;index;size:36" json:"user_id"`
	Title     string         `gorm:"not null" json:"title"`
	Author    string         `json:"author"`
	CoverURL  string         `json:"cover_url"`
	Shelf     string         `gorm:"default:'want_to_read'" json:"shelf"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Reviews   []Review       `gorm:"foreignKey:BookID" json:"reviews,omitempty"`
}

// Legacy free-text review verdicts from before numeric ratings existed.
const (
	LegacyVerdictGood = "good"
	LegacyVerdictBad  = "bad"
)

// Numeric ratings assigned to legacy verdicts at read time.
const (
	LegacyGoodRating = 4
	LegacyBadRating  = 2
)

// Review is a user's review of a book. Older rows carry only the free-text
// verdict in Body ("good"/"bad") and a nil Rating; NormalizeRating migrates
// them at read time.
type Review struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	BookID    uint           `gorm:"not null;index" json:"book_id"`
	UserID    string         `gorm:"not null;index;size:36" json:"user_id"`
	Body      string         `gorm:"type:text" json:"body"`
	Rating    *int           `json:"rating,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NormalizeRating fills in the numeric rating for legacy rows. It is the
// single place the "good"/"bad" to numeric mapping lives; every read path
// goes through it rather than falling back inline.
func (r *Review) NormalizeRating() {
	if r.Rating != nil {
		return
	}
	switch r.Body {
	case LegacyVerdictGood:
		rating := LegacyGoodRating
		r.Rating = &rating
	case LegacyVerdictBad:
		rating := LegacyBadRating
		r.Rating = &rating
	}
}
