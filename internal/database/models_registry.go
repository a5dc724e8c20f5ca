package database

import (
	"shelftalk/internal/models"

	"gorm.io/gorm"
)

// RegisteredModels lists every model AutoMigrate manages. Order matters for
// foreign keys: referenced tables first.
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Book{},
		&models.Review{},
		&models.Message{},
		&models.ConversationSummary{},
		&models.ConversationUnread{},
		&models.Report{},
	}
}

// Migrate runs AutoMigrate over the model registry.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(RegisteredModels()...)
}
