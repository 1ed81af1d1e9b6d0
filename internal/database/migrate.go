package database

import (
	"alphaboard/internal/models"

	"gorm.io/gorm"
)

// RegisteredModels is the single source of truth for schema migration order.
// Votes and attachments reference posts/comments only by (target_type,
// target_id), so there is no FK ordering constraint beyond posts-then-comments.
func RegisteredModels() []interface{} {
	return []interface{}{
		&models.Post{},
		&models.Comment{},
		&models.Vote{},
		&models.Attachment{},
	}
}

// Migrate runs GORM auto-migration for every registered model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(RegisteredModels()...)
}
