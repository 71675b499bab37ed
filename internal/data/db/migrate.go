package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.AllModels()...)
}
