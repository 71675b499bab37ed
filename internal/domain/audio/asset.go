package audio

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/domain/user"
)

// AudioAsset is an uploaded recording. Rows are immutable once created.
type AudioAsset struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	User            *user.User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Name            string     `gorm:"not null;column:name" json:"name"`
	SizeBytes       int64      `gorm:"not null;column:size_bytes" json:"size_bytes"`
	Extension       string     `gorm:"not null;column:extension" json:"extension"`
	DurationSeconds float64    `gorm:"not null;column:duration_seconds" json:"duration_seconds"`
	StorageKey      string     `gorm:"not null;uniqueIndex;column:storage_key" json:"-"`
	ContentType     string     `gorm:"column:content_type" json:"content_type"`
	CreatedAt       time.Time  `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (AudioAsset) TableName() string { return "audio_asset" }

func (a *AudioAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// DurationMinutes is the quota charge for this asset.
func (a *AudioAsset) DurationMinutes() float64 {
	if a == nil {
		return 0
	}
	return a.DurationSeconds / 60
}
