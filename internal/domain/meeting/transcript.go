package meeting

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/domain/audio"
)

// Transcript is unique per audio asset.
type Transcript struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AudioAssetID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex;column:audio_asset_id" json:"audio_asset_id"`
	AudioAsset   *audio.AudioAsset `gorm:"foreignKey:AudioAssetID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Text         string            `gorm:"type:text;not null;column:text" json:"text"`
	Language     string            `gorm:"column:language" json:"language"`
	CreatedAt    time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (Transcript) TableName() string { return "transcript" }

func (t *Transcript) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
