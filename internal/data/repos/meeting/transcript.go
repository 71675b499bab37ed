package meeting

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type TranscriptRepo interface {
	Create(dbc dbctx.Context, t *types.Transcript) error
	GetByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.Transcript, error)
}

type transcriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptRepo {
	return &transcriptRepo{db: db, log: baseLog.With("repo", "TranscriptRepo")}
}

// Create relies on the audio_asset_id unique index; callers handle the duplicate.
func (r *transcriptRepo) Create(dbc dbctx.Context, t *types.Transcript) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(t).Error
}

func (r *transcriptRepo) GetByAssetID(dbc dbctx.Context, assetID uuid.UUID) (*types.Transcript, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if assetID == uuid.Nil {
		return nil, nil
	}
	var t types.Transcript
	if err := transaction.WithContext(dbc.Ctx).
		Where("audio_asset_id = ?", assetID).
		Limit(1).
		Find(&t).Error; err != nil {
		return nil, err
	}
	if t.ID == uuid.Nil {
		return nil, nil
	}
	return &t, nil
}
