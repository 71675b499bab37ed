package meeting

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type SummaryRepo interface {
	// Replace drops any summary for s.TranscriptID and inserts s with its items.
	// Run it inside a transaction so readers never see the gap.
	Replace(dbc dbctx.Context, s *types.Summary) error
	GetByTranscriptID(dbc dbctx.Context, transcriptID uuid.UUID) (*types.Summary, error)
}

type summaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSummaryRepo(db *gorm.DB, baseLog *logger.Logger) SummaryRepo {
	return &summaryRepo{db: db, log: baseLog.With("repo", "SummaryRepo")}
}

func (r *summaryRepo) Replace(dbc dbctx.Context, s *types.Summary) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	tx := transaction.WithContext(dbc.Ctx)

	var existing []uuid.UUID
	if err := tx.Model(&types.Summary{}).
		Where("transcript_id = ?", s.TranscriptID).
		Pluck("id", &existing).Error; err != nil {
		return err
	}
	if len(existing) > 0 {
		// Children first: not every driver enforces the FK cascade.
		if err := tx.Where("summary_id IN ?", existing).Delete(&types.ActionItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("summary_id IN ?", existing).Delete(&types.KeyPoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", existing).Delete(&types.Summary{}).Error; err != nil {
			return err
		}
	}

	for i := range s.ActionItems {
		s.ActionItems[i].Position = i
	}
	for i := range s.KeyPoints {
		s.KeyPoints[i].Position = i
	}
	return tx.Create(s).Error
}

func (r *summaryRepo) GetByTranscriptID(dbc dbctx.Context, transcriptID uuid.UUID) (*types.Summary, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if transcriptID == uuid.Nil {
		return nil, nil
	}
	var s types.Summary
	if err := transaction.WithContext(dbc.Ctx).
		Preload("ActionItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("KeyPoints", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("transcript_id = ?", transcriptID).
		Limit(1).
		Find(&s).Error; err != nil {
		return nil, err
	}
	if s.ID == uuid.Nil {
		return nil, nil
	}
	return &s, nil
}
