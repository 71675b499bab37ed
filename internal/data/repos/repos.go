package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos/audio"
	"github.com/yungbote/meetingscribe-backend/internal/data/repos/meeting"
	"github.com/yungbote/meetingscribe-backend/internal/data/repos/user"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type QuotaRepo = user.QuotaRepo

type AudioAssetRepo = audio.AudioAssetRepo

type TranscriptRepo = meeting.TranscriptRepo
type SummaryRepo = meeting.SummaryRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo   { return user.NewUserRepo(db, log) }
func NewQuotaRepo(db *gorm.DB, log *logger.Logger) QuotaRepo { return user.NewQuotaRepo(db, log) }

func NewAudioAssetRepo(db *gorm.DB, log *logger.Logger) AudioAssetRepo {
	return audio.NewAudioAssetRepo(db, log)
}

func NewTranscriptRepo(db *gorm.DB, log *logger.Logger) TranscriptRepo {
	return meeting.NewTranscriptRepo(db, log)
}

func NewSummaryRepo(db *gorm.DB, log *logger.Logger) SummaryRepo {
	return meeting.NewSummaryRepo(db, log)
}
