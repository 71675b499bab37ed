package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type Repos struct {
	Users       repos.UserRepo
	Quotas      repos.QuotaRepo
	AudioAssets repos.AudioAssetRepo
	Transcripts repos.TranscriptRepo
	Summaries   repos.SummaryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Users:       repos.NewUserRepo(db, log),
		Quotas:      repos.NewQuotaRepo(db, log),
		AudioAssets: repos.NewAudioAssetRepo(db, log),
		Transcripts: repos.NewTranscriptRepo(db, log),
		Summaries:   repos.NewSummaryRepo(db, log),
	}
}
