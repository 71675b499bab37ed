package summarizer

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/llm"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

const (
	ModeSingle = "single"
	ModeSplit  = "split"
)

// TranscriptSource resolves an owned asset's transcript. A nil transcript means none exists yet.
type TranscriptSource interface {
	Get(ctx context.Context, userID, assetID uuid.UUID) (*types.Transcript, error)
}

type UsecasesDeps struct {
	DB          *gorm.DB
	Log         *logger.Logger
	Transcripts TranscriptSource
	Summaries   repos.SummaryRepo
	LLM         llm.Client
	// Mode is ModeSingle (default) or ModeSplit.
	Mode string
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log != nil {
		deps.Log = deps.Log.With("service", "SummarizationEngine")
	}
	deps.Mode = strings.ToLower(strings.TrimSpace(deps.Mode))
	if deps.Mode != ModeSplit {
		deps.Mode = ModeSingle
	}
	return Usecases{deps: deps}
}
