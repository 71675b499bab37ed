package transcription

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
	"github.com/yungbote/meetingscribe-backend/internal/platform/httpx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

const DefaultTimeout = 5 * time.Minute

// The lock outlives the recognizer deadline by enough to cover download and conversion.
const transcribeLockSlack = 5 * time.Minute

// AssetResolver is the slice of audio intake this engine reads through.
type AssetResolver interface {
	GetByID(ctx context.Context, userID, assetID uuid.UUID) (*types.AudioAsset, error)
	GetURL(ctx context.Context, userID, assetID uuid.UUID) (string, error)
}

type MediaConverter interface {
	ConvertForRecognition(ctx context.Context, inputPath, outPath string) (string, error)
	WorkDir(ctx context.Context, prefix string) (string, func(), error)
}

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Assets      AssetResolver
	Transcripts repos.TranscriptRepo
	Media       MediaConverter
	Recognizer  gcp.Recognizer
	Locker      lock.Locker
	HTTP        *http.Client

	LanguageCode string
	// Timeout bounds the recognizer wait.
	Timeout time.Duration
}

type Usecases struct {
	deps   UsecasesDeps
	flight *singleflight.Group
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log != nil {
		deps.Log = deps.Log.With("service", "TranscriptionEngine")
	}
	if deps.LanguageCode == "" {
		deps.LanguageCode = "en-US"
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultTimeout
	}
	if deps.HTTP == nil {
		deps.HTTP = httpx.NewClient(0)
	}
	if deps.Locker == nil {
		deps.Locker = lock.NewLocal()
	}
	return Usecases{deps: deps, flight: &singleflight.Group{}}
}

func lockKey(assetID uuid.UUID) string {
	return "transcribe:" + assetID.String()
}
