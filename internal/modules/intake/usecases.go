package intake

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

const (
	DefaultMaxUploadBytes = 50 << 20
	StoragePrefix         = "meetingscribe/"
	SignedURLTTL          = 15 * time.Minute
)

var allowedExtensions = map[string]bool{
	"mp3":  true,
	"wav":  true,
	"ogg":  true,
	"flac": true,
	"m4a":  true,
}

// DurationProber reads media duration from the file itself.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
}

type QuotaLedger interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.Quota, error)
	Update(dbc dbctx.Context, userID uuid.UUID, deltaMinutes float64) (*types.Quota, error)
}

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Assets repos.AudioAssetRepo
	Quota  QuotaLedger
	Store  gcp.BucketService
	Prober DurationProber

	MaxUploadBytes int64
	// SpoolDir holds upload temp files; empty means os.TempDir.
	SpoolDir string
	// SweepConcurrency bounds parallel blob deletes in SweepOrphans.
	SweepConcurrency int
	Now              func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log != nil {
		deps.Log = deps.Log.With("service", "AudioIntake")
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if deps.SweepConcurrency <= 0 {
		deps.SweepConcurrency = 8
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps}
}

func StorageKey(id uuid.UUID, ext string) string {
	return StoragePrefix + id.String() + "." + ext
}
