package quota

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Users  repos.UserRepo
	Quotas repos.QuotaRepo

	// DefaultMaxMinutes applies when Create gets a non-positive limit.
	DefaultMaxMinutes int
	// Now is overridable for rollover tests.
	Now func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log != nil {
		deps.Log = deps.Log.With("service", "QuotaLedger")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps}
}

func (u Usecases) today() time.Time {
	return u.deps.Now().UTC().Truncate(24 * time.Hour)
}
