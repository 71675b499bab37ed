package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/data/repos"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
)

// QuotaProvisioner creates the ledger row for a new user inside the signup transaction.
type QuotaProvisioner interface {
	Create(dbc dbctx.Context, userID uuid.UUID, maxMinutes int) (*types.Quota, error)
}

type TokenTTLs struct {
	Access  time.Duration
	Refresh time.Duration
}

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Users repos.UserRepo
	Quota QuotaProvisioner

	JWTSecret string
	// DefaultMaxMinutes is passed to the quota ledger on signup; <= 0 lets the ledger decide.
	DefaultMaxMinutes int

	Standard   TokenTTLs
	RememberMe TokenTTLs

	Now func() time.Time
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Log != nil {
		deps.Log = deps.Log.With("service", "UserDirectory")
	}
	if deps.Standard.Access <= 0 {
		deps.Standard.Access = 8 * time.Hour
	}
	if deps.Standard.Refresh <= 0 {
		deps.Standard.Refresh = 10 * 24 * time.Hour
	}
	if deps.RememberMe.Access <= 0 {
		deps.RememberMe.Access = 30 * 24 * time.Hour
	}
	if deps.RememberMe.Refresh <= 0 {
		deps.RememberMe.Refresh = 60 * 24 * time.Hour
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return Usecases{deps: deps}
}

func (u Usecases) ttls(rememberMe bool) TokenTTLs {
	if rememberMe {
		return u.deps.RememberMe
	}
	return u.deps.Standard
}
