package app

import (
	"context"
	"fmt"
	"time"

	temporalsdkclient "go.temporal.io/sdk/client"
	"gorm.io/gorm"

	"github.com/yungbote/meetingscribe-backend/internal/modules/intake"
	"github.com/yungbote/meetingscribe-backend/internal/modules/quota"
	"github.com/yungbote/meetingscribe-backend/internal/modules/summarizer"
	"github.com/yungbote/meetingscribe-backend/internal/modules/transcription"
	"github.com/yungbote/meetingscribe-backend/internal/modules/users"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
	"github.com/yungbote/meetingscribe-backend/internal/platform/httpx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/llm"
	"github.com/yungbote/meetingscribe-backend/internal/platform/localmedia"
	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
	"github.com/yungbote/meetingscribe-backend/internal/temporalx"
	"github.com/yungbote/meetingscribe-backend/internal/temporalx/meetingflow"
	"github.com/yungbote/meetingscribe-backend/internal/temporalx/temporalworker"
)

// audioFetchTimeout bounds the download of an asset from its signed URL.
const audioFetchTimeout = 10 * time.Minute

type Services struct {
	Quota         quota.Usecases
	Intake        intake.Usecases
	Transcription transcription.Usecases
	Summarizer    summarizer.Usecases
	Users         users.Usecases

	Meetings *meetingflow.Starter
	Worker   *temporalworker.Runner
}

type Clients struct {
	Store      gcp.BucketService
	Media      localmedia.Tools
	Recognizer gcp.Recognizer
	LLM        llm.Client
	Locker     lock.Locker
	Temporal   temporalsdkclient.Client
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Recognizer != nil {
		_ = c.Recognizer.Close()
	}
	if c.Locker != nil {
		_ = c.Locker.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func wireQuota(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) quota.Usecases {
	return quota.New(quota.UsecasesDeps{
		DB:                db,
		Log:               log,
		Users:             r.Users,
		Quotas:            r.Quotas,
		DefaultMaxMinutes: cfg.QuotaDefaultMaxMinutes,
	})
}

// wireStorage brings up the object store and the ffmpeg tooling, then the intake module on top of them.
func wireStorage(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, r Repos, ledger quota.Usecases, clients *Clients) (intake.Usecases, error) {
	store, err := resolveBucketService(log)
	if err != nil {
		return intake.Usecases{}, err
	}
	clients.Store = store

	media := localmedia.New(log)
	if err := media.AssertReady(ctx); err != nil {
		return intake.Usecases{}, fmt.Errorf("media tools: %w", err)
	}
	clients.Media = media

	return intake.New(intake.UsecasesDeps{
		DB:             db,
		Log:            log,
		Assets:         r.AudioAssets,
		Quota:          ledger,
		Store:          store,
		Prober:         media,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}), nil
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, r Repos, svcs *Services, clients *Clients) error {
	log.Info("Wiring services...")

	recognizer, err := gcp.NewRecognizer(log, clients.Store)
	if err != nil {
		return fmt.Errorf("init speech recognizer: %w", err)
	}
	clients.Recognizer = recognizer

	model, err := llm.New(ctx, log, cfg.LLM)
	if err != nil {
		return fmt.Errorf("init llm client: %w", err)
	}
	clients.LLM = model

	locker, err := lock.New(log, cfg.Redis)
	if err != nil {
		return fmt.Errorf("init locker: %w", err)
	}
	clients.Locker = locker

	svcs.Transcription = transcription.New(transcription.UsecasesDeps{
		DB:           db,
		Log:          log,
		Assets:       svcs.Intake,
		Transcripts:  r.Transcripts,
		Media:        clients.Media,
		Recognizer:   recognizer,
		Locker:       locker,
		HTTP:         httpx.NewClient(audioFetchTimeout),
		LanguageCode: cfg.SpeechLanguage,
		Timeout:      cfg.TranscribeTimeout,
	})

	svcs.Summarizer = summarizer.New(summarizer.UsecasesDeps{
		DB:          db,
		Log:         log,
		Transcripts: svcs.Transcription,
		Summaries:   r.Summaries,
		LLM:         model,
		Mode:        cfg.SummarizerMode,
	})

	svcs.Users = users.New(users.UsecasesDeps{
		DB:                db,
		Log:               log,
		Users:             r.Users,
		Quota:             svcs.Quota,
		JWTSecret:         cfg.JWTSecretKey,
		DefaultMaxMinutes: cfg.QuotaDefaultMaxMinutes,
	})

	tc, err := temporalx.NewClient(log, cfg.Temporal)
	if err != nil {
		return fmt.Errorf("init temporal client: %w", err)
	}
	if tc == nil {
		return nil
	}
	clients.Temporal = tc

	svcs.Meetings = &meetingflow.Starter{
		Client:    tc,
		TaskQueue: cfg.Temporal.TaskQueue,
		Assets:    svcs.Intake,
	}
	runner, err := temporalworker.NewRunner(log, tc, cfg.Temporal, &meetingflow.Activities{
		Log:         log,
		Transcriber: svcs.Transcription,
		Summarizer:  svcs.Summarizer,
	})
	if err != nil {
		return fmt.Errorf("init temporal worker: %w", err)
	}
	svcs.Worker = runner
	return nil
}
