package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/meetingscribe-backend/internal/data/db"
	server "github.com/yungbote/meetingscribe-backend/internal/http"
	"github.com/yungbote/meetingscribe-backend/internal/observability"
	"github.com/yungbote/meetingscribe-backend/internal/platform/envutil"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Repos    Repos
	Services Services
	Clients  Clients
	Server   *server.Server

	shutdownOtel func(context.Context) error
	jobs         sync.WaitGroup
	cancel       context.CancelFunc
}

// Bootstrap brings up logging, config, tracing and the database. It is enough for the maintenance commands.
func Bootstrap(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	a := &App{Log: log, Cfg: cfg}
	a.shutdownOtel = observability.InitOTel(ctx, log, cfg.Otel)

	dbs, err := db.Open(log, cfg.DB)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = dbs
	if err := db.AutoMigrateAll(dbs.DB()); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	a.Repos = wireRepos(dbs.DB(), log)
	a.Services.Quota = wireQuota(dbs.DB(), log, cfg, a.Repos)
	return a, nil
}

// WireStorage adds the object store and the intake module.
func (a *App) WireStorage(ctx context.Context) error {
	in, err := wireStorage(ctx, a.DB.DB(), a.Log, a.Cfg, a.Repos, a.Services.Quota, &a.Clients)
	if err != nil {
		return err
	}
	a.Services.Intake = in
	return nil
}

// WireServing adds everything the HTTP API and the Temporal worker need.
func (a *App) WireServing(ctx context.Context) error {
	if err := wireServices(ctx, a.DB.DB(), a.Log, a.Cfg, a.Repos, &a.Services, &a.Clients); err != nil {
		return err
	}
	a.Server = wireServer(a.Log, a.Cfg, &a.Services)
	return nil
}

func New(ctx context.Context) (*App, error) {
	a, err := Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.WireStorage(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.WireServing(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Start launches the periodic jobs. Run calls it; it is idempotent.
func (a *App) Start(ctx context.Context) context.Context {
	if a == nil || a.cancel != nil {
		return ctx
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	startPeriodicJobs(ctx, &a.jobs, a.Log, a.Clients.Locker, a.periodicJobs())
	return ctx
}

// Run serves HTTP and, when Temporal is configured, the ProcessMeeting worker until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	ctx = a.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + a.Cfg.Port
		a.Log.Info("Listening", "addr", addr)
		return a.Server.Run(gctx, addr, a.Cfg.ShutdownTimeout)
	})
	if a.Services.Worker != nil {
		g.Go(func() error {
			err := a.Services.Worker.Start(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.jobs.Wait()
	a.Clients.Close()
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Database close failed", "error", err)
		}
	}
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("OpenTelemetry shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
