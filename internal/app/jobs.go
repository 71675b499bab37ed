package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

// periodicJob runs on every replica's ticker, but a tick only does work where the lease was won.
type periodicJob struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

func (a *App) periodicJobs() []periodicJob {
	return []periodicJob{
		{
			name:     "quota_reset_due",
			interval: a.Cfg.QuotaResetInterval,
			run: func(ctx context.Context) error {
				n, err := a.Services.Quota.ResetDue(ctx, time.Now())
				if err == nil && n > 0 {
					a.Log.Info("Quota rollover applied", "quotas", n)
				}
				return err
			},
		},
		{
			name:     "sweep_orphans",
			interval: a.Cfg.OrphanSweepInterval,
			run: func(ctx context.Context) error {
				report, err := a.Services.Intake.SweepOrphans(ctx, a.Cfg.OrphanSweepGrace)
				if err == nil {
					a.Log.Info("Orphan sweep finished", "scanned", report.Scanned, "orphans", report.Orphans, "deleted", report.Deleted, "failed", report.Failed)
				}
				return err
			},
		},
	}
}

func startPeriodicJobs(ctx context.Context, wg *sync.WaitGroup, log *logger.Logger, locker lock.Locker, jobs []periodicJob) {
	for _, job := range jobs {
		if job.interval <= 0 || job.run == nil {
			log.Warn("Periodic job disabled", "job", job.name)
			continue
		}
		wg.Add(1)
		go func(job periodicJob) {
			defer wg.Done()
			t := time.NewTicker(job.interval)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					runPeriodicJob(ctx, log, locker, job)
				}
			}
		}(job)
	}
}

// runPeriodicJob reports whether the job ran. The lease is left to expire so other replicas skip this tick.
func runPeriodicJob(ctx context.Context, log *logger.Logger, locker lock.Locker, job periodicJob) bool {
	if locker != nil {
		if _, err := locker.TryAcquire(ctx, "job:"+job.name, leaseTTL(job.interval)); err != nil {
			if !errors.Is(err, lock.ErrNotAcquired) {
				log.Warn("Periodic job lease failed", "job", job.name, "error", err)
			}
			return false
		}
	}
	start := time.Now()
	if err := job.run(ctx); err != nil {
		log.Error("Periodic job failed", "job", job.name, "error", err)
		return true
	}
	log.Debug("Periodic job finished", "job", job.name, "duration", time.Since(start))
	return true
}

func leaseTTL(interval time.Duration) time.Duration {
	ttl := interval / 2
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}
