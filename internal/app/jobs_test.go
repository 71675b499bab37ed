package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

func TestRunPeriodicJob_LeaseSkipsSecondReplica(t *testing.T) {
	locker := lock.NewLocal()
	var calls int32
	job := periodicJob{name: "rollover", interval: time.Hour, run: func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}}

	if !runPeriodicJob(context.Background(), logger.Nop(), locker, job) {
		t.Fatalf("first tick should run")
	}
	if runPeriodicJob(context.Background(), logger.Nop(), locker, job) {
		t.Fatalf("second tick within the lease should be skipped")
	}
	if calls != 1 {
		t.Fatalf("expected 1 run, got %d", calls)
	}
}

func TestRunPeriodicJob_ErrorStillCountsAsRun(t *testing.T) {
	job := periodicJob{name: "sweep", interval: time.Hour, run: func(context.Context) error {
		return errors.New("boom")
	}}
	if !runPeriodicJob(context.Background(), logger.Nop(), nil, job) {
		t.Fatalf("job without locker should run")
	}
}

func TestStartPeriodicJobs_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	ran := make(chan struct{}, 8)

	startPeriodicJobs(ctx, &wg, logger.Nop(), nil, []periodicJob{
		{name: "fast", interval: 10 * time.Millisecond, run: func(context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		}},
		{name: "disabled", interval: 0, run: func(context.Context) error {
			t.Errorf("disabled job ran")
			return nil
		}},
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("job never ticked")
	}
	cancel()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("jobs did not stop after cancel")
	}
}

func TestLeaseTTL(t *testing.T) {
	if got := leaseTTL(10 * time.Second); got != time.Minute {
		t.Fatalf("short interval: got %s", got)
	}
	if got := leaseTTL(6 * time.Hour); got != 3*time.Hour {
		t.Fatalf("long interval: got %s", got)
	}
}
