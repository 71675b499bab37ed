package intake

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

type SweepReport struct {
	Scanned int `json:"scanned"`
	Orphans int `json:"orphans"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// SweepOrphans deletes blobs under the storage prefix that are older than grace and have no asset row.
// The grace window covers uploads whose transaction has not committed yet.
func (u Usecases) SweepOrphans(ctx context.Context, grace time.Duration) (SweepReport, error) {
	var rep SweepReport
	objs, err := u.deps.Store.ListObjects(ctx, StoragePrefix)
	if err != nil {
		return rep, fmt.Errorf("list blobs: %w", err)
	}
	rep.Scanned = len(objs)

	cutoff := u.deps.Now().Add(-grace)
	keys := make([]string, 0, len(objs))
	for _, o := range objs {
		if o.Updated.IsZero() || o.Updated.Before(cutoff) {
			keys = append(keys, o.Key)
		}
	}
	if len(keys) == 0 {
		return rep, nil
	}

	known, err := u.deps.Assets.ExistingStorageKeys(dbctx.Of(ctx), keys)
	if err != nil {
		return rep, fmt.Errorf("match blobs to assets: %w", err)
	}

	var deleted, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.deps.SweepConcurrency)
	for _, key := range keys {
		if known[key] {
			continue
		}
		rep.Orphans++
		key := key
		g.Go(func() error {
			if err := u.deps.Store.Delete(gctx, key); err != nil {
				atomic.AddInt64(&failed, 1)
				if u.deps.Log != nil {
					u.deps.Log.Warn("orphan delete failed", "storage_key", key, "error", err)
				}
				return nil
			}
			atomic.AddInt64(&deleted, 1)
			return nil
		})
	}
	_ = g.Wait()
	rep.Deleted = int(deleted)
	rep.Failed = int(failed)

	if u.deps.Log != nil && rep.Orphans > 0 {
		u.deps.Log.Info("orphan sweep finished", "scanned", rep.Scanned, "orphans", rep.Orphans, "deleted", rep.Deleted, "failed", rep.Failed)
	}
	return rep, nil
}
