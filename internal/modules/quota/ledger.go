package quota

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/meetingscribe-backend/internal/data/db"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

func (u Usecases) Get(dbc dbctx.Context, userID uuid.UUID) (*types.Quota, error) {
	q, err := u.deps.Quotas.GetByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_quota_failed", err)
	}
	return q, nil
}

// Create provisions a ledger row for an existing user. maxMinutes <= 0 uses the default.
func (u Usecases) Create(dbc dbctx.Context, userID uuid.UUID, maxMinutes int) (*types.Quota, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidInput(fmt.Errorf("user id required"))
	}
	if maxMinutes <= 0 {
		maxMinutes = u.deps.DefaultMaxMinutes
	}
	if maxMinutes <= 0 {
		maxMinutes = types.DefaultMaxMinutes
	}

	usr, err := u.deps.Users.GetByID(dbc, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_user_failed", err)
	}
	if usr == nil {
		return nil, apierr.InvalidInput(fmt.Errorf("user %s does not exist", userID))
	}

	existing, err := u.deps.Quotas.GetByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_quota_failed", err)
	}
	if existing != nil {
		return nil, apierr.AlreadyExists(fmt.Errorf("quota already exists for user %s", userID))
	}

	q := &types.Quota{
		UserID:      userID,
		MaxMinutes:  maxMinutes,
		UsedMinutes: 0,
		ResetDate:   u.today(),
	}
	if err := u.deps.Quotas.Create(dbc, q); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apierr.AlreadyExists(fmt.Errorf("quota already exists for user %s", userID))
		}
		return nil, apierr.New(http.StatusInternalServerError, "create_quota_failed", err)
	}
	return q, nil
}

// Update adds deltaMinutes (negative to refund) in one conditional write.
// A result outside [0, max] fails with QuotaExceeded and leaves the row unchanged.
func (u Usecases) Update(dbc dbctx.Context, userID uuid.UUID, deltaMinutes float64) (*types.Quota, error) {
	if userID == uuid.Nil {
		return nil, apierr.InvalidInput(fmt.Errorf("user id required"))
	}
	ok, err := u.deps.Quotas.AddUsage(dbc, userID, deltaMinutes)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "update_quota_failed", err)
	}
	q, err := u.deps.Quotas.GetByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_quota_failed", err)
	}
	if q == nil {
		return nil, apierr.NotFound(fmt.Errorf("quota not found"))
	}
	if !ok {
		return nil, apierr.QuotaExceeded(fmt.Errorf(
			"quota exceeded: requested %.2f minutes, %.2f of %d remaining",
			deltaMinutes, Remaining(q), q.MaxMinutes,
		))
	}
	return q, nil
}

func (u Usecases) Reset(dbc dbctx.Context, userID uuid.UUID) (*types.Quota, error) {
	ok, err := u.deps.Quotas.Reset(dbc, userID, u.today())
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "reset_quota_failed", err)
	}
	if !ok {
		return nil, apierr.NotFound(fmt.Errorf("quota not found"))
	}
	return u.deps.Quotas.GetByUserID(dbc, userID)
}

// ResetDue rolls over every ledger whose reset_date is at least one calendar month before now.
func (u Usecases) ResetDue(ctx context.Context, now time.Time) (int64, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	n, err := u.deps.Quotas.ResetDue(dbctx.Of(ctx), today.AddDate(0, -1, 0), today)
	if err != nil {
		return 0, fmt.Errorf("reset due quotas: %w", err)
	}
	if n > 0 && u.deps.Log != nil {
		u.deps.Log.Info("quota rollover", "reset_count", n)
	}
	return n, nil
}

// Remaining is the unused allowance in minutes.
func Remaining(q *types.Quota) float64 {
	return q.Remaining()
}
