package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type QuotaRepo interface {
	Create(dbc dbctx.Context, q *types.Quota) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Quota, error)
	// AddUsage applies delta only when the result stays within [0, max_minutes] up to
	// types.UsageToleranceMinutes. The stored value is clamped to those bounds.
	// It reports false when no row matched, leaving the ledger untouched.
	AddUsage(dbc dbctx.Context, userID uuid.UUID, deltaMinutes float64) (bool, error)
	Reset(dbc dbctx.Context, userID uuid.UUID, resetDate time.Time) (bool, error)
	// ResetDue zeroes every quota whose reset_date is on or before cutoff.
	ResetDue(dbc dbctx.Context, cutoff time.Time, resetDate time.Time) (int64, error)
}

type quotaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuotaRepo(db *gorm.DB, baseLog *logger.Logger) QuotaRepo {
	return &quotaRepo{db: db, log: baseLog.With("repo", "QuotaRepo")}
}

func (r *quotaRepo) Create(dbc dbctx.Context, q *types.Quota) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(q).Error
}

func (r *quotaRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.Quota, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var q types.Quota
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&q).Error; err != nil {
		return nil, err
	}
	if q.ID == uuid.Nil {
		return nil, nil
	}
	return &q, nil
}

func (r *quotaRepo) AddUsage(dbc dbctx.Context, userID uuid.UUID, deltaMinutes float64) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	tol := types.UsageToleranceMinutes
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Quota{}).
		Where("user_id = ? AND used_minutes + ? <= max_minutes + ? AND used_minutes + ? >= ?",
			userID, deltaMinutes, tol, deltaMinutes, -tol).
		Updates(map[string]interface{}{
			"used_minutes": gorm.Expr(
				"CASE WHEN used_minutes + ? > max_minutes THEN max_minutes WHEN used_minutes + ? < 0 THEN 0 ELSE used_minutes + ? END",
				deltaMinutes, deltaMinutes, deltaMinutes,
			),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *quotaRepo) Reset(dbc dbctx.Context, userID uuid.UUID, resetDate time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Quota{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"used_minutes": 0,
			"reset_date":   resetDate,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *quotaRepo) ResetDue(dbc dbctx.Context, cutoff time.Time, resetDate time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Quota{}).
		Where("reset_date <= ?", cutoff).
		Updates(map[string]interface{}{
			"used_minutes": 0,
			"reset_date":   resetDate,
			"updated_at":   time.Now(),
		})
	return res.RowsAffected, res.Error
}
