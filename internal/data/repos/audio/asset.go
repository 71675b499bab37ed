package audio

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type AudioAssetRepo interface {
	Create(dbc dbctx.Context, a *types.AudioAsset) error
	// GetByIDForUser is ownership-scoped: another user's asset reads as missing.
	GetByIDForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.AudioAsset, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.AudioAsset, error)
	DeleteForUser(dbc dbctx.Context, userID, id uuid.UUID) (bool, error)
	// ExistingStorageKeys returns the subset of keys that still have a row.
	ExistingStorageKeys(dbc dbctx.Context, keys []string) (map[string]bool, error)
}

type audioAssetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAudioAssetRepo(db *gorm.DB, baseLog *logger.Logger) AudioAssetRepo {
	return &audioAssetRepo{db: db, log: baseLog.With("repo", "AudioAssetRepo")}
}

func (r *audioAssetRepo) Create(dbc dbctx.Context, a *types.AudioAsset) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Create(a).Error
}

func (r *audioAssetRepo) GetByIDForUser(dbc dbctx.Context, userID, id uuid.UUID) (*types.AudioAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}
	var a types.AudioAsset
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&a).Error; err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

func (r *audioAssetRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.AudioAsset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.AudioAsset{}
	if userID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *audioAssetRepo) DeleteForUser(dbc dbctx.Context, userID, id uuid.UUID) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.AudioAsset{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *audioAssetRepo) ExistingStorageKeys(dbc dbctx.Context, keys []string) (map[string]bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := make(map[string]bool, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	const batch = 500
	for start := 0; start < len(keys); start += batch {
		end := start + batch
		if end > len(keys) {
			end = len(keys)
		}
		var found []string
		if err := transaction.WithContext(dbc.Ctx).
			Model(&types.AudioAsset{}).
			Where("storage_key IN ?", keys[start:end]).
			Pluck("storage_key", &found).Error; err != nil {
			return nil, err
		}
		for _, k := range found {
			out[k] = true
		}
	}
	return out, nil
}
