package intake

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
)

func (u Usecases) GetByID(ctx context.Context, userID, assetID uuid.UUID) (*types.AudioAsset, error) {
	a, err := u.deps.Assets.GetByIDForUser(dbctx.Of(ctx), userID, assetID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_asset_failed", err)
	}
	if a == nil {
		return nil, apierr.NotFound(fmt.Errorf("audio file not found"))
	}
	return a, nil
}

// GetURL returns a short-lived download URL that saves under the original file name.
func (u Usecases) GetURL(ctx context.Context, userID, assetID uuid.UUID) (string, error) {
	a, err := u.GetByID(ctx, userID, assetID)
	if err != nil {
		return "", err
	}
	url, err := u.deps.Store.SignedURL(ctx, a.StorageKey, SignedURLTTL, contentDisposition(a.Name))
	if err != nil {
		return "", apierr.New(http.StatusInternalServerError, "sign_url_failed", err)
	}
	return url, nil
}

func (u Usecases) List(ctx context.Context, userID uuid.UUID) ([]*types.AudioAsset, error) {
	out, err := u.deps.Assets.ListByUser(dbctx.Of(ctx), userID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "list_failed", err)
	}
	return out, nil
}

// Delete removes the record (cascading transcript and summary) and then the blob.
// Consumed quota is not refunded.
func (u Usecases) Delete(ctx context.Context, userID, assetID uuid.UUID) error {
	a, err := u.GetByID(ctx, userID, assetID)
	if err != nil {
		return err
	}
	ok, err := u.deps.Assets.DeleteForUser(dbctx.Of(ctx), userID, assetID)
	if err != nil {
		return apierr.New(http.StatusInternalServerError, "delete_asset_failed", err)
	}
	if !ok {
		return apierr.NotFound(fmt.Errorf("audio file not found"))
	}
	if err := u.deps.Store.Delete(ctx, a.StorageKey); err != nil && u.deps.Log != nil {
		u.deps.Log.Warn("blob delete failed after record removal; orphan sweep will retry",
			"asset_id", assetID, "storage_key", a.StorageKey, "error", err)
	}
	return nil
}

func contentDisposition(name string) string {
	clean := strings.Map(func(r rune) rune {
		if r == '"' || r == '\\' || r < 0x20 {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("attachment; filename=%q", clean)
}
