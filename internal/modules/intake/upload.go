package intake

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/observability"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
)

type UploadInput struct {
	UserID   uuid.UUID
	File     io.Reader
	FileName string
	// DeclaredSize is the client-reported size; <= 0 means unknown.
	DeclaredSize int64
}

// Upload validates, stores and records an audio file, charging its duration to the user's quota.
// Nothing is committed unless every step succeeds.
func (u Usecases) Upload(ctx context.Context, in UploadInput) (out *types.AudioAsset, err error) {
	ctx, span := observability.StartSpan(ctx, "intake.Upload", attribute.String("user_id", in.UserID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if in.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "unauthorized", nil)
	}
	name := filepath.Base(strings.TrimSpace(in.FileName))
	if in.File == nil || name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apierr.InvalidInput(fmt.Errorf("no file provided"))
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !allowedExtensions[ext] {
		return nil, apierr.UnsupportedFormat(fmt.Errorf("unsupported file format %q", ext))
	}

	max := u.deps.MaxUploadBytes
	if in.DeclaredSize > max {
		return nil, apierr.SizeLimitExceeded(fmt.Errorf("file size %d exceeds limit of %d bytes", in.DeclaredSize, max))
	}

	spoolPath, size, err := u.spool(in.File, ext, max)
	if spoolPath != "" {
		defer os.Remove(spoolPath)
	}
	if err != nil {
		return nil, err
	}

	duration, err := u.deps.Prober.ProbeDuration(ctx, spoolPath)
	if err != nil {
		return nil, apierr.InvalidInput(fmt.Errorf("could not read audio duration: %w", err))
	}

	q, err := u.deps.Quota.Get(dbctx.Of(ctx), in.UserID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, apierr.NotFound(fmt.Errorf("quota not found"))
	}
	if !q.Allows(duration / 60) {
		return nil, apierr.QuotaExceeded(fmt.Errorf(
			"audio is %.0f seconds but only %.0f seconds remain this period", duration, q.Remaining()*60,
		))
	}

	id := uuid.New()
	key := StorageKey(id, ext)
	contentType := gcp.ContentTypeForKey(key)
	f, err := os.Open(spoolPath)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "spool_read_failed", err)
	}
	_, putErr := u.deps.Store.Put(ctx, key, f, contentType)
	_ = f.Close()
	if putErr != nil {
		return nil, apierr.UploadFailed(fmt.Errorf("store audio: %w", putErr))
	}

	asset := &types.AudioAsset{
		ID:              id,
		UserID:          in.UserID,
		Name:            name,
		SizeBytes:       size,
		Extension:       ext,
		DurationSeconds: duration,
		StorageKey:      key,
		ContentType:     contentType,
	}
	txErr := u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := u.deps.Assets.Create(dbc, asset); err != nil {
			return apierr.New(http.StatusInternalServerError, "create_asset_failed", err)
		}
		_, err := u.deps.Quota.Update(dbc, in.UserID, asset.DurationMinutes())
		return err
	})
	if txErr != nil {
		u.compensate(key, txErr)
		return nil, txErr
	}

	if u.deps.Log != nil {
		u.deps.Log.Info("audio uploaded",
			"asset_id", asset.ID,
			"user_id", in.UserID,
			"size_bytes", size,
			"duration_seconds", duration,
		)
	}
	return asset, nil
}

// spool copies at most max+1 bytes to a temp file so the real size is known.
func (u Usecases) spool(r io.Reader, ext string, max int64) (string, int64, error) {
	f, err := os.CreateTemp(u.deps.SpoolDir, "upload-*."+ext)
	if err != nil {
		return "", 0, apierr.New(http.StatusInternalServerError, "spool_failed", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, max+1))
	if err != nil {
		return f.Name(), 0, apierr.InvalidInput(fmt.Errorf("read upload: %w", err))
	}
	if n > max {
		return f.Name(), n, apierr.SizeLimitExceeded(fmt.Errorf("file exceeds limit of %d bytes", max))
	}
	if n == 0 {
		return f.Name(), 0, apierr.InvalidInput(fmt.Errorf("empty file"))
	}
	return f.Name(), n, nil
}

// compensate removes a blob whose DB record never committed. Failures are left to the orphan sweep.
func (u Usecases) compensate(key string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := u.deps.Store.Delete(ctx, key); err != nil && u.deps.Log != nil {
		u.deps.Log.Error("compensating blob delete failed", "storage_key", key, "cause", cause, "error", err)
		return
	}
	if u.deps.Log != nil {
		u.deps.Log.Warn("upload rolled back", "storage_key", key, "cause", cause)
	}
}
