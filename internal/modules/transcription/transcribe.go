package transcription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/meetingscribe-backend/internal/data/db"
	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/observability"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/gcp"
	"github.com/yungbote/meetingscribe-backend/internal/platform/httpx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/localmedia"
	"github.com/yungbote/meetingscribe-backend/internal/platform/lock"
)

const CodeTranscriptionInProgress = "transcription_in_progress"

// Get returns the asset's transcript, or nil when it has not been transcribed.
func (u Usecases) Get(ctx context.Context, userID, assetID uuid.UUID) (*types.Transcript, error) {
	if _, err := u.deps.Assets.GetByID(ctx, userID, assetID); err != nil {
		return nil, err
	}
	t, err := u.deps.Transcripts.GetByAssetID(dbctx.Of(ctx), assetID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_transcript_failed", err)
	}
	return t, nil
}

// Create transcribes the asset once. Repeated calls return the stored transcript.
func (u Usecases) Create(ctx context.Context, userID, assetID uuid.UUID) (out *types.Transcript, err error) {
	ctx, span := observability.StartSpan(ctx, "transcription.Create", attribute.String("asset_id", assetID.String()))
	defer func() { observability.EndSpan(span, err) }()

	asset, err := u.deps.Assets.GetByID(ctx, userID, assetID)
	if err != nil {
		return nil, err
	}
	if existing, err := u.deps.Transcripts.GetByAssetID(dbctx.Of(ctx), asset.ID); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_transcript_failed", err)
	} else if existing != nil {
		return existing, nil
	}

	v, err, shared := u.flight.Do(asset.ID.String(), func() (interface{}, error) {
		return u.transcribe(ctx, userID, asset)
	})
	if err != nil {
		return nil, err
	}
	if shared && u.deps.Log != nil {
		u.deps.Log.Debug("joined in-flight transcription", "asset_id", asset.ID)
	}
	return v.(*types.Transcript), nil
}

func (u Usecases) transcribe(ctx context.Context, userID uuid.UUID, asset *types.AudioAsset) (*types.Transcript, error) {
	release, err := u.deps.Locker.TryAcquire(ctx, lockKey(asset.ID), u.deps.Timeout+transcribeLockSlack)
	if errors.Is(err, lock.ErrNotAcquired) {
		return nil, apierr.New(http.StatusConflict, CodeTranscriptionInProgress, fmt.Errorf("transcription already in progress"))
	}
	if err != nil {
		return nil, apierr.NetworkError(fmt.Errorf("acquire transcription lock: %w", err))
	}
	defer release()

	// Another process may have finished between our first check and the lock.
	if existing, err := u.deps.Transcripts.GetByAssetID(dbctx.Of(ctx), asset.ID); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "load_transcript_failed", err)
	} else if existing != nil {
		return existing, nil
	}

	text, err := u.recognize(ctx, userID, asset)
	if err != nil {
		return nil, err
	}

	t := &types.Transcript{
		AudioAssetID: asset.ID,
		Text:         text,
		Language:     u.deps.LanguageCode,
	}
	if err := u.deps.Transcripts.Create(dbctx.Of(ctx), t); err != nil {
		if db.IsUniqueViolation(err) {
			winner, rerr := u.deps.Transcripts.GetByAssetID(dbctx.Of(ctx), asset.ID)
			if rerr == nil && winner != nil {
				return winner, nil
			}
		}
		return nil, apierr.New(http.StatusInternalServerError, "save_transcript_failed", err)
	}
	if u.deps.Log != nil {
		u.deps.Log.Info("transcript created", "asset_id", asset.ID, "transcript_id", t.ID, "chars", len(text))
	}
	return t, nil
}

// recognize fetches the blob, normalizes it and runs speech-to-text. Temp files never outlive the call.
func (u Usecases) recognize(ctx context.Context, userID uuid.UUID, asset *types.AudioAsset) (string, error) {
	url, err := u.deps.Assets.GetURL(ctx, userID, asset.ID)
	if err != nil {
		return "", err
	}

	dir, cleanup, err := u.deps.Media.WorkDir(ctx, "transcribe")
	if err != nil {
		return "", apierr.New(http.StatusInternalServerError, "workdir_failed", err)
	}
	defer cleanup()

	src := filepath.Join(dir, "source."+asset.Extension)
	if _, err := httpx.DownloadToFile(ctx, u.deps.HTTP, url, src, 0); err != nil {
		return "", apierr.NetworkError(fmt.Errorf("download audio: %w", err))
	}

	flac, err := u.deps.Media.ConvertForRecognition(ctx, src, filepath.Join(dir, "recognition.flac"))
	if err != nil {
		return "", apierr.TranscriptionFailed(fmt.Errorf("prepare audio: %w", err))
	}

	rctx, cancel := context.WithTimeout(ctx, u.deps.Timeout)
	defer cancel()
	text, err := u.deps.Recognizer.Recognize(rctx, flac, gcp.RecognizeOptions{
		LanguageCode:    u.deps.LanguageCode,
		SampleRateHertz: localmedia.RecognitionSampleRateHz,
		Channels:        localmedia.RecognitionChannels,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(rctx.Err(), context.DeadlineExceeded) {
			return "", apierr.TranscriptionTimeout(fmt.Errorf("speech recognition exceeded %s", u.deps.Timeout))
		}
		return "", apierr.NetworkError(fmt.Errorf("speech recognition: %w", err))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apierr.TranscriptionFailed(fmt.Errorf("no speech recognized"))
	}
	return text, nil
}
