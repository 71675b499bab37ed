package meetingflow

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/modules/summarizer"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type Transcriber interface {
	Create(ctx context.Context, userID, assetID uuid.UUID) (*types.Transcript, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, userID, assetID uuid.UUID) (*summarizer.SummaryResult, error)
}

type Activities struct {
	Log         *logger.Logger
	Transcriber Transcriber
	Summarizer  Summarizer
}

func (a *Activities) Transcribe(ctx context.Context, in Input) (TranscribeResult, error) {
	if a == nil || a.Transcriber == nil {
		return TranscribeResult{}, errors.New("meetingflow: transcriber not configured")
	}
	t, err := a.Transcriber.Create(ctx, in.UserID, in.AssetID)
	if err != nil {
		return TranscribeResult{}, applicationError(err)
	}
	return TranscribeResult{TranscriptID: t.ID, Chars: len(t.Text)}, nil
}

func (a *Activities) Summarize(ctx context.Context, in Input) (SummarizeResult, error) {
	if a == nil || a.Summarizer == nil {
		return SummarizeResult{}, errors.New("meetingflow: summarizer not configured")
	}
	s, err := a.Summarizer.Summarize(ctx, in.UserID, in.AssetID)
	if err != nil {
		return SummarizeResult{}, applicationError(err)
	}
	if a.Log != nil {
		a.Log.Info("meeting summarized", "asset_id", in.AssetID, "subject", s.Subject)
	}
	return SummarizeResult{
		Subject:     s.Subject,
		ActionItems: len(s.ActionItems),
		KeyPoints:   len(s.KeyPoints),
	}, nil
}

// applicationError keeps the failure code visible to callers describing the workflow.
func applicationError(err error) error {
	code := apierr.CodeOf(err)
	if code == "" {
		return err
	}
	return temporal.NewNonRetryableApplicationError(err.Error(), code, err)
}
