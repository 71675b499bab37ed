package meetingflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// ActivityTimeout covers download, conversion and the recognizer deadline.
const ActivityTimeout = 10 * time.Minute

func Workflow(ctx workflow.Context, in Input) (Result, error) {
	if in.UserID == uuid.Nil || in.AssetID == uuid.Nil {
		return Result{}, fmt.Errorf("meetingflow: user_id and asset_id are required")
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ActivityTimeout,
		// Each stage runs once; the HTTP paths do not retry either.
		RetryPolicy: &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var tr TranscribeResult
	if err := workflow.ExecuteActivity(ctx, ActivityTranscribe, in).Get(ctx, &tr); err != nil {
		return Result{}, err
	}
	workflow.GetLogger(ctx).Info("transcript ready", "asset_id", in.AssetID.String(), "transcript_id", tr.TranscriptID.String())

	var sr SummarizeResult
	if err := workflow.ExecuteActivity(ctx, ActivitySummarize, in).Get(ctx, &sr); err != nil {
		return Result{}, err
	}

	return Result{
		TranscriptID: tr.TranscriptID,
		Subject:      sr.Subject,
		ActionItems:  sr.ActionItems,
		KeyPoints:    sr.KeyPoints,
	}, nil
}
