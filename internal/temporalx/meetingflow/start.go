package meetingflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	temporalsdkclient "go.temporal.io/sdk/client"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
)

const CodeAsyncDisabled = "async_processing_disabled"

// ErrDisabled is returned when no Temporal client is configured.
var ErrDisabled = apierr.New(http.StatusServiceUnavailable, CodeAsyncDisabled, errors.New("asynchronous processing is not enabled"))

type AssetOwner interface {
	GetByID(ctx context.Context, userID, assetID uuid.UUID) (*types.AudioAsset, error)
}

type Starter struct {
	Client    temporalsdkclient.Client
	TaskQueue string
	Assets    AssetOwner
}

// Process starts (or joins) the ProcessMeeting workflow for an owned asset.
func (s *Starter) Process(ctx context.Context, userID, assetID uuid.UUID) (workflowID string, runID string, err error) {
	if s == nil || s.Client == nil {
		return "", "", ErrDisabled
	}
	if _, err := s.Assets.GetByID(ctx, userID, assetID); err != nil {
		return "", "", err
	}
	run, err := s.Client.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                       WorkflowID(assetID),
		TaskQueue:                s.TaskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_USE_EXISTING,
	}, WorkflowName, Input{UserID: userID, AssetID: assetID})
	if err != nil {
		return "", "", apierr.NetworkError(fmt.Errorf("start workflow: %w", err))
	}
	return run.GetID(), run.GetRunID(), nil
}
