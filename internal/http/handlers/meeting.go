package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type MeetingProcessor interface {
	Process(ctx context.Context, userID, assetID uuid.UUID) (workflowID string, runID string, err error)
}

type MeetingHandler struct {
	log       *logger.Logger
	processor MeetingProcessor
}

func NewMeetingHandler(log *logger.Logger, processor MeetingProcessor) *MeetingHandler {
	return &MeetingHandler{log: log.With("handler", "MeetingHandler"), processor: processor}
}

// POST /api/meetings/:asset_id/process/
func (h *MeetingHandler) Process(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id", "invalid_audio_file_id")
	if !ok {
		return
	}
	workflowID, runID, err := h.processor.Process(c.Request.Context(), userID, assetID)
	if err != nil {
		response.RespondAPIError(c, err, "process_failed")
		return
	}
	h.log.Info("meeting processing started", "asset_id", assetID, "workflow_id", workflowID)
	c.JSON(http.StatusAccepted, gin.H{"workflow_id": workflowID, "run_id": runID})
}
