package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type TranscriptionService interface {
	Create(ctx context.Context, userID, assetID uuid.UUID) (*types.Transcript, error)
	Get(ctx context.Context, userID, assetID uuid.UUID) (*types.Transcript, error)
}

type TranscriptionHandler struct {
	log         *logger.Logger
	transcripts TranscriptionService
}

func NewTranscriptionHandler(log *logger.Logger, transcripts TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{log: log.With("handler", "TranscriptionHandler"), transcripts: transcripts}
}

// POST /api/transcriptions/:asset_id/
func (h *TranscriptionHandler) Create(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id", "invalid_audio_file_id")
	if !ok {
		return
	}
	t, err := h.transcripts.Create(c.Request.Context(), userID, assetID)
	if err != nil {
		response.RespondAPIError(c, err, "transcription_failed")
		return
	}
	response.RespondCreated(c, gin.H{"message": "Transcription created successfully", "data": t})
}

// GET /api/transcriptions/:asset_id/
func (h *TranscriptionHandler) Get(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id", "invalid_audio_file_id")
	if !ok {
		return
	}
	t, err := h.transcripts.Get(c.Request.Context(), userID, assetID)
	if err != nil {
		response.RespondAPIError(c, err, "load_transcript_failed")
		return
	}
	if t == nil {
		response.RespondOK(c, gin.H{"message": "Transcription not found"})
		return
	}
	response.RespondOK(c, gin.H{"data": t})
}
