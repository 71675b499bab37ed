package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/modules/summarizer"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type SummaryService interface {
	Summarize(ctx context.Context, userID, assetID uuid.UUID) (*summarizer.SummaryResult, error)
	Get(ctx context.Context, userID, assetID uuid.UUID) (*summarizer.SummaryResult, error)
}

type SummarizerHandler struct {
	log       *logger.Logger
	summaries SummaryService
}

func NewSummarizerHandler(log *logger.Logger, summaries SummaryService) *SummarizerHandler {
	return &SummarizerHandler{log: log.With("handler", "SummarizerHandler"), summaries: summaries}
}

// POST /api/summarizer/summarize/:asset_id/
func (h *SummarizerHandler) Summarize(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id", "invalid_audio_file_id")
	if !ok {
		return
	}
	s, err := h.summaries.Summarize(c.Request.Context(), userID, assetID)
	if err != nil {
		response.RespondAPIError(c, err, "summarize_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": s})
}

// GET /api/summarizer/summarize/:asset_id/
func (h *SummarizerHandler) Get(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "asset_id", "invalid_audio_file_id")
	if !ok {
		return
	}
	s, err := h.summaries.Get(c.Request.Context(), userID, assetID)
	if err != nil {
		response.RespondAPIError(c, err, "load_summary_failed")
		return
	}
	if s == nil {
		response.RespondError(c, http.StatusNotFound, apierr.CodeNotFound, errors.New("summary not found"))
		return
	}
	response.RespondOK(c, gin.H{"data": s})
}
