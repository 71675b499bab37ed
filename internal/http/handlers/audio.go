package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/modules/intake"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type AudioService interface {
	Upload(ctx context.Context, in intake.UploadInput) (*types.AudioAsset, error)
	GetURL(ctx context.Context, userID, assetID uuid.UUID) (string, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.AudioAsset, error)
	Delete(ctx context.Context, userID, assetID uuid.UUID) error
}

type AudioHandler struct {
	log   *logger.Logger
	audio AudioService
}

func NewAudioHandler(log *logger.Logger, audio AudioService) *AudioHandler {
	return &AudioHandler{log: log.With("handler", "AudioHandler"), audio: audio}
}

// Upload fields, in lookup order.
var audioFileFields = []string{"audio_file", "file"}

// POST /api/audio-files/ (multipart field "audio_file", or "file")
func (h *AudioHandler) Upload(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	var fh *multipart.FileHeader
	var err error
	for _, field := range audioFileFields {
		if fh, err = c.FormFile(field); err == nil {
			break
		}
	}
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, errors.New("multipart field \"audio_file\" is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	defer f.Close()

	asset, err := h.audio.Upload(c.Request.Context(), intake.UploadInput{
		UserID:       userID,
		File:         f,
		FileName:     fh.Filename,
		DeclaredSize: fh.Size,
	})
	if err != nil {
		response.RespondAPIError(c, err, "upload_failed")
		return
	}
	response.RespondCreated(c, gin.H{"message": "File uploaded successfully", "data": asset})
}

// GET /api/audio-files/:id/
func (h *AudioHandler) GetURL(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "id", "invalid_audio_file_id")
	if !ok {
		return
	}
	url, err := h.audio.GetURL(c.Request.Context(), userID, assetID)
	if err != nil {
		response.RespondAPIError(c, err, "sign_url_failed")
		return
	}
	response.RespondOK(c, gin.H{"audio_file_url": url})
}

// GET /api/audio-files/
func (h *AudioHandler) List(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assets, err := h.audio.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err, "list_failed")
		return
	}
	response.RespondOK(c, gin.H{"data": assets})
}

// DELETE /api/audio-files/:id/
func (h *AudioHandler) Delete(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	assetID, ok := uuidParam(c, "id", "invalid_audio_file_id")
	if !ok {
		return
	}
	if err := h.audio.Delete(c.Request.Context(), userID, assetID); err != nil {
		response.RespondAPIError(c, err, "delete_failed")
		return
	}
	c.Status(http.StatusNoContent)
}
