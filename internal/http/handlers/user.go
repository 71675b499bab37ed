package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/meetingscribe-backend/internal/domain"
	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/modules/users"
	"github.com/yungbote/meetingscribe-backend/internal/platform/apierr"
	"github.com/yungbote/meetingscribe-backend/internal/platform/dbctx"
	"github.com/yungbote/meetingscribe-backend/internal/platform/logger"
)

type UserService interface {
	Signup(ctx context.Context, in users.SignupInput) (*types.User, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (*users.Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*users.Tokens, error)
}

type QuotaReader interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.Quota, error)
}

type UserHandler struct {
	log   *logger.Logger
	users UserService
	quota QuotaReader
}

func NewUserHandler(log *logger.Logger, users UserService, quota QuotaReader) *UserHandler {
	return &UserHandler{log: log.With("handler", "UserHandler"), users: users, quota: quota}
}

// POST /api/users/signup/
func (h *UserHandler) Signup(c *gin.Context) {
	var req users.SignupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	u, err := h.users.Signup(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err, "signup_failed")
		return
	}
	response.RespondCreated(c, gin.H{"message": "User created successfully", "data": u})
}

// POST /api/users/login/
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	tok, err := h.users.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		response.RespondAPIError(c, err, "login_failed")
		return
	}
	response.RespondOK(c, tok)
}

// POST /api/users/token/refresh/
func (h *UserHandler) Refresh(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidInput, err)
		return
	}
	tok, err := h.users.Refresh(c.Request.Context(), req.Refresh)
	if err != nil {
		response.RespondAPIError(c, err, "refresh_failed")
		return
	}
	response.RespondOK(c, tok)
}

// GET /api/users/me/quota/
func (h *UserHandler) GetQuota(c *gin.Context) {
	userID, ok := requestUser(c)
	if !ok {
		return
	}
	q, err := h.quota.Get(dbctx.Of(c.Request.Context()), userID)
	if err != nil {
		response.RespondAPIError(c, err, "load_quota_failed")
		return
	}
	if q == nil {
		response.RespondError(c, http.StatusNotFound, apierr.CodeNotFound, errors.New("quota not found"))
		return
	}
	response.RespondOK(c, gin.H{"data": q})
}
