package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/meetingscribe-backend/internal/http/response"
	"github.com/yungbote/meetingscribe-backend/internal/platform/ctxutil"
)

// requestUser returns the authenticated caller, writing a 401 when there is none.
func requestUser(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// uuidParam parses a path parameter, writing a 400 with code when it is not a UUID.
func uuidParam(c *gin.Context, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, code, errors.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}
