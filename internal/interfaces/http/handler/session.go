package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/craveup/leclerc-storefront/internal/infrastructure/cache"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/dto"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// TokenWriter stores the bearer token forwarded to the storefront API
type TokenWriter interface {
	Set(ctx context.Context, sessionID, token string) error
	Clear(ctx context.Context, sessionID string) error
}

// SessionHandler handles the shopper session endpoints
type SessionHandler struct {
	BaseHandler
	tokens TokenWriter
}

// NewSessionHandler creates a SessionHandler
func NewSessionHandler(tokens TokenWriter) *SessionHandler {
	return &SessionHandler{tokens: tokens}
}

// SetTokenRequest is the body of PUT /session/token
type SetTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SessionResponse describes the current session
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// Get godoc
// @Summary      Get the shopper session
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Router       /session [get]
func (h *SessionHandler) Get(c *gin.Context) {
	h.Success(c, SessionResponse{SessionID: middleware.GetSessionID(c)})
}

// SetToken godoc
// @Summary      Store the auth token
// @Description  The token is forwarded as a bearer token on storefront calls
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Param        request body SetTokenRequest true "Auth token"
// @Success      204
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /session/token [put]
func (h *SessionHandler) SetToken(c *gin.Context) {
	var req SetTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	err := h.tokens.Set(c.Request.Context(), middleware.GetSessionID(c), req.Token)
	switch {
	case err == nil:
		h.NoContent(c)
	case errors.Is(err, cache.ErrTokenExpired):
		h.ErrorWithCode(c, dto.ErrCodeTokenExpired, "Auth token is expired")
	case errors.Is(err, cache.ErrEmptyToken):
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Auth token is empty")
	default:
		h.HandleError(c, err)
	}
}

// ClearToken godoc
// @Summary      Forget the auth token
// @Tags         session
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      204
// @Router       /session/token [delete]
func (h *SessionHandler) ClearToken(c *gin.Context) {
	if err := h.tokens.Clear(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
