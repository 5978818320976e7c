package handler

import (
	"errors"
	"net/http"

	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/logger"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/storefront"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/dto"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindJSON binds the request body into req, answering 400 on failure
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.HandleValidationError(c, err)
		return false
	}
	return true
}

// HandleError converts domain, remote and transport errors to HTTP responses.
// Storefront 4xx answers keep their status; 5xx answers and transport
// failures become 502.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), domainErr.Message)
		return
	}

	var remoteErr *shared.RemoteError
	if errors.As(err, &remoteErr) {
		if remoteErr.StatusCode >= 400 && remoteErr.StatusCode < 500 {
			h.Error(c, remoteErr.StatusCode, dto.ErrCodeRemote, shared.UserMessage(err))
			return
		}
		h.logError(c, "storefront API error", err)
		h.ErrorWithCode(c, dto.ErrCodeUpstream, shared.UserMessage(err))
		return
	}

	if errors.Is(err, storefront.ErrUnavailable) {
		h.logError(c, "storefront API unavailable", err)
		h.ErrorWithCode(c, dto.ErrCodeUpstream, shared.GenericErrorMessage)
		return
	}

	h.logError(c, "unexpected error", err)
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

func (h *BaseHandler) logError(c *gin.Context, msg string, err error) {
	logger.GetGinLogger(c).Error(msg, zap.Error(err))
}
