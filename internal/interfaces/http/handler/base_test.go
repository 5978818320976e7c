package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/storefront"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "domain error is normalized",
			err:            cart.ErrCartNotReady,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeCartNotReady,
			expectedMsg:    "Cart is not ready. Please try again.",
		},
		{
			name:           "wrapped domain error",
			err:            fmt.Errorf("update: %w", cart.ErrInvalidQuantity),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   dto.ErrCodeInvalidQuantity,
			expectedMsg:    "Quantity cannot be negative.",
		},
		{
			name:           "remote 4xx keeps its status",
			err:            &shared.RemoteError{StatusCode: http.StatusNotFound, Message: "Cart not found"},
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeRemote,
			expectedMsg:    "Cart not found",
		},
		{
			name:           "remote 4xx without message",
			err:            &shared.RemoteError{StatusCode: http.StatusUnprocessableEntity},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeRemote,
			expectedMsg:    shared.GenericErrorMessage,
		},
		{
			name:           "remote 5xx becomes bad gateway",
			err:            &shared.RemoteError{StatusCode: http.StatusServiceUnavailable, Message: "Maintenance"},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   dto.ErrCodeUpstream,
			expectedMsg:    "Maintenance",
		},
		{
			name:           "transport failure",
			err:            fmt.Errorf("%w: connection refused", storefront.ErrUnavailable),
			expectedStatus: http.StatusBadGateway,
			expectedCode:   dto.ErrCodeUpstream,
			expectedMsg:    shared.GenericErrorMessage,
		},
		{
			name:           "storefront not configured",
			err:            storefront.ErrNotConfigured,
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeNotConfigured,
			expectedMsg:    "Storefront API is not configured",
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
			expectedMsg:    "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, tt.expectedMsg, resp.Error.Message)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_BindJSON(t *testing.T) {
	type body struct {
		Code string `json:"code" binding:"required"`
	}

	t.Run("valid body", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", jsonBody(`{"code":"BREAD10"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var req body
		h := &BaseHandler{}
		assert.True(t, h.BindJSON(c, &req))
		assert.Equal(t, "BREAD10", req.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", jsonBody(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		var req body
		h := &BaseHandler{}
		assert.False(t, h.BindJSON(c, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})
}
