package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/craveup/leclerc-storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SystemStatus reports the runtime facts shown by the system endpoints
type SystemStatus struct {
	Version      string
	StoreBackend string
	Configured   bool
	MockFallback bool
	Sessions     func() int
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	status    SystemStatus
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(status SystemStatus) *SystemHandler {
	if status.Version == "" {
		status.Version = "dev"
	}
	return &SystemHandler{
		status:    status,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	GoVersion    string `json:"go_version"`
	Uptime       string `json:"uptime"`
	StoreBackend string `json:"store_backend"`
	Configured   bool   `json:"storefront_configured"`
	MockFallback bool   `json:"mock_fallback"`
	Sessions     int    `json:"active_sessions"`
}

// GetSystemInfo godoc
// @Summary      Get system information
// @Description  Returns version, uptime and storefront wiring
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:         "Leclerc Storefront API",
		Version:      h.status.Version,
		GoVersion:    runtime.Version(),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		StoreBackend: h.status.StoreBackend,
		Configured:   h.status.Configured,
		MockFallback: h.status.MockFallback,
	}
	if h.status.Sessions != nil {
		info.Sessions = h.status.Sessions()
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping godoc
// @Summary      Ping the API
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=PingResponse}
// @Router       /system/ping [get]
func (h *SystemHandler) Ping(c *gin.Context) {
	response := PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} object
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": h.status.Version,
	})
}
