package handler

import (
	"context"

	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/gin-gonic/gin"
)

// MenuReader serves normalized menus
type MenuReader interface {
	GetMenus(ctx context.Context, locationID, view string) ([]menu.Menu, error)
	GetItems(ctx context.Context, locationID, view string) ([]menu.MenuItem, error)
	ResolveLocation(locationID string) string
}

// MenuHandler handles menu endpoints
type MenuHandler struct {
	BaseHandler
	menus MenuReader
}

// NewMenuHandler creates a MenuHandler
func NewMenuHandler(menus MenuReader) *MenuHandler {
	return &MenuHandler{menus: menus}
}

// MenusResponse is the body of GET /menu
type MenusResponse struct {
	LocationID string      `json:"locationId"`
	View       string      `json:"view"`
	Menus      []menu.Menu `json:"menus"`
}

// ItemsResponse is the body of GET /menu/items
type ItemsResponse struct {
	LocationID string          `json:"locationId"`
	View       string          `json:"view"`
	Items      []menu.MenuItem `json:"items"`
}

// menuQuery reads the location and view; a blank location resolves to the
// reader's default so responses name the location actually served
func (h *MenuHandler) menuQuery(c *gin.Context) (string, string) {
	return h.menus.ResolveLocation(c.Query("locationId")), c.DefaultQuery("view", "full")
}

// GetMenus godoc
// @Summary      List normalized menus
// @Description  A blank locationId uses the default location
// @Tags         menu
// @Produce      json
// @Param        locationId query string false "Location ID"
// @Param        view query string false "home or full" default(full)
// @Success      200 {object} dto.Response{data=MenusResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu [get]
func (h *MenuHandler) GetMenus(c *gin.Context) {
	locationID, view := h.menuQuery(c)
	menus, err := h.menus.GetMenus(c.Request.Context(), locationID, view)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, MenusResponse{LocationID: locationID, View: view, Menus: menus})
}

// GetItems godoc
// @Summary      List normalized menu items
// @Tags         menu
// @Produce      json
// @Param        locationId query string false "Location ID"
// @Param        view query string false "home or full" default(full)
// @Success      200 {object} dto.Response{data=ItemsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/items [get]
func (h *MenuHandler) GetItems(c *gin.Context) {
	locationID, view := h.menuQuery(c)
	items, err := h.menus.GetItems(c.Request.Context(), locationID, view)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ItemsResponse{LocationID: locationID, View: view, Items: items})
}
