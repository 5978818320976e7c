package handler

import (
	"context"
	"strings"

	appcart "github.com/craveup/leclerc-storefront/internal/application/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/cart"
	"github.com/craveup/leclerc-storefront/internal/domain/menu"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/event"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/logger"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartSessions hands out the synchronizer of a session
type CartSessions interface {
	Get(sessionID string) *appcart.Synchronizer
}

// ItemFinder resolves a product id to its menu entry
type ItemFinder interface {
	FindItem(ctx context.Context, locationID, productID string) (*menu.MenuItem, error)
}

// NotificationInbox holds the pending toasts of each session
type NotificationInbox interface {
	Drain(sessionID string) []event.Toast
}

// CartHandler handles the shopper cart endpoints
type CartHandler struct {
	BaseHandler
	sessions CartSessions
	items    ItemFinder
	inbox    NotificationInbox
}

// NewCartHandler creates a CartHandler
func NewCartHandler(sessions CartSessions, items ItemFinder, inbox NotificationInbox) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		items:    items,
		inbox:    inbox,
	}
}

// AddItemRequest is the body of POST /cart/items
type AddItemRequest struct {
	ProductID string            `json:"productId" binding:"required"`
	Options   *cart.ItemOptions `json:"options"`
}

// UpdateQuantityRequest is the body of PATCH /cart/items/:lineId
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ApplyDiscountRequest is the body of POST /cart/discounts
type ApplyDiscountRequest struct {
	Code string `json:"code" binding:"required"`
}

// DiscountResponse is the body of POST /cart/discounts
type DiscountResponse struct {
	Discount *cart.DiscountResult `json:"discount"`
	Cart     appcart.State        `json:"cart"`
}

// NotificationsResponse is the body of GET /cart/notifications
type NotificationsResponse struct {
	Notifications []event.Toast `json:"notifications"`
}

func (h *CartHandler) synchronizer(c *gin.Context) *appcart.Synchronizer {
	return h.sessions.Get(middleware.GetSessionID(c))
}

// Get godoc
// @Summary      Get the shopper cart
// @Description  Re-fetches the remote cart, creating one on first use
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	s := h.synchronizer(c)
	if err := s.Refresh(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s.State())
}

// AddItem godoc
// @Summary      Add an item to the cart
// @Description  Adds one unit of a product; the cart is re-fetched afterwards
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Param        request body AddItemRequest true "Item to add"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := h.synchronizer(c)
	ctx := c.Request.Context()
	productID := strings.TrimSpace(req.ProductID)

	// Without a cart AddItem fails fast; the menu is only consulted for a
	// display name once the add can actually reach the storefront.
	item := menu.MenuItem{ID: productID, Name: productID}
	if s.HasCart(ctx) {
		item = h.lookupItem(c, s.LocationID(), productID)
	}

	options := cart.DefaultItemOptions()
	if req.Options != nil {
		options = *req.Options
	}

	if err := s.AddItem(ctx, item, options); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s.State())
}

// lookupItem resolves the menu entry of productID. The storefront decides
// whether the product can be added, so a failed lookup falls back to the bare id.
func (h *CartHandler) lookupItem(c *gin.Context, locationID, productID string) menu.MenuItem {
	fallback := menu.MenuItem{ID: productID, Name: productID}
	if h.items == nil {
		return fallback
	}
	found, err := h.items.FindItem(c.Request.Context(), locationID, productID)
	if err != nil || found == nil {
		logger.GetGinLogger(c).Debug("menu lookup failed, adding by product id",
			zap.String("product_id", productID),
			zap.Error(err),
		)
		return fallback
	}
	return *found
}

// UpdateQuantity godoc
// @Summary      Set a cart line quantity
// @Description  A quantity of 0 removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Param        lineId path string true "Cart line ID"
// @Param        request body UpdateQuantityRequest true "New quantity"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{lineId} [patch]
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := h.synchronizer(c)
	if err := s.UpdateQuantity(c.Request.Context(), c.Param("lineId"), *req.Quantity); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s.State())
}

// RemoveItem godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Param        lineId path string true "Cart line ID"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{lineId} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	s := h.synchronizer(c)
	if err := s.RemoveItem(c.Request.Context(), c.Param("lineId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s.State())
}

// ApplyDiscount godoc
// @Summary      Apply a discount code
// @Description  A rejected code answers 200 with discountApplied=false
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Param        request body ApplyDiscountRequest true "Discount code"
// @Success      200 {object} dto.Response{data=DiscountResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/discounts [post]
func (h *CartHandler) ApplyDiscount(c *gin.Context) {
	var req ApplyDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	s := h.synchronizer(c)
	result, err := s.ApplyDiscount(c.Request.Context(), req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DiscountResponse{Discount: result, Cart: s.State()})
}

// Clear godoc
// @Summary      Start a fresh cart
// @Description  Forgets the stored cart, closes the drawer and fetches a new cart
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	s := h.synchronizer(c)
	if err := s.Clear(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, s.State())
}

// Open godoc
// @Summary      Open the cart drawer
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Router       /cart/open [post]
func (h *CartHandler) Open(c *gin.Context) {
	s := h.synchronizer(c)
	s.OpenCart()
	h.Success(c, s.State())
}

// Close godoc
// @Summary      Close the cart drawer
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Router       /cart/close [post]
func (h *CartHandler) Close(c *gin.Context) {
	s := h.synchronizer(c)
	s.CloseCart()
	h.Success(c, s.State())
}

// ClearError godoc
// @Summary      Dismiss the cart error
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=appcart.State}
// @Router       /cart/error [delete]
func (h *CartHandler) ClearError(c *gin.Context) {
	s := h.synchronizer(c)
	s.ClearError()
	h.Success(c, s.State())
}

// Notifications godoc
// @Summary      Drain pending notifications
// @Description  Returned toasts are removed from the inbox
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session id (defaults to the session cookie)"
// @Success      200 {object} dto.Response{data=NotificationsResponse}
// @Router       /cart/notifications [get]
func (h *CartHandler) Notifications(c *gin.Context) {
	h.Success(c, NotificationsResponse{Notifications: h.inbox.Drain(middleware.GetSessionID(c))})
}
