package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/craveup/leclerc-storefront/internal/domain/shared"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProductLister fetches the raw product list of a location
type ProductLister interface {
	ListProducts(ctx context.Context, locationID string) (json.RawMessage, error)
}

// ProductsHandler is the same-origin proxy for the storefront product list.
// Its error bodies are {"error": message}, matching what the browser
// storefront already expects from this route.
type ProductsHandler struct {
	products ProductLister
}

// NewProductsHandler creates a ProductsHandler. A nil lister means the
// storefront API key is not configured.
func NewProductsHandler(products ProductLister) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// List godoc
// @Summary      List storefront products
// @Description  Same-origin proxy of the storefront product list. Errors use the {"error": message} shape.
// @Tags         products
// @Produce      json
// @Param        locationId query string true "Location ID"
// @Success      200 {object} object
// @Failure      400 {object} object
// @Failure      500 {object} object
// @Router       /api/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	locationID := strings.TrimSpace(c.Query("locationId"))
	if locationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Location ID is required"})
		return
	}

	log := logger.GetGinLogger(c)
	if h.products == nil {
		log.Warn("storefront API key is not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API key not configured"})
		return
	}

	raw, err := h.products.ListProducts(c.Request.Context(), locationID)
	if err != nil {
		var remoteErr *shared.RemoteError
		if errors.As(err, &remoteErr) {
			message := remoteErr.Message
			if message == "" {
				message = "Unknown error"
			}
			c.JSON(remoteErr.StatusCode, gin.H{"error": message})
			return
		}
		log.Error("failed to fetch products", zap.String("location_id", locationID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", raw)
}
