package router

import (
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the endpoint handlers of the storefront API
type Handlers struct {
	Products *handler.ProductsHandler
	Menu     *handler.MenuHandler
	Cart     *handler.CartHandler
	Session  *handler.SessionHandler
	System   *handler.SystemHandler
}

// DomainGroups builds the versioned route groups of the storefront API
func DomainGroups(h Handlers) []*DomainGroup {
	menuRoutes := NewDomainGroup("menu", "/menu")
	menuRoutes.GET("", h.Menu.GetMenus)
	menuRoutes.GET("/items", h.Menu.GetItems)

	cartRoutes := NewDomainGroup("cart", "/cart")
	cartRoutes.GET("", h.Cart.Get)
	cartRoutes.DELETE("", h.Cart.Clear)
	cartRoutes.POST("/open", h.Cart.Open)
	cartRoutes.POST("/close", h.Cart.Close)
	cartRoutes.DELETE("/error", h.Cart.ClearError)
	cartRoutes.GET("/notifications", h.Cart.Notifications)
	cartRoutes.POST("/discounts", h.Cart.ApplyDiscount)

	itemRoutes := cartRoutes.Group("items", "/items")
	itemRoutes.POST("", h.Cart.AddItem)
	itemRoutes.PATCH("/:lineId", h.Cart.UpdateQuantity)
	itemRoutes.DELETE("/:lineId", h.Cart.RemoveItem)

	sessionRoutes := NewDomainGroup("session", "/session")
	sessionRoutes.GET("", h.Session.Get)
	sessionRoutes.PUT("/token", h.Session.SetToken)
	sessionRoutes.DELETE("/token", h.Session.ClearToken)

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)
	systemRoutes.GET("/ping", h.System.Ping)

	return []*DomainGroup{menuRoutes, cartRoutes, sessionRoutes, systemRoutes}
}

// Mount registers every storefront route on engine: the unversioned health
// check and product proxy, and the /api/v1 groups.
func Mount(engine *gin.Engine, h Handlers) []*DomainGroup {
	engine.GET("/health", h.System.Health)
	engine.GET("/api/products", h.Products.List)

	groups := DomainGroups(h)
	r := NewRouter(engine, WithAPIVersion("v1"))
	for _, group := range groups {
		r.Register(group)
	}
	r.Setup()
	return groups
}
