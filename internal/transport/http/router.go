package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ifixzone/shop/internal/handlers"
)

type Deps struct {
	DB                  *gorm.DB
	CartHandler         *handlers.CartHandler
	OrderHandler        *handlers.OrderHandler
	CategoryHandler     *handlers.CategoryHandler
	NotificationHandler *handlers.NotificationHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.GET("/categories/menu", d.CategoryHandler.Menu)
	v1.GET("/categories/:id/breadcrumb", d.CategoryHandler.Breadcrumb)
	v1.GET("/categories/:id/products", d.CategoryHandler.Products)

	v1.GET("/cart", d.CartHandler.GetCart)
	v1.POST("/cart", d.CartHandler.AddToCart)
	v1.PATCH("/cart/:id", d.CartHandler.UpdateQuantity)
	v1.DELETE("/cart/:id", d.CartHandler.RemoveItem)

	v1.POST("/checkout", d.OrderHandler.Checkout)
	v1.GET("/orders", d.OrderHandler.History)
	v1.GET("/orders/:id", d.OrderHandler.GetOrder)
	v1.POST("/orders/:id/cancel", d.OrderHandler.Cancel)

	v1.GET("/notifications", d.NotificationHandler.List)
	v1.POST("/notifications/:id/read", d.NotificationHandler.MarkRead)

	admin := v1.Group("/admin")
	admin.GET("/orders", d.OrderHandler.AdminList)
	admin.POST("/orders/:id/status", d.OrderHandler.UpdateStatus)
}
