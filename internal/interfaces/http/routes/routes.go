// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/checkout"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/webhook"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Dependencies are the services the routes are wired to
type Dependencies struct {
	Config   *config.Config
	Logger   *logrus.Logger
	JWT      *auth.JWTManager
	Products *product.Service
	Carts    *cart.Service
	Checkout *checkout.Service
	Orders   *order.Service
	Webhooks *webhook.Processor
	Invoices handlers.InvoiceRenderer
}

// SetupProductRoutes sets up catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, deps Dependencies) {
	productHandler := handlers.NewProductHandler(deps.Products)

	rg.GET("/products", productHandler.GetProducts)
}

// SetupCartRoutes sets up cart routes for guests and users alike
func SetupCartRoutes(rg *gin.RouterGroup, deps Dependencies) {
	cartHandler := handlers.NewCartHandler(deps.Carts)

	c := rg.Group("/cart")
	{
		c.GET("", cartHandler.GetCart)
		c.DELETE("", cartHandler.ClearCart)
		c.POST("/items", cartHandler.AddToCart)
		c.PUT("/items", cartHandler.UpdateCartItems)
		c.PUT("/items/:product_id", cartHandler.UpdateCartItem)
	}
}

// SetupCheckoutRoutes sets up checkout session routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, deps Dependencies) {
	checkoutHandler := handlers.NewCheckoutHandler(deps.Checkout, deps.Carts)

	rg.POST("/checkout", checkoutHandler.CreateSession)
}

// SetupOrderRoutes sets up order routes
func SetupOrderRoutes(rg *gin.RouterGroup, deps Dependencies) {
	orderHandler := handlers.NewOrderHandler(deps.Orders)

	orders := rg.Group("/orders")
	{
		orders.GET("/session/:session_id", orderHandler.GetBySession)
		orders.GET("", middleware.RequireOwner(), orderHandler.GetUserOrders)

		if deps.Config.Checkout.InvoiceEnabled && deps.Invoices != nil {
			invoiceHandler := handlers.NewInvoiceHandler(deps.Orders, deps.Invoices)
			orders.GET("/:customer_facing_id/invoice", invoiceHandler.GenerateInvoice)
		}
	}
}

// SetupWebhookRoutes sets up gateway webhook routes. They carry no identity.
func SetupWebhookRoutes(rg *gin.RouterGroup, deps Dependencies) {
	webhookHandler := handlers.NewWebhookHandler(deps.Webhooks, deps.Config.Webhook.MaxBodyBytes, deps.Logger)

	rg.POST("/webhooks/stripe", webhookHandler.HandleStripe)
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, deps Dependencies) {
	SetupWebhookRoutes(rg, deps)

	api := rg.Group("")
	api.Use(
		middleware.RequestSizeLimit(deps.Config.Server.MaxBodyBytes),
		middleware.Identity(deps.JWT, deps.Logger),
	)

	SetupProductRoutes(api, deps)
	SetupCartRoutes(api, deps)
	SetupCheckoutRoutes(api, deps)
	SetupOrderRoutes(api, deps)
}
