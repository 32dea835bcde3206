package routes

import (
	"net/http"
	"storefront_back_end/internal/handlers/payment"
	"storefront_back_end/internal/handlers/product"
	"storefront_back_end/internal/handlers/user"
	"storefront_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Webhook   *payment.WebhookHandler
	Orders    *user.OrderHandler
	Customers *user.CustomerHandler
	Stock     *product.StockHandler
	JWTSecret []byte
	// RateCounter enables rate limiting on the storefront endpoints when set.
	RateCounter middleware.RateCounter
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Stripe retries on its own schedule; never throttle it.
	api.POST("/webhooks/stripe", h.Webhook.StripeWebhook)

	public := api.Group("")
	if h.RateCounter != nil {
		public.Use(middleware.RateLimit(h.RateCounter, "api_requests", middleware.APIMaxRequests, middleware.APIWindow))
	}
	public.GET("/products/stock", h.Stock.GetStock)

	auth := api.Group("")
	auth.Use(middleware.AuthRequired(h.JWTSecret))
	if h.RateCounter != nil {
		auth.Use(middleware.RateLimit(h.RateCounter, "user_requests", middleware.APIMaxRequests, middleware.APIWindow))
	}
	{
		auth.GET("/orders", h.Orders.GetMyOrders)
		auth.GET("/orders/:id", h.Orders.GetOrderByID)
		auth.POST("/customers/sync", h.Customers.SyncCustomer)
	}
}
