// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/evermore-storefront/internal/pkg/auth"
)

// Handlers groups every API handler
type Handlers struct {
	Auth     *handlers.AuthHandler
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Order    *handlers.OrderHandler
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *handlers.AuthHandler, jwtManager *auth.JWTManager) {
	authGroup := rg.Group("/auth")
	{
		// Public auth endpoints
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/guest", h.LoginAsGuest)

		// Protected auth endpoints
		protected := authGroup.Group("")
		protected.Use(middleware.AuthMiddleware(jwtManager))
		{
			protected.POST("/logout", h.Logout)
			protected.GET("/profile", h.GetProfile)
		}
	}
}

// SetupCatalogRoutes sets up product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *handlers.CatalogHandler) {
	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/featured", h.GetFeaturedProducts)
		products.GET("/new", h.GetNewArrivals)
		products.GET("/best-sellers", h.GetBestSellers)
		products.GET("/:id", h.GetProduct)
	}

	rg.GET("/categories", h.GetCategories)
}

// SetupCartRoutes sets up the session cart routes
func SetupCartRoutes(rg *gin.RouterGroup, h *handlers.CartHandler) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.GET("/count", h.GetCartCount)
		cart.POST("/items", h.AddItem)
		cart.PUT("/items/:id", h.UpdateItem)
		cart.DELETE("/items/:id", h.RemoveItem)
		cart.DELETE("", h.ClearCart)
	}
}

// SetupCheckoutRoutes sets up checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *handlers.CheckoutHandler) {
	checkout := rg.Group("/checkout")
	{
		checkout.GET("/summary", h.GetSummary)
		checkout.GET("/countries", h.GetCountries)
		checkout.POST("/discount", h.ApplyDiscount)
		checkout.DELETE("/discount", h.RemoveDiscount)
		checkout.PUT("/payment-method", h.SetPaymentMethod)
		checkout.POST("/validate", h.Validate)
		checkout.POST("/place-order", h.PlaceOrder)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *handlers.OrderHandler, jwtManager *auth.JWTManager) {
	orders := rg.Group("/orders")
	{
		orders.GET("", middleware.AuthMiddleware(jwtManager), h.GetUserOrders)
		orders.GET("/:number", h.GetOrder)
		orders.GET("/:number/receipt", h.DownloadReceipt)
	}
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, h Handlers, jwtManager *auth.JWTManager) {
	SetupAuthRoutes(rg, h.Auth, jwtManager)
	SetupCatalogRoutes(rg, h.Catalog)
	SetupCartRoutes(rg, h.Cart)
	SetupCheckoutRoutes(rg, h.Checkout)
	SetupOrderRoutes(rg, h.Order, jwtManager)
}
