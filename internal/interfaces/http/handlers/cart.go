// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/domain/cart"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
	"github.com/your-org/evermore-storefront/internal/domain/pricing"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

// CartHandler handles the session cart
type CartHandler struct {
	carts          *cart.Manager
	catalogService *catalog.Service
	engine         *pricing.Engine
	log            *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Manager, catalogService *catalog.Service, engine *pricing.Engine, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		carts:          carts,
		catalogService: catalogService,
		engine:         engine,
		log:            log,
	}
}

// AddToCartRequest represents an add-to-cart request
type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

// UpdateCartItemRequest represents a quantity update
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartView is the cart as returned to the client
type CartView struct {
	Items      []cart.LineItem   `json:"items"`
	TotalItems int               `json:"totalItems"`
	TotalPrice decimal.Decimal   `json:"totalPrice"`
	Pricing    pricing.Breakdown `json:"pricing"`
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	rec := notify.NewRecorder()
	store, err := h.open(c, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Cart retrieved successfully", h.view(store), rec)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	rec := notify.NewRecorder()
	product, err := h.catalogService.GetProduct(req.ProductID)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}
	if !product.InStock() {
		notify.Error(rec, product.Name+" is out of stock")
		respondError(c, catalog.ErrOutOfStock, rec, nil)
		return
	}

	store, err := h.open(c, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	if err := store.AddItem(c.Request.Context(), product, req.Quantity, cart.Variant{Color: req.Color, Size: req.Size}); err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Item added to cart", h.view(store), rec)
}

// UpdateItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec := notify.NewRecorder()
	store, err := h.open(c, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	if err := store.UpdateItemQuantity(c.Request.Context(), c.Param("id"), *req.Quantity); err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Cart item updated", h.view(store), rec)
}

// RemoveItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	rec := notify.NewRecorder()
	store, err := h.open(c, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	if err := store.RemoveItem(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Item removed from cart", h.view(store), rec)
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	rec := notify.NewRecorder()
	store, err := h.open(c, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	if err := store.ClearCart(c.Request.Context()); err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Cart cleared", h.view(store), rec)
}

// GetCartCount handles GET /cart/count
func (h *CartHandler) GetCartCount(c *gin.Context) {
	rec := notify.NewRecorder()
	store, err := h.open(c, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Cart count retrieved successfully", gin.H{"count": store.TotalItems()}, rec)
}

func (h *CartHandler) open(c *gin.Context, rec *notify.Recorder) (*cart.Store, error) {
	return h.carts.Open(c.Request.Context(), middleware.GetSessionID(c), rec)
}

func (h *CartHandler) view(store *cart.Store) CartView {
	items := store.Items()
	return CartView{
		Items:      items,
		TotalItems: store.TotalItems(),
		TotalPrice: store.TotalPrice(),
		Pricing:    h.engine.Breakdown(items, nil),
	}
}
