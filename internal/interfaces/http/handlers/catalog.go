// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
)

// CatalogHandler serves the read-only product catalog
type CatalogHandler struct {
	catalogService *catalog.Service
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// CategoryResponse is a category slug with its display name
type CategoryResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// ListProducts handles GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalog.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	products := h.catalogService.ListProducts(filter)
	c.JSON(http.StatusOK, gin.H{
		"message": "Products retrieved successfully",
		"data":    products,
		"total":   len(products),
	})
}

// GetFeaturedProducts handles GET /products/featured
func (h *CatalogHandler) GetFeaturedProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Featured products retrieved successfully",
		"data":    h.catalogService.GetFeaturedProducts(),
	})
}

// GetNewArrivals handles GET /products/new
func (h *CatalogHandler) GetNewArrivals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "New arrivals retrieved successfully",
		"data":    h.catalogService.GetNewArrivals(),
	})
}

// GetBestSellers handles GET /products/best-sellers
func (h *CatalogHandler) GetBestSellers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Best sellers retrieved successfully",
		"data":    h.catalogService.GetBestSellers(),
	})
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve product",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// GetCategories handles GET /categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	gender := catalog.Gender(c.Query("gender"))

	categories := []CategoryResponse{}
	for _, category := range h.catalogService.GetCategories(gender) {
		categories = append(categories, CategoryResponse{
			Slug: string(category),
			Name: category.DisplayName(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Categories retrieved successfully",
		"data":    categories,
	})
}
