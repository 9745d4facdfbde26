// internal/domain/catalog/service.go
package catalog

import (
	"errors"
	"strings"
)

var (
	// ErrProductNotFound is returned when no product has the requested id
	ErrProductNotFound = errors.New("product not found")
	// ErrOutOfStock is returned when a product with no stock is added to a cart
	ErrOutOfStock = errors.New("product is out of stock")
)

// Service serves the static product catalog
type Service struct {
	products []Product
	byID     map[string]int
}

// NewService creates a catalog service over the storefront products
func NewService() *Service {
	return NewServiceWithProducts(defaultProducts())
}

// NewServiceWithProducts creates a catalog service over the given products
func NewServiceWithProducts(products []Product) *Service {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return &Service{
		products: products,
		byID:     byID,
	}
}

// ProductFilter narrows a product listing. Zero values match everything.
type ProductFilter struct {
	Gender      Gender   `form:"gender"`
	Category    Category `form:"category"`
	Query       string   `form:"q"`
	InStockOnly bool     `form:"in_stock"`
}

func (f ProductFilter) matches(p Product) bool {
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// GetProduct returns the product with the given id
func (s *Service) GetProduct(id string) (Product, error) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return s.products[i], nil
}

// ListProducts returns products matching the filter in catalog order
func (s *Service) ListProducts(filter ProductFilter) []Product {
	return s.where(filter.matches)
}

// GetFeaturedProducts returns products flagged as featured
func (s *Service) GetFeaturedProducts() []Product {
	return s.where(func(p Product) bool { return p.Featured })
}

// GetNewArrivals returns products flagged as new
func (s *Service) GetNewArrivals() []Product {
	return s.where(func(p Product) bool { return p.New })
}

// GetBestSellers returns products flagged as best sellers
func (s *Service) GetBestSellers() []Product {
	return s.where(func(p Product) bool { return p.BestSeller })
}

// GetCategories returns the distinct categories, in first-seen order.
// An empty gender returns every category.
func (s *Service) GetCategories(gender Gender) []Category {
	seen := make(map[Category]bool)
	categories := []Category{}
	for _, p := range s.products {
		if gender != "" && p.Gender != gender {
			continue
		}
		if !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	return categories
}

func (s *Service) where(keep func(Product) bool) []Product {
	result := []Product{}
	for _, p := range s.products {
		if keep(p) {
			result = append(result, p)
		}
	}
	return result
}
