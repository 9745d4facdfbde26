// internal/domain/catalog/entity.go
package catalog

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Gender groups the catalog into the two storefront sections
type Gender string

const (
	GenderMen   Gender = "men"
	GenderWomen Gender = "women"
)

// Category is a product category slug
type Category string

const (
	CategoryPortfolios     Category = "portfolios"
	CategoryWatches        Category = "watches"
	CategoryPantsBelts     Category = "pants-belts"
	CategoryLeatherWallets Category = "leather-wallets"
	CategoryBackpacks      Category = "backpacks"
	CategoryComputerBags   Category = "computer-bags"
	CategoryBagsPurses     Category = "bags-purses"
	CategoryCosmetics      Category = "cosmetics"
	CategoryBeautySkincare Category = "beauty-skincare"
	CategoryJewelry        Category = "jewelry"
)

var categoryDisplayNames = map[Category]string{
	CategoryPortfolios:     "Portfolios",
	CategoryWatches:        "Watches",
	CategoryPantsBelts:     "Pants & Belts",
	CategoryLeatherWallets: "Leather Wallets",
	CategoryBackpacks:      "Backpacks",
	CategoryComputerBags:   "Computer Bags",
	CategoryBagsPurses:     "Bags & Purses",
	CategoryCosmetics:      "Cosmetics",
	CategoryBeautySkincare: "Beauty & Skincare",
	CategoryJewelry:        "Jewelry",
}

// DisplayName returns the human readable category name, or the slug itself
func (c Category) DisplayName() string {
	if name, ok := categoryDisplayNames[c]; ok {
		return name
	}
	return string(c)
}

// Product is a catalog entry. The core treats it as read-only.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Gender      Gender          `json:"gender"`
	Category    Category        `json:"category"`
	Featured    bool            `json:"featured,omitempty"`
	New         bool            `json:"new,omitempty"`
	BestSeller  bool            `json:"bestSeller,omitempty"`
	Stock       int             `json:"stock"`
	Colors      []string        `json:"colors,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
}

// InStock reports whether the product can still be added to a cart
func (p Product) InStock() bool {
	return p.Stock > 0
}

// HasColor reports whether color is one of the declared colors
func (p Product) HasColor(color string) bool {
	return slices.Contains(p.Colors, color)
}

// HasSize reports whether size is one of the declared sizes
func (p Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// DefaultColor returns the first declared color, or "" when none is declared
func (p Product) DefaultColor() string {
	if len(p.Colors) == 0 {
		return ""
	}
	return p.Colors[0]
}

// DefaultSize returns the first declared size, or "" when none is declared
func (p Product) DefaultSize() string {
	if len(p.Sizes) == 0 {
		return ""
	}
	return p.Sizes[0]
}
