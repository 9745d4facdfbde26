// internal/domain/cart/entity.go
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
)

// LineItem is one cart line. A cart holds at most one line per product id;
// adding the same product again merges into the existing line.
type LineItem struct {
	Product       catalog.Product `json:"product"`
	Quantity      int             `json:"quantity"`
	SelectedColor string          `json:"selectedColor,omitempty"`
	SelectedSize  string          `json:"selectedSize,omitempty"`
}

// LineTotal returns price * quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Variant is the optional color/size choice made when adding a product
type Variant struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
}
