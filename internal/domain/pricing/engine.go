// internal/domain/pricing/engine.go
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/domain/cart"
)

// ShippingBasis selects which amount the free-shipping threshold is compared against
type ShippingBasis string

const (
	ShippingBasisSubtotal   ShippingBasis = "subtotal"
	ShippingBasisDiscounted ShippingBasis = "discounted"
)

// Rules are the pricing constants and flags of the store
type Rules struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	MinimumOrderValue     decimal.Decimal
	TaxRatePercent        int
	IncludeTax            bool
	ShippingBasis         ShippingBasis
	Discounts             DiscountTable
}

// DefaultRules returns the store's standard pricing rules
func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: decimal.NewFromInt(999),
		ShippingFee:           decimal.NewFromInt(50),
		MinimumOrderValue:     decimal.NewFromInt(249),
		TaxRatePercent:        10,
		ShippingBasis:         ShippingBasisSubtotal,
		Discounts:             DiscountTable{"80off": 80},
	}
}

// NewRulesFromConfig builds Rules from the pricing configuration
func NewRulesFromConfig(cfg config.PricingConfig) (Rules, error) {
	threshold, err := decimal.NewFromString(cfg.FreeShippingThreshold)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid free shipping threshold: %w", err)
	}
	fee, err := decimal.NewFromString(cfg.ShippingFee)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid shipping fee: %w", err)
	}
	minimum, err := decimal.NewFromString(cfg.MinimumOrderValue)
	if err != nil {
		return Rules{}, fmt.Errorf("invalid minimum order value: %w", err)
	}

	basis := ShippingBasis(cfg.ShippingBasis)
	switch basis {
	case ShippingBasisSubtotal, ShippingBasisDiscounted:
	case "":
		basis = ShippingBasisSubtotal
	default:
		return Rules{}, fmt.Errorf("unknown shipping basis %q", cfg.ShippingBasis)
	}

	discounts := make(DiscountTable, len(cfg.DiscountCodes))
	for code, percent := range cfg.DiscountCodes {
		discounts[code] = percent
	}

	return Rules{
		FreeShippingThreshold: threshold,
		ShippingFee:           fee,
		MinimumOrderValue:     minimum,
		TaxRatePercent:        cfg.TaxRatePercent,
		IncludeTax:            cfg.IncludeTax,
		ShippingBasis:         basis,
		Discounts:             discounts,
	}, nil
}

// Breakdown is the full price derivation of a cart at one moment
type Breakdown struct {
	Subtotal                 decimal.Decimal `json:"subtotal"`
	IsShippingFree           bool            `json:"isShippingFree"`
	ShippingCost             decimal.Decimal `json:"shippingCost"`
	TaxAmount                decimal.Decimal `json:"taxAmount"`
	DiscountPercent          *int            `json:"discountPercent"`
	DiscountAmount           decimal.Decimal `json:"discountAmount"`
	Total                    decimal.Decimal `json:"total"`
	MeetsMinimumOrder        bool            `json:"meetsMinimumOrder"`
	MinimumOrderShortfall    decimal.Decimal `json:"minimumOrderShortfall"`
	RemainingForFreeShipping decimal.Decimal `json:"remainingForFreeShipping"`
}

// Engine derives prices from cart snapshots. It holds no cart state.
type Engine struct {
	rules Rules
}

// NewEngine creates a new pricing engine
func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the rules the engine was built with
func (e *Engine) Rules() Rules {
	return e.rules
}

// ComputeSubtotal sums price * quantity over items
func (e *Engine) ComputeSubtotal(items []cart.LineItem) decimal.Decimal {
	return cart.Subtotal(items)
}

// IsEligibleForFreeShipping reports whether amount reaches the free shipping threshold
func (e *Engine) IsEligibleForFreeShipping(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(e.rules.FreeShippingThreshold)
}

// ShippingCost is zero at or above the threshold and the flat fee below it
func (e *Engine) ShippingCost(amount decimal.Decimal) decimal.Decimal {
	if e.IsEligibleForFreeShipping(amount) {
		return decimal.Zero
	}
	return e.rules.ShippingFee
}

// RemainingForFreeShipping returns how much more must be spent to ship for free
func (e *Engine) RemainingForFreeShipping(amount decimal.Decimal) decimal.Decimal {
	if e.IsEligibleForFreeShipping(amount) {
		return decimal.Zero
	}
	return e.rules.FreeShippingThreshold.Sub(amount)
}

// TaxAmount applies the tax rate to subtotal, rounded to a whole currency unit
func (e *Engine) TaxAmount(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(int64(e.rules.TaxRatePercent))).
		Div(decimal.NewFromInt(100)).
		Round(0)
}

// DiscountAmount returns subtotal * percent / 100 rounded to cents
func (e *Engine) DiscountAmount(subtotal decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return decimal.Zero
	}
	return subtotal.Mul(decimal.NewFromInt(int64(percent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// MeetsMinimumOrder reports whether subtotal reaches the minimum order value
func (e *Engine) MeetsMinimumOrder(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(e.rules.MinimumOrderValue)
}

// MinimumOrderShortfall returns the amount still required to reach the minimum
func (e *Engine) MinimumOrderShortfall(subtotal decimal.Decimal) decimal.Decimal {
	if e.MeetsMinimumOrder(subtotal) {
		return decimal.Zero
	}
	return e.rules.MinimumOrderValue.Sub(subtotal)
}

// ComputeBreakdown assembles the pricing of items.
// total = subtotal + tax + shipping - discount, with tax only when includeTax.
func (e *Engine) ComputeBreakdown(items []cart.LineItem, discountPercent *int, includeTax bool) Breakdown {
	subtotal := e.ComputeSubtotal(items)

	discount := decimal.Zero
	if discountPercent != nil {
		discount = e.DiscountAmount(subtotal, *discountPercent)
	}

	shippingBase := subtotal
	if e.rules.ShippingBasis == ShippingBasisDiscounted {
		shippingBase = subtotal.Sub(discount)
	}

	tax := decimal.Zero
	if includeTax {
		tax = e.TaxAmount(subtotal)
	}

	shipping := e.ShippingCost(shippingBase)
	total := subtotal.Add(tax).Add(shipping).Sub(discount)

	var percent *int
	if discountPercent != nil {
		p := *discountPercent
		percent = &p
	}

	return Breakdown{
		Subtotal:                 subtotal,
		IsShippingFree:           e.IsEligibleForFreeShipping(shippingBase),
		ShippingCost:             shipping,
		TaxAmount:                tax,
		DiscountPercent:          percent,
		DiscountAmount:           discount,
		Total:                    total,
		MeetsMinimumOrder:        e.MeetsMinimumOrder(subtotal),
		MinimumOrderShortfall:    e.MinimumOrderShortfall(subtotal),
		RemainingForFreeShipping: e.RemainingForFreeShipping(shippingBase),
	}
}

// Breakdown computes the pricing with the configured tax flag
func (e *Engine) Breakdown(items []cart.LineItem, discountPercent *int) Breakdown {
	return e.ComputeBreakdown(items, discountPercent, e.rules.IncludeTax)
}
