// internal/domain/pricing/discount.go
package pricing

import (
	"errors"

	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

var (
	ErrInvalidDiscountCode    = errors.New("invalid discount code")
	ErrDiscountAlreadyApplied = errors.New("a discount is already applied")
)

// DiscountTable maps a code to its percent off. Codes match exactly, case included.
type DiscountTable map[string]int

// Lookup returns the percent for code and whether the code exists
func (t DiscountTable) Lookup(code string) (int, bool) {
	percent, ok := t[code]
	return percent, ok
}

// DiscountSession tracks the discount applied during one checkout.
// The zero value is open for code entry.
type DiscountSession struct {
	Code    string `json:"code,omitempty"`
	Percent *int   `json:"percent,omitempty"`
}

// Applied reports whether a code is currently applied
func (d *DiscountSession) Applied() bool {
	return d.Percent != nil
}

// ApplyDiscountCode looks code up in table and applies it. Unknown codes
// leave the session untouched.
func (d *DiscountSession) ApplyDiscountCode(table DiscountTable, code string, sink notify.Sink) (int, error) {
	if d.Applied() {
		return 0, ErrDiscountAlreadyApplied
	}

	percent, ok := table.Lookup(code)
	if !ok {
		notify.Error(sink, "Invalid discount code")
		return 0, ErrInvalidDiscountCode
	}

	d.Code = code
	d.Percent = &percent
	notify.Success(sink, "Discount applied")
	return percent, nil
}

// RemoveDiscount clears the applied discount and reopens code entry
func (d *DiscountSession) RemoveDiscount(sink notify.Sink) {
	d.Code = ""
	d.Percent = nil
	notify.Info(sink, "Discount removed")
}
