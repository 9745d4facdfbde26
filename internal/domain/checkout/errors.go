// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCartEmpty            = errors.New("cart is empty")
	ErrBelowMinimumOrder    = errors.New("order is below the minimum order value")
	ErrInvalidCustomer      = errors.New("customer information is invalid")
	ErrInvalidPayment       = errors.New("payment information is invalid")
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	ErrPaymentFailed        = errors.New("payment processing failed")
	ErrOrderNotRecorded     = errors.New("payment taken but order could not be recorded")
)

// ValidationError carries the per-field messages of a failed form
type ValidationError struct {
	Kind   error
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// MinimumOrderError reports how far the subtotal is from the minimum order value
type MinimumOrderError struct {
	Minimum   decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *MinimumOrderError) Error() string {
	return fmt.Sprintf("minimum order value is %s, %s more required", e.Minimum.StringFixed(2), e.Shortfall.StringFixed(2))
}

func (e *MinimumOrderError) Unwrap() error {
	return ErrBelowMinimumOrder
}
