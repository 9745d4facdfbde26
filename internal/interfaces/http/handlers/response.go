// internal/interfaces/http/handlers/response.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/evermore-storefront/internal/domain/cart"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
	"github.com/your-org/evermore-storefront/internal/domain/checkout"
	"github.com/your-org/evermore-storefront/internal/domain/order"
	"github.com/your-org/evermore-storefront/internal/domain/pricing"
	"github.com/your-org/evermore-storefront/internal/domain/user"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

// respond writes a success body with the notifications recorded during the request
func respond(c *gin.Context, status int, message string, data any, rec *notify.Recorder) {
	c.JSON(status, gin.H{
		"message":       message,
		"data":          data,
		"notifications": rec.All(),
	})
}

// respondError maps a domain error to its HTTP status and writes it.
// data may carry a partial view, such as a checkout summary.
func respondError(c *gin.Context, err error, rec *notify.Recorder, data any) {
	status := statusFor(err)
	body := gin.H{
		"error":         messageFor(err, status),
		"notifications": rec.All(),
	}
	if data != nil {
		body["data"] = data
	}

	var valErr *checkout.ValidationError
	if errors.As(err, &valErr) {
		body["details"] = valErr.Fields
	}
	var minErr *checkout.MinimumOrderError
	if errors.As(err, &minErr) {
		body["details"] = gin.H{
			"minimum":   minErr.Minimum,
			"shortfall": minErr.Shortfall,
		}
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidVariant),
		errors.Is(err, pricing.ErrInvalidDiscountCode),
		errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, checkout.ErrBelowMinimumOrder),
		errors.Is(err, checkout.ErrInvalidCustomer),
		errors.Is(err, checkout.ErrInvalidPayment),
		errors.Is(err, user.ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, pricing.ErrDiscountAlreadyApplied),
		errors.Is(err, checkout.ErrSubmissionInProgress),
		errors.Is(err, catalog.ErrOutOfStock),
		errors.Is(err, order.ErrDuplicateOrder):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrOrderNotRecorded):
		return http.StatusServiceUnavailable
	case errors.Is(err, checkout.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(err error, status int) string {
	if errors.Is(err, checkout.ErrOrderNotRecorded) {
		return "Payment received but the order could not be saved. Please try again, you will not be charged twice."
	}
	if status >= http.StatusInternalServerError {
		return "Internal server error"
	}
	if errors.Is(err, checkout.ErrPaymentFailed) {
		return "Payment processing failed. Please try again."
	}
	return err.Error()
}

// bindError writes the 400 returned for malformed request bodies
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request data",
		"details": err.Error(),
	})
}
