// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/evermore-storefront/internal/domain/checkout"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/middleware"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// DiscountRequest carries a discount code
type DiscountRequest struct {
	Code string `json:"code"`
}

// PaymentMethodRequest selects a payment method
type PaymentMethodRequest struct {
	Method checkout.PaymentMethod `json:"method" binding:"required"`
}

// GetSummary handles GET /checkout/summary
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	rec := notify.NewRecorder()
	summary, err := h.checkoutService.GetSummary(c.Request.Context(), middleware.GetSessionID(c), rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Checkout summary retrieved successfully", summary, rec)
}

// ApplyDiscount handles POST /checkout/discount
func (h *CheckoutHandler) ApplyDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec := notify.NewRecorder()
	summary, err := h.checkoutService.ApplyDiscount(c.Request.Context(), middleware.GetSessionID(c), req.Code, rec)
	if err != nil {
		respondError(c, err, rec, summary)
		return
	}

	respond(c, http.StatusOK, "Discount applied", summary, rec)
}

// RemoveDiscount handles DELETE /checkout/discount
func (h *CheckoutHandler) RemoveDiscount(c *gin.Context) {
	rec := notify.NewRecorder()
	summary, err := h.checkoutService.RemoveDiscount(c.Request.Context(), middleware.GetSessionID(c), rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Discount removed", summary, rec)
}

// SetPaymentMethod handles PUT /checkout/payment-method
func (h *CheckoutHandler) SetPaymentMethod(c *gin.Context) {
	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec := notify.NewRecorder()
	summary, err := h.checkoutService.SetPaymentMethod(c.Request.Context(), middleware.GetSessionID(c), req.Method, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Payment method updated", summary, rec)
}

// Validate handles POST /checkout/validate. Gate failures are reported in
// the evaluation body with a 200; only infrastructure errors fail the request.
func (h *CheckoutHandler) Validate(c *gin.Context) {
	var sub checkout.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		bindError(c, err)
		return
	}

	rec := notify.NewRecorder()
	eval, err := h.checkoutService.Evaluate(c.Request.Context(), middleware.GetSessionID(c), sub, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	respond(c, http.StatusOK, "Checkout evaluated", eval, rec)
}

// PlaceOrder handles POST /checkout/place-order
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var sub checkout.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		bindError(c, err)
		return
	}

	rec := notify.NewRecorder()
	receipt, err := h.checkoutService.PlaceOrder(c.Request.Context(), middleware.GetSessionID(c), sub, rec)
	if err != nil {
		respondError(c, err, rec, nil)
		return
	}

	status := http.StatusCreated
	message := "Order placed successfully"
	if receipt.Replayed {
		status = http.StatusOK
		message = "Order already placed"
	}
	respond(c, status, message, receipt, rec)
}

// GetCountries handles GET /checkout/countries
func (h *CheckoutHandler) GetCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Countries retrieved successfully",
		"data": gin.H{
			"countries": checkout.Countries(),
			"dialCodes": checkout.DialCodes(),
		},
	})
}
