package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
	"github.com/your-org/evermore-storefront/internal/domain/checkout"
	"github.com/your-org/evermore-storefront/internal/domain/payment"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"out of stock", catalog.ErrOutOfStock, http.StatusConflict},
		{"submission in progress", checkout.ErrSubmissionInProgress, http.StatusConflict},
		{"payment failed", fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, payment.ErrPaymentDeclined), http.StatusPaymentRequired},
		{"order not recorded", fmt.Errorf("%w: %w", checkout.ErrOrderNotRecorded, errors.New("db down")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestMessageFor(t *testing.T) {
	notRecorded := fmt.Errorf("%w: %w", checkout.ErrOrderNotRecorded, errors.New("db down"))
	msg := messageFor(notRecorded, statusFor(notRecorded))
	assert.Contains(t, msg, "not be charged twice")
	assert.NotContains(t, msg, "db down")

	failed := fmt.Errorf("%w: %w", checkout.ErrPaymentFailed, payment.ErrPaymentDeclined)
	assert.Equal(t, "Payment processing failed. Please try again.", messageFor(failed, statusFor(failed)))

	boom := errors.New("boom")
	assert.Equal(t, "Internal server error", messageFor(boom, statusFor(boom)))
}
