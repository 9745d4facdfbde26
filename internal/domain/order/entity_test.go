package order

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenerateOrderNumber(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	id := uuid.MustParse("3f2a9c1e-7b4d-4e2a-9f10-1234567890ab")

	assert.Equal(t, "ORD-20240309-3F2A9C1E", GenerateOrderNumber(at, id))

	n := GenerateOrderNumber(time.Now(), uuid.New())
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{8}-[0-9A-F]{8}$`), n)
}

func TestOrder_Helpers(t *testing.T) {
	o := Order{
		Status:        OrderStatusConfirmed,
		PaymentStatus: PaymentStatusPaid,
		Items: []OrderItem{
			{ProductID: "m1", Quantity: 2},
			{ProductID: "w3", Quantity: 1},
		},
	}

	assert.Equal(t, 3, o.ItemCount())
	assert.True(t, o.IsPaid())
	assert.True(t, o.CanBeCancelled())

	o.Status = OrderStatusShipped
	assert.False(t, o.CanBeCancelled())

	o.AddStatusHistory(OrderStatusShipped, "Handed to carrier")
	assert.Len(t, o.StatusHistory, 1)
	assert.Equal(t, OrderStatusShipped, o.StatusHistory[0].Status)
}
