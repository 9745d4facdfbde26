// internal/domain/order/event.go
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlacedEventType is the routing key of PlacedEvent
const PlacedEventType = "order.placed"

// PlacedEvent announces a confirmed order to downstream consumers
type PlacedEvent struct {
	OrderNumber   string          `json:"orderNumber"`
	Email         string          `json:"email"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	ItemCount     int             `json:"itemCount"`
	PaymentMethod string          `json:"paymentMethod"`
	PlacedAt      time.Time       `json:"placedAt"`
}

// NewPlacedEvent builds the event for o
func NewPlacedEvent(o *Order) PlacedEvent {
	return PlacedEvent{
		OrderNumber:   o.OrderNumber,
		Email:         o.Email,
		Total:         o.TotalAmount,
		Currency:      o.Currency,
		ItemCount:     o.ItemCount(),
		PaymentMethod: o.PaymentMethod,
		PlacedAt:      o.CreatedAt,
	}
}
