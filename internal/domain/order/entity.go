// internal/domain/order/entity.go
package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PaymentStatus represents payment status
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Order is a placed order as kept in order history
type Order struct {
	ID             uint          `gorm:"primaryKey" json:"-"`
	OrderNumber    string        `gorm:"uniqueIndex;not null;size:50" json:"orderNumber"`
	IdempotencyKey string        `gorm:"uniqueIndex;not null;size:64" json:"-"`
	SessionID      string        `gorm:"index;size:64" json:"-"`
	Email          string        `gorm:"index;not null;size:255" json:"email"`
	Status         OrderStatus   `gorm:"not null;default:'pending'" json:"status"`
	PaymentStatus  PaymentStatus `gorm:"not null;default:'pending'" json:"paymentStatus"`
	PaymentMethod  string        `gorm:"not null;size:50" json:"paymentMethod"`

	// Financial Information
	SubtotalAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"tax"`
	ShippingAmount  decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"shipping"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2);default:0" json:"discount"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	DiscountCode    string          `gorm:"size:50" json:"discountCode,omitempty"`
	DiscountPercent *int            `json:"discountPercent"`
	Currency        string          `gorm:"size:3;default:'MAD'" json:"currency"`

	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"customer"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Payments      []Payment            `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"payments,omitempty"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"statusHistory,omitempty"`
}

// OrderItem is a snapshot of one cart line at the time of purchase
type OrderItem struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	OrderID       uint            `gorm:"not null;index" json:"-"`
	ProductID     string          `gorm:"not null;index;size:64" json:"productId"`
	Name          string          `gorm:"not null;size:255" json:"name"`
	Image         string          `gorm:"size:512" json:"image,omitempty"`
	SelectedColor string          `gorm:"size:50" json:"selectedColor,omitempty"`
	SelectedSize  string          `gorm:"size:50" json:"selectedSize,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalPrice"`
	CreatedAt     time.Time       `json:"-"`
}

// Payment represents one settled payment transaction
type Payment struct {
	ID                uint            `gorm:"primaryKey" json:"-"`
	OrderID           uint            `gorm:"not null;index" json:"-"`
	PaymentMethod     string          `gorm:"not null;size:50" json:"paymentMethod"`
	PaymentProviderID string          `gorm:"size:255" json:"reference"`
	Amount            decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency          string          `gorm:"size:3;default:'MAD'" json:"currency"`
	Status            PaymentStatus   `gorm:"not null" json:"status"`
	Gateway           string          `gorm:"size:50" json:"gateway"`
	Attempts          int             `gorm:"not null;default:1" json:"attempts"`
	ProcessedAt       *time.Time      `json:"processedAt"`
	CreatedAt         time.Time       `json:"-"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey" json:"-"`
	OrderID   uint        `gorm:"not null;index" json:"-"`
	Status    OrderStatus `gorm:"not null" json:"status"`
	Comment   string      `gorm:"type:text" json:"comment"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Address is the customer contact and shipping address (embedded in Order)
type Address struct {
	FullName   string `gorm:"size:255" json:"fullName"`
	Phone      string `gorm:"size:32" json:"phone"`
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`
	PostalCode string `gorm:"size:20" json:"postalCode"`
	Country    string `gorm:"size:32" json:"country"`
}

// TableName overrides
func (Order) TableName() string              { return "orders" }
func (OrderItem) TableName() string          { return "order_items" }
func (Payment) TableName() string            { return "payments" }
func (OrderStatusHistory) TableName() string { return "order_status_history" }

// GenerateOrderNumber returns an order number of the form ORD-YYYYMMDD-XXXXXXXX
func GenerateOrderNumber(at time.Time, id uuid.UUID) string {
	suffix := strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", at.UTC().Format("20060102"), suffix)
}

// ItemCount returns the number of units across all items
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// IsPaid reports whether payment has been collected
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// AddStatusHistory adds a new status change to history
func (o *Order) AddStatusHistory(status OrderStatus, comment string) {
	o.StatusHistory = append(o.StatusHistory, OrderStatusHistory{
		OrderID:   o.ID,
		Status:    status,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	})
}
