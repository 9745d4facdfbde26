// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"gorm.io/gorm"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order already exists")
)

// Repository persists order history
type Repository interface {
	Create(ctx context.Context, order *Order) error
	FindByNumber(ctx context.Context, orderNumber string) (*Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*Order, error)
	ListByEmail(ctx context.Context, email string, offset, limit int) ([]Order, int64, error)
}

// GormRepository stores orders in PostgreSQL
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new gorm-backed order repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Create writes the order with its items, payments and status history in one transaction
func (r *GormRepository) Create(ctx context.Context, order *Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Order{}).Where("idempotency_key = ?", order.IdempotencyKey).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateOrder
		}
		return tx.Create(order).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateOrder) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// FindByNumber retrieves a single order by order number
func (r *GormRepository) FindByNumber(ctx context.Context, orderNumber string) (*Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

// FindByIdempotencyKey retrieves the order placed with key
func (r *GormRepository) FindByIdempotencyKey(ctx context.Context, key string) (*Order, error) {
	return r.findOne(ctx, "idempotency_key = ?", key)
}

func (r *GormRepository) findOne(ctx context.Context, query string, arg any) (*Order, error) {
	var order Order
	result := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where(query, arg).
		First(&order)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}

	return &order, nil
}

// ListByEmail returns a page of orders placed with email, newest first
func (r *GormRepository) ListByEmail(ctx context.Context, email string, offset, limit int) ([]Order, int64, error) {
	var orders []Order
	var total int64

	query := r.db.WithContext(ctx).Model(&Order{}).Where("email = ?", email)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if err := query.Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	return orders, total, nil
}

// MemoryRepository keeps orders in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID uint
	orders []Order
}

// NewMemoryRepository creates an empty in-memory order repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Create stores a copy of order
func (r *MemoryRepository) Create(_ context.Context, order *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.IdempotencyKey == order.IdempotencyKey || o.OrderNumber == order.OrderNumber {
			return ErrDuplicateOrder
		}
	}

	r.nextID++
	order.ID = r.nextID
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	for i := range order.Payments {
		order.Payments[i].OrderID = order.ID
	}
	for i := range order.StatusHistory {
		order.StatusHistory[i].OrderID = order.ID
	}
	r.orders = append(r.orders, clone(*order))
	return nil
}

// FindByNumber retrieves a single order by order number
func (r *MemoryRepository) FindByNumber(_ context.Context, orderNumber string) (*Order, error) {
	return r.find(func(o Order) bool { return o.OrderNumber == orderNumber })
}

// FindByIdempotencyKey retrieves the order placed with key
func (r *MemoryRepository) FindByIdempotencyKey(_ context.Context, key string) (*Order, error) {
	return r.find(func(o Order) bool { return o.IdempotencyKey == key })
}

func (r *MemoryRepository) find(match func(Order) bool) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if match(o) {
			found := clone(o)
			return &found, nil
		}
	}
	return nil, ErrOrderNotFound
}

// ListByEmail returns a page of orders placed with email, newest first
func (r *MemoryRepository) ListByEmail(_ context.Context, email string, offset, limit int) ([]Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Order
	for _, o := range r.orders {
		if o.Email == email {
			matched = append(matched, clone(o))
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []Order{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func clone(o Order) Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	o.Payments = append([]Payment(nil), o.Payments...)
	o.StatusHistory = append([]OrderStatusHistory(nil), o.StatusHistory...)
	return o
}
