// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
	"github.com/your-org/evermore-storefront/internal/pkg/lock"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidVariant  = errors.New("variant is not offered for this product")
)

// Storage is the durable key/value store a cart is persisted to
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Store owns one shopper's cart. It is the only thing allowed to mutate it;
// every mutation writes the full item list back to storage before returning.
// With a locker, each mutation reloads the stored list under the session lock
// so stores opened by concurrent requests never overwrite each other.
type Store struct {
	mu      sync.Mutex
	key     string
	items   []LineItem
	storage Storage
	locker  lock.Locker
	lockTTL time.Duration
	sink    notify.Sink
	log     *logrus.Entry
}

// Open rehydrates the cart stored under key. Unreadable data yields an
// empty cart; only storage failures are returned.
func Open(ctx context.Context, storage Storage, key string, sink notify.Sink, log *logrus.Entry) (*Store, error) {
	s := &Store{
		key:     key,
		items:   []LineItem{},
		storage: storage,
		sink:    sink,
		log:     log.WithField("cart_key", key),
	}

	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	s.items = items

	return s, nil
}

func (s *Store) load(ctx context.Context) ([]LineItem, error) {
	data, err := s.storage.Load(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(data) == 0 {
		return []LineItem{}, nil
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.WithError(err).Warn("Discarding unreadable stored cart")
		return []LineItem{}, nil
	}
	return sanitize(items), nil
}

// sanitize drops lines that break the cart invariants, keeping the first
// line seen for each product id
func sanitize(items []LineItem) []LineItem {
	seen := make(map[string]bool, len(items))
	clean := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.Product.ID == "" || item.Quantity < 1 || seen[item.Product.ID] {
			continue
		}
		seen[item.Product.ID] = true
		clean = append(clean, item)
	}
	return clean
}

// mutate applies change to a copy of the current lines and keeps the result
// only once it is saved. change reports false when there is nothing to save.
func (s *Store) mutate(ctx context.Context, change func(items []LineItem) ([]LineItem, bool)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.items
	if s.locker != nil {
		release, err := lock.Acquire(ctx, s.locker, s.key+":lock", s.lockTTL)
		if err != nil {
			return false, fmt.Errorf("failed to lock cart: %w", err)
		}
		defer release()

		if current, err = s.load(ctx); err != nil {
			return false, err
		}
		s.items = current
	}

	next, changed := change(clone(current))
	if !changed {
		return false, nil
	}
	if err := s.persist(ctx, next); err != nil {
		return false, err
	}
	s.items = next
	return true, nil
}

// AddItem adds quantity units of product. If the product is already in the
// cart its quantity is increased and its selected variant kept; otherwise a
// new line is appended, defaulting color and size to the first declared ones.
// Stock is not checked here.
func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int, variant Variant) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if variant.Color != "" && !product.HasColor(variant.Color) {
		return fmt.Errorf("%w: color %q", ErrInvalidVariant, variant.Color)
	}
	if variant.Size != "" && !product.HasSize(variant.Size) {
		return fmt.Errorf("%w: size %q", ErrInvalidVariant, variant.Size)
	}

	merged := false
	_, err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		if i := indexOf(items, product.ID); i >= 0 {
			items[i].Quantity += quantity
			merged = true
			return items, true
		}

		item := LineItem{
			Product:       product,
			Quantity:      quantity,
			SelectedColor: variant.Color,
			SelectedSize:  variant.Size,
		}
		if item.SelectedColor == "" {
			item.SelectedColor = product.DefaultColor()
		}
		if item.SelectedSize == "" {
			item.SelectedSize = product.DefaultSize()
		}
		return append(items, item), true
	})
	if err != nil {
		return err
	}

	if merged {
		notify.Success(s.sink, fmt.Sprintf("Updated quantity for %s", product.Name))
	} else {
		notify.Success(s.sink, fmt.Sprintf("Added %s to cart", product.Name))
	}
	return nil
}

// RemoveItem removes the line for productID. Unknown ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	var removed LineItem
	changed, err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		removed = items[i]
		return append(items[:i:i], items[i+1:]...), true
	})
	if err != nil || !changed {
		return err
	}
	notify.Info(s.sink, fmt.Sprintf("Removed %s from cart", removed.Product.Name))
	return nil
}

// UpdateItemQuantity sets the quantity of productID's line to exactly
// quantity. A quantity of zero or less removes the line.
func (s *Store) UpdateItemQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	_, err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, productID)
		if i < 0 {
			return items, false
		}
		items[i].Quantity = quantity
		return items, true
	})
	return err
}

// ClearCart removes every line
func (s *Store) ClearCart(ctx context.Context) error {
	if _, err := s.mutate(ctx, func([]LineItem) ([]LineItem, bool) {
		return []LineItem{}, true
	}); err != nil {
		return err
	}
	notify.Info(s.sink, "Cart has been cleared")
	return nil
}

// Deduct takes the ordered lines out of the cart: each ordered quantity is
// subtracted from the current line of that product, and lines that reach zero
// are removed. Lines added since the order snapshot are kept.
func (s *Store) Deduct(ctx context.Context, ordered []LineItem) error {
	empty := false
	_, err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		for _, o := range ordered {
			i := indexOf(items, o.Product.ID)
			if i < 0 {
				continue
			}
			items[i].Quantity -= o.Quantity
			if items[i].Quantity < 1 {
				items = append(items[:i:i], items[i+1:]...)
			}
		}
		empty = len(items) == 0
		return items, true
	})
	if err != nil {
		return err
	}
	if empty {
		notify.Info(s.sink, "Cart has been cleared")
	}
	return nil
}

// Items returns a copy of the cart lines in insertion order
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// IsEmpty reports whether the cart has no lines
func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// TotalItems returns the sum of all line quantities
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// TotalPrice returns the sum of price * quantity over all lines
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Subtotal(s.items)
}

// IsInCart reports whether productID has a line in the cart
func (s *Store) IsInCart(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.items, productID) >= 0
}

// QuantityInCart returns the quantity for productID, or 0 when absent
func (s *Store) QuantityInCart(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, productID); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Subtotal sums price * quantity over items
func Subtotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func indexOf(items []LineItem, productID string) int {
	for i, item := range items {
		if item.Product.ID == productID {
			return i
		}
	}
	return -1
}

func clone(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func (s *Store) persist(ctx context.Context, items []LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		s.log.WithError(err).Error("Failed to persist cart")
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
