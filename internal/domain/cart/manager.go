// internal/domain/cart/manager.go
package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/pkg/lock"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

const defaultLockTTL = 5 * time.Second

// Manager opens per-session cart stores under one storage namespace.
// Stores it opens for the same session serialize their mutations through
// the locker.
type Manager struct {
	storage   Storage
	locker    lock.Locker
	namespace string
	lockTTL   time.Duration
	log       *logrus.Logger
}

// NewManager creates a cart manager. cfg.StorageKey prefixes every session key.
func NewManager(storage Storage, locker lock.Locker, cfg config.CartConfig, log *logrus.Logger) *Manager {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Manager{
		storage:   storage,
		locker:    locker,
		namespace: cfg.StorageKey,
		lockTTL:   ttl,
		log:       log,
	}
}

// Key returns the storage key of a session's cart
func (m *Manager) Key(sessionID string) string {
	return fmt.Sprintf("%s:%s", m.namespace, sessionID)
}

// Open rehydrates the cart of sessionID, sending its notifications to sink
func (m *Manager) Open(ctx context.Context, sessionID string, sink notify.Sink) (*Store, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID required for cart")
	}
	entry := m.log.WithField("session_id", sessionID)
	store, err := Open(ctx, m.storage, m.Key(sessionID), notify.Multi{sink, notify.NewLogSink(entry)}, entry)
	if err != nil {
		return nil, err
	}
	store.locker = m.locker
	store.lockTTL = m.lockTTL
	return store, nil
}
