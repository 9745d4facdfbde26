// internal/domain/checkout/session.go
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/domain/pricing"
)

// State is where a checkout stands in the submission flow
type State string

const (
	StateIdle        State = "idle"
	StateSubmittable State = "submittable"
	StateProcessing  State = "processing"
	StateConfirmed   State = "confirmed"
)

// Session is the per-shopper checkout state kept between requests
type Session struct {
	Discount        pricing.DiscountSession `json:"discount"`
	PaymentMethod   PaymentMethod           `json:"paymentMethod"`
	IdempotencyKey  string                  `json:"idempotencyKey"`
	State           State                   `json:"state"`
	LastError       string                  `json:"lastError,omitempty"`
	LastOrderNumber string                  `json:"lastOrderNumber,omitempty"`
	ProcessingUntil *time.Time              `json:"processingUntil,omitempty"`
}

// NewSession returns an idle session with a fresh idempotency key
func NewSession() *Session {
	return &Session{
		PaymentMethod:  MethodCreditCard,
		IdempotencyKey: uuid.NewString(),
		State:          StateIdle,
	}
}

// Storage is the key/value store sessions are kept in
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// SessionStore loads and saves checkout sessions
type SessionStore struct {
	storage   Storage
	namespace string
	log       *logrus.Logger
}

// NewSessionStore creates a session store keyed under namespace
func NewSessionStore(storage Storage, namespace string, log *logrus.Logger) *SessionStore {
	return &SessionStore{
		storage:   storage,
		namespace: namespace,
		log:       log,
	}
}

func (s *SessionStore) key(sessionID string) string {
	return s.namespace + ":" + sessionID
}

// Load returns the session for sessionID, or a new one when none is stored
// or the stored value is unreadable. A processing state whose submission
// window has passed comes back idle.
func (s *SessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	data, err := s.storage.Load(ctx, s.key(sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session: %w", err)
	}
	if len(data) == 0 {
		return NewSession(), nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("Discarding unreadable checkout session")
		return NewSession(), nil
	}
	if sess.IdempotencyKey == "" {
		sess.IdempotencyKey = uuid.NewString()
	}
	if !sess.PaymentMethod.Valid() {
		sess.PaymentMethod = MethodCreditCard
	}
	switch sess.State {
	case StateProcessing:
		if sess.ProcessingUntil == nil || time.Now().After(*sess.ProcessingUntil) {
			sess.State = StateIdle
			sess.ProcessingUntil = nil
		}
	case "", StateSubmittable:
		sess.State = StateIdle
	}
	return &sess, nil
}

// Save writes sess under sessionID
func (s *SessionStore) Save(ctx context.Context, sessionID string, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode checkout session: %w", err)
	}
	if err := s.storage.Save(ctx, s.key(sessionID), data); err != nil {
		return fmt.Errorf("failed to save checkout session: %w", err)
	}
	return nil
}
