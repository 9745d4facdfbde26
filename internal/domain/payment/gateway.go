// internal/domain/payment/gateway.go
package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/config"
)

var (
	// ErrPaymentDeclined is a final refusal; retrying will not help
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrGatewayUnavailable is a transient failure that may succeed on retry
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
)

// ChargeRequest describes one payment to collect
type ChargeRequest struct {
	IdempotencyKey string
	Amount         decimal.Decimal
	Currency       string
	Method         string
	Email          string
}

// Charge is a settled payment
type Charge struct {
	ID          string
	Gateway     string
	Amount      decimal.Decimal
	Currency    string
	ProcessedAt time.Time
}

// Gateway collects payments
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// SimulatedGateway stands in for a real payment processor. It waits a fixed
// delay and then settles, or fails at the configured rate.
type SimulatedGateway struct {
	delay       time.Duration
	failureRate float64
	log         *logrus.Logger

	mu      sync.Mutex
	roll    func() float64
	charges map[string]*Charge
}

// NewSimulatedGateway creates a simulated gateway from payment configuration
func NewSimulatedGateway(cfg config.PaymentConfig, log *logrus.Logger) *SimulatedGateway {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &SimulatedGateway{
		delay:       cfg.ProcessingDelay,
		failureRate: cfg.FailureRate,
		log:         log,
		roll:        rng.Float64,
		charges:     make(map[string]*Charge),
	}
}

// WithRoll replaces the random source used to decide failures
func (g *SimulatedGateway) WithRoll(roll func() float64) *SimulatedGateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roll = roll
	return g
}

// Charge settles req after the processing delay. A repeated idempotency key
// returns the charge already made for it.
func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	g.mu.Lock()
	if existing, ok := g.charges[req.IdempotencyKey]; ok {
		g.mu.Unlock()
		return existing, nil
	}
	g.mu.Unlock()

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.failureRate > 0 && g.roll() < g.failureRate {
		entry := g.log.WithFields(logrus.Fields{
			"idempotency_key": req.IdempotencyKey,
			"method":          req.Method,
		})
		if g.roll() < 0.5 {
			entry.Info("Simulated payment declined")
			return nil, ErrPaymentDeclined
		}
		entry.Info("Simulated payment gateway unavailable")
		return nil, ErrGatewayUnavailable
	}

	charge := &Charge{
		ID:          "sim_" + uuid.NewString(),
		Gateway:     "simulated",
		Amount:      req.Amount,
		Currency:    req.Currency,
		ProcessedAt: time.Now().UTC(),
	}
	g.charges[req.IdempotencyKey] = charge
	return charge, nil
}
