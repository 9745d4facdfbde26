// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/domain/cart"
	"github.com/your-org/evermore-storefront/internal/domain/order"
	"github.com/your-org/evermore-storefront/internal/domain/payment"
	"github.com/your-org/evermore-storefront/internal/domain/pricing"
	"github.com/your-org/evermore-storefront/internal/pkg/lock"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

const (
	sessionLockTTL          = 5 * time.Second
	defaultSubmissionTTL    = time.Minute
	paymentFailedMessage    = "Payment processing failed. Please try again."
	orderNotRecordedMessage = "Your payment was received but your order could not be saved. Please try again, you will not be charged twice."
)

// EventPublisher announces placed orders
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event order.PlacedEvent) error
}

// Dependencies are the collaborators of the checkout service
type Dependencies struct {
	Carts     *cart.Manager
	Sessions  *SessionStore
	Engine    *pricing.Engine
	Validator *Validator
	Gateway   payment.Gateway
	Orders    order.Repository
	Events    EventPublisher
	// Locker guards order submission and session updates across instances.
	// An in-process locker is used when nil.
	Locker lock.Locker
}

// Service handles checkout business logic
type Service struct {
	carts         *cart.Manager
	sessions      *SessionStore
	engine        *pricing.Engine
	validator     *Validator
	gateway       payment.Gateway
	orders        order.Repository
	events        EventPublisher
	locker        lock.Locker
	retry         payment.RetryPolicy
	submissionTTL time.Duration
	currency      string
	log           *logrus.Logger
}

// NewService creates a new checkout service
func NewService(deps Dependencies, cfg *config.Config, log *logrus.Logger) *Service {
	locker := deps.Locker
	if locker == nil {
		locker = lock.NewLocal()
	}
	submissionTTL := cfg.Payment.SubmissionTTL
	if submissionTTL <= 0 {
		submissionTTL = defaultSubmissionTTL
	}
	return &Service{
		carts:     deps.Carts,
		sessions:  deps.Sessions,
		engine:    deps.Engine,
		validator: deps.Validator,
		gateway:   deps.Gateway,
		orders:    deps.Orders,
		events:    deps.Events,
		locker:    locker,
		retry: payment.RetryPolicy{
			MaxAttempts: cfg.Payment.MaxAttempts,
			Backoff:     cfg.Payment.RetryBackoff,
		},
		submissionTTL: submissionTTL,
		currency:      cfg.App.Currency,
		log:           log,
	}
}

// Summary is the checkout view of a session
type Summary struct {
	Items            []cart.LineItem   `json:"items"`
	TotalItems       int               `json:"totalItems"`
	Pricing          pricing.Breakdown `json:"pricing"`
	DiscountCode     string            `json:"discountCode,omitempty"`
	CanApplyDiscount bool              `json:"canApplyDiscount"`
	PaymentMethod    PaymentMethod     `json:"paymentMethod"`
	State            State             `json:"state"`
	IdempotencyKey   string            `json:"idempotencyKey"`
	LastError        string            `json:"lastError,omitempty"`
	LastOrderNumber  string            `json:"lastOrderNumber,omitempty"`
}

// Submission is the finalized checkout form
type Submission struct {
	Customer       Customer       `json:"customer"`
	Payment        PaymentDetails `json:"payment"`
	IdempotencyKey string         `json:"idempotencyKey"`
}

// Evaluation is the result of running the gate chain
type Evaluation struct {
	Summary     *Summary          `json:"summary"`
	Submittable bool              `json:"submittable"`
	FailedGate  string            `json:"failedGate,omitempty"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Receipt is returned by a successful order placement
type Receipt struct {
	Order    *order.Order      `json:"order"`
	Pricing  pricing.Breakdown `json:"pricing"`
	Replayed bool              `json:"replayed"`
}

// GetSummary returns the checkout view of sessionID
func (s *Service) GetSummary(ctx context.Context, sessionID string, sink notify.Sink) (*Summary, error) {
	store, sess, err := s.open(ctx, sessionID, sink)
	if err != nil {
		return nil, err
	}
	return s.summarize(store, sess), nil
}

// ApplyDiscount applies code to the session's checkout
func (s *Service) ApplyDiscount(ctx context.Context, sessionID, code string, sink notify.Sink) (*Summary, error) {
	store, err := s.carts.Open(ctx, sessionID, sink)
	if err != nil {
		return nil, err
	}

	sess, err := s.updateSession(ctx, sessionID, func(sess *Session) error {
		_, err := sess.Discount.ApplyDiscountCode(s.engine.Rules().Discounts, code, sink)
		return err
	})
	if sess == nil {
		return nil, err
	}
	return s.summarize(store, sess), err
}

// RemoveDiscount clears the applied discount
func (s *Service) RemoveDiscount(ctx context.Context, sessionID string, sink notify.Sink) (*Summary, error) {
	store, err := s.carts.Open(ctx, sessionID, sink)
	if err != nil {
		return nil, err
	}

	sess, err := s.updateSession(ctx, sessionID, func(sess *Session) error {
		sess.Discount.RemoveDiscount(sink)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.summarize(store, sess), nil
}

// SetPaymentMethod records the payment method selected for the session
func (s *Service) SetPaymentMethod(ctx context.Context, sessionID string, method PaymentMethod, sink notify.Sink) (*Summary, error) {
	if !method.Valid() {
		return nil, &ValidationError{Kind: ErrInvalidPayment, Fields: map[string]string{"method": "Payment method is required"}}
	}

	store, err := s.carts.Open(ctx, sessionID, sink)
	if err != nil {
		return nil, err
	}

	sess, err := s.updateSession(ctx, sessionID, func(sess *Session) error {
		sess.PaymentMethod = method
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.summarize(store, sess), nil
}

// Evaluate runs the gate chain against sub without placing an order
func (s *Service) Evaluate(ctx context.Context, sessionID string, sub Submission, sink notify.Sink) (*Evaluation, error) {
	store, sess, err := s.open(ctx, sessionID, sink)
	if err != nil {
		return nil, err
	}

	if sub.Payment.Method == "" {
		sub.Payment.Method = sess.PaymentMethod
	}

	summary := s.summarize(store, sess)
	eval := &Evaluation{Summary: summary}

	gateErr := s.checkGates(summary, sub)
	if gateErr == nil {
		eval.Submittable = true
		if summary.State == StateIdle {
			summary.State = StateSubmittable
		}
		return eval, nil
	}

	describeGate(eval, gateErr)
	return eval, nil
}

// CheckGates runs the gate chain in order and returns the first failure:
// ErrCartEmpty, a *MinimumOrderError, or a *ValidationError
func (s *Service) CheckGates(items []cart.LineItem, discountPercent *int, sub Submission) error {
	breakdown := s.engine.Breakdown(items, discountPercent)
	return s.checkGates(&Summary{Items: items, Pricing: breakdown}, sub)
}

func (s *Service) checkGates(summary *Summary, sub Submission) error {
	if len(summary.Items) == 0 {
		return ErrCartEmpty
	}
	if !summary.Pricing.MeetsMinimumOrder {
		return &MinimumOrderError{
			Minimum:   s.engine.Rules().MinimumOrderValue,
			Shortfall: summary.Pricing.MinimumOrderShortfall,
		}
	}
	if err := s.validator.ValidateCustomer(sub.Customer); err != nil {
		return err
	}
	return s.validator.ValidatePayment(sub.Payment)
}

func describeGate(eval *Evaluation, err error) {
	var minErr *MinimumOrderError
	var valErr *ValidationError
	switch {
	case errors.Is(err, ErrCartEmpty):
		eval.FailedGate = "cart"
		eval.Message = "Your cart is empty"
	case errors.As(err, &minErr):
		eval.FailedGate = "minimum_order"
		eval.Message = fmt.Sprintf("Minimum order value is %s", minErr.Minimum.String())
	case errors.As(err, &valErr):
		if errors.Is(err, ErrInvalidCustomer) {
			eval.FailedGate = "customer"
		} else {
			eval.FailedGate = "payment"
		}
		eval.Message = valErr.Kind.Error()
		eval.FieldErrors = valErr.Fields
	default:
		eval.FailedGate = "unknown"
		eval.Message = err.Error()
	}
}

// PlaceOrder submits the checkout. The whole gate chain must pass. A
// submission whose idempotency key already produced an order returns that
// order again without charging. Only one submission per session runs at a
// time, across every instance sharing the locker.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, sub Submission, sink notify.Sink) (*Receipt, error) {
	release, ok, err := s.locker.TryLock(ctx, s.sessions.key(sessionID)+":submit", s.submissionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to start submission: %w", err)
	}
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	defer release()

	store, sess, err := s.open(ctx, sessionID, sink)
	if err != nil {
		return nil, err
	}

	if sub.Payment.Method == "" {
		sub.Payment.Method = sess.PaymentMethod
	}

	key := sub.IdempotencyKey
	if key == "" {
		key = sess.IdempotencyKey
	}
	log := s.log.WithFields(logrus.Fields{
		"session_id":      sessionID,
		"idempotency_key": key,
	})

	if existing, err := s.orders.FindByIdempotencyKey(ctx, key); err == nil {
		log.WithField("order_number", existing.OrderNumber).Info("Replaying already placed order")
		return &Receipt{Order: existing, Pricing: pricingOf(existing), Replayed: true}, nil
	} else if !errors.Is(err, order.ErrOrderNotFound) {
		return nil, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	if err := s.checkGates(s.summarize(store, sess), sub); err != nil {
		var minErr *MinimumOrderError
		if errors.As(err, &minErr) {
			notify.Error(sink, fmt.Sprintf("Minimum order value is %s", minErr.Minimum.String()))
		}
		return nil, err
	}

	sess, err = s.updateSession(ctx, sessionID, func(sess *Session) error {
		until := time.Now().Add(s.submissionTTL).UTC()
		sess.State = StateProcessing
		sess.ProcessingUntil = &until
		sess.LastError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary := s.summarize(store, sess)
	breakdown := summary.Pricing
	items := summary.Items

	var charge *payment.Charge
	attempts := 0
	if sub.Payment.Method.CollectsOnline() {
		charge, attempts, err = payment.ChargeWithRetry(ctx, s.gateway, payment.ChargeRequest{
			IdempotencyKey: key,
			Amount:         breakdown.Total,
			Currency:       s.currency,
			Method:         string(sub.Payment.Method),
			Email:          sub.Customer.Email,
		}, s.retry)
		if err != nil {
			log.WithError(err).WithField("attempts", attempts).Warn("Payment failed")
			return nil, s.fail(ctx, sessionID, sink, paymentFailedMessage, fmt.Errorf("%w: %w", ErrPaymentFailed, err))
		}
	}

	placed := s.buildOrder(sessionID, key, sub, items, sess, breakdown, charge, attempts)
	if err := s.orders.Create(ctx, placed); err != nil {
		if errors.Is(err, order.ErrDuplicateOrder) {
			if existing, findErr := s.orders.FindByIdempotencyKey(ctx, key); findErr == nil {
				return &Receipt{Order: existing, Pricing: pricingOf(existing), Replayed: true}, nil
			}
		}
		log.WithError(err).WithField("charged", charge != nil).Error("Failed to record order")
		return nil, s.fail(ctx, sessionID, sink, orderNotRecordedMessage, fmt.Errorf("%w: %w", ErrOrderNotRecorded, err))
	}
	log = log.WithField("order_number", placed.OrderNumber)

	if s.events != nil {
		if err := s.events.PublishOrderPlaced(ctx, order.NewPlacedEvent(placed)); err != nil {
			log.WithError(err).Warn("Failed to publish order placed event")
		}
	}

	if err := store.Deduct(ctx, items); err != nil {
		log.WithError(err).Warn("Failed to remove ordered items from cart")
	}

	if _, err := s.updateSession(ctx, sessionID, func(sess *Session) error {
		sess.Discount = pricing.DiscountSession{}
		sess.State = StateConfirmed
		sess.ProcessingUntil = nil
		sess.LastError = ""
		sess.LastOrderNumber = placed.OrderNumber
		sess.IdempotencyKey = uuid.NewString()
		return nil
	}); err != nil {
		log.WithError(err).Warn("Failed to save checkout session after order")
	}

	notify.Success(sink, "Order placed successfully!")
	log.WithField("total", breakdown.Total.String()).Info("Order placed")

	return &Receipt{Order: placed, Pricing: breakdown}, nil
}

// fail returns the session to idle with err recorded. The cart and the
// idempotency key are kept so a retry reuses any charge already made.
func (s *Service) fail(ctx context.Context, sessionID string, sink notify.Sink, message string, err error) error {
	if _, saveErr := s.updateSession(ctx, sessionID, func(sess *Session) error {
		sess.State = StateIdle
		sess.ProcessingUntil = nil
		sess.LastError = err.Error()
		return nil
	}); saveErr != nil {
		s.log.WithError(saveErr).WithField("session_id", sessionID).Warn("Failed to record checkout failure")
	}
	notify.Error(sink, message)
	return err
}

// updateSession loads, changes and saves the session under its lock. When
// change fails nothing is saved, and the loaded session is returned with
// the error.
func (s *Service) updateSession(ctx context.Context, sessionID string, change func(*Session) error) (*Session, error) {
	release, err := lock.Acquire(ctx, s.locker, s.sessions.key(sessionID)+":lock", sessionLockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock checkout session: %w", err)
	}
	defer release()

	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := change(sess); err != nil {
		return sess, err
	}
	if err := s.sessions.Save(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) buildOrder(sessionID, key string, sub Submission, items []cart.LineItem, sess *Session, breakdown pricing.Breakdown, charge *payment.Charge, attempts int) *order.Order {
	now := time.Now().UTC()
	o := &order.Order{
		OrderNumber:     order.GenerateOrderNumber(now, uuid.New()),
		IdempotencyKey:  key,
		SessionID:       sessionID,
		Email:           sub.Customer.Email,
		Status:          order.OrderStatusConfirmed,
		PaymentStatus:   order.PaymentStatusPending,
		PaymentMethod:   string(sub.Payment.Method),
		SubtotalAmount:  breakdown.Subtotal,
		TaxAmount:       breakdown.TaxAmount,
		ShippingAmount:  breakdown.ShippingCost,
		DiscountAmount:  breakdown.DiscountAmount,
		TotalAmount:     breakdown.Total,
		DiscountCode:    sess.Discount.Code,
		DiscountPercent: breakdown.DiscountPercent,
		Currency:        s.currency,
		ShippingAddress: order.Address{
			FullName:   sub.Customer.FullName,
			Phone:      sub.Customer.CountryCode + " " + sub.Customer.Phone,
			Address:    sub.Customer.Address,
			City:       sub.Customer.City,
			State:      sub.Customer.State,
			PostalCode: sub.Customer.PostalCode,
			Country:    sub.Customer.Country,
		},
		CreatedAt: now,
	}

	for _, item := range items {
		image := ""
		if len(item.Product.Images) > 0 {
			image = item.Product.Images[0]
		}
		o.Items = append(o.Items, order.OrderItem{
			ProductID:     item.Product.ID,
			Name:          item.Product.Name,
			Image:         image,
			SelectedColor: item.SelectedColor,
			SelectedSize:  item.SelectedSize,
			Quantity:      item.Quantity,
			Price:         item.Product.Price,
			TotalPrice:    item.LineTotal(),
		})
	}

	if charge != nil {
		o.PaymentStatus = order.PaymentStatusPaid
		processed := charge.ProcessedAt
		o.Payments = append(o.Payments, order.Payment{
			PaymentMethod:     string(sub.Payment.Method),
			PaymentProviderID: charge.ID,
			Amount:            charge.Amount,
			Currency:          s.currency,
			Status:            order.PaymentStatusPaid,
			Gateway:           charge.Gateway,
			Attempts:          attempts,
			ProcessedAt:       &processed,
		})
	}

	o.AddStatusHistory(order.OrderStatusConfirmed, "Order placed")
	return o
}

func pricingOf(o *order.Order) pricing.Breakdown {
	return pricing.Breakdown{
		Subtotal:          o.SubtotalAmount,
		IsShippingFree:    o.ShippingAmount.IsZero(),
		ShippingCost:      o.ShippingAmount,
		TaxAmount:         o.TaxAmount,
		DiscountPercent:   o.DiscountPercent,
		DiscountAmount:    o.DiscountAmount,
		Total:             o.TotalAmount,
		MeetsMinimumOrder: true,
	}
}

func (s *Service) open(ctx context.Context, sessionID string, sink notify.Sink) (*cart.Store, *Session, error) {
	store, err := s.carts.Open(ctx, sessionID, sink)
	if err != nil {
		return nil, nil, err
	}
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	return store, sess, nil
}

func (s *Service) summarize(store *cart.Store, sess *Session) *Summary {
	items := store.Items()
	breakdown := s.engine.Breakdown(items, sess.Discount.Percent)

	state := StateIdle
	switch {
	case sess.State == StateProcessing:
		state = StateProcessing
	case sess.State == StateConfirmed && len(items) == 0:
		state = StateConfirmed
	}

	return &Summary{
		Items:            items,
		TotalItems:       store.TotalItems(),
		Pricing:          breakdown,
		DiscountCode:     sess.Discount.Code,
		CanApplyDiscount: !sess.Discount.Applied(),
		PaymentMethod:    sess.PaymentMethod,
		State:            state,
		IdempotencyKey:   sess.IdempotencyKey,
		LastError:        sess.LastError,
		LastOrderNumber:  sess.LastOrderNumber,
	}
}
