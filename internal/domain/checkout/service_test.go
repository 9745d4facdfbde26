package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/domain/cart"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
	"github.com/your-org/evermore-storefront/internal/domain/order"
	"github.com/your-org/evermore-storefront/internal/domain/payment"
	"github.com/your-org/evermore-storefront/internal/domain/pricing"
	"github.com/your-org/evermore-storefront/internal/pkg/kvstore"
	"github.com/your-org/evermore-storefront/internal/pkg/lock"
	"github.com/your-org/evermore-storefront/internal/pkg/logger"
	"github.com/your-org/evermore-storefront/internal/pkg/notify"
)

const sessionID = "session-1"

type fakeGateway struct {
	mu      sync.Mutex
	errs    []error
	calls   int
	keys    []string
	block   chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) Charge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.keys = append(g.keys, req.IdempotencyKey)
	g.mu.Unlock()

	if g.entered != nil {
		g.entered <- struct{}{}
	}
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if call <= len(g.errs) && g.errs[call-1] != nil {
		return nil, g.errs[call-1]
	}
	return &payment.Charge{ID: "ch_" + req.IdempotencyKey, Gateway: "fake", Amount: req.Amount, Currency: req.Currency, ProcessedAt: time.Now()}, nil
}

func (g *fakeGateway) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func (g *fakeGateway) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.keys...)
}

// flakyOrders fails the next Create calls with createErrs
type flakyOrders struct {
	*order.MemoryRepository
	createErrs []error
}

func (r *flakyOrders) Create(ctx context.Context, o *order.Order) error {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return err
	}
	return r.MemoryRepository.Create(ctx, o)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []order.PlacedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, event order.PlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

type fixture struct {
	svc     *Service
	carts   *cart.Manager
	orders  *order.MemoryRepository
	flaky   *flakyOrders
	events  *recordingPublisher
	gw      *fakeGateway
	storage *kvstore.Memory
	locker  *lock.Local
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	storage := kvstore.NewMemory()
	locker := lock.NewLocal()
	orders := order.NewMemoryRepository()

	f := &fixture{
		carts:   cart.NewManager(storage, locker, config.CartConfig{StorageKey: "evermoreCart"}, log),
		orders:  orders,
		flaky:   &flakyOrders{MemoryRepository: orders},
		events:  &recordingPublisher{},
		gw:      &fakeGateway{},
		storage: storage,
		locker:  locker,
	}
	f.svc = f.newService()
	return f
}

// newService builds another service over the same storage, locker and
// collaborators, the way a second API instance would see them.
func (f *fixture) newService() *Service {
	log := logger.Discard()
	cfg := &config.Config{
		App:     config.AppConfig{Currency: "MAD"},
		Payment: config.PaymentConfig{MaxAttempts: 3},
	}
	return NewService(Dependencies{
		Carts:     f.carts,
		Sessions:  NewSessionStore(f.storage, "evermoreCheckout", log),
		Engine:    pricing.NewEngine(pricing.DefaultRules()),
		Validator: NewValidator(),
		Gateway:   f.gw,
		Orders:    f.flaky,
		Events:    f.events,
		Locker:    f.locker,
	}, cfg, log)
}

func (f *fixture) add(t *testing.T, id, price string, qty int) {
	t.Helper()
	store, err := f.carts.Open(context.Background(), sessionID, notify.Discard)
	require.NoError(t, err)
	p := catalog.Product{ID: id, Name: "Product " + id, Price: decimal.RequireFromString(price), Stock: 10}
	require.NoError(t, store.AddItem(context.Background(), p, qty, cart.Variant{}))
}

func (f *fixture) cartItems(t *testing.T) []cart.LineItem {
	t.Helper()
	store, err := f.carts.Open(context.Background(), sessionID, notify.Discard)
	require.NoError(t, err)
	return store.Items()
}

func submission() Submission {
	return Submission{Customer: validCustomer(), Payment: validCard()}
}

func TestService_GateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart comes first", func(t *testing.T) {
		f := newFixture(t)
		eval, err := f.svc.Evaluate(ctx, sessionID, Submission{}, notify.Discard)
		require.NoError(t, err)
		assert.False(t, eval.Submittable)
		assert.Equal(t, "cart", eval.FailedGate)
	})

	t.Run("minimum order before form", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "a", "100", 2)
		f.add(t, "b", "48", 1)

		eval, err := f.svc.Evaluate(ctx, sessionID, Submission{}, notify.Discard)
		require.NoError(t, err)
		assert.Equal(t, "minimum_order", eval.FailedGate)
		assert.Equal(t, "Minimum order value is 249", eval.Message)
		assert.True(t, decimal.NewFromInt(1).Equal(eval.Summary.Pricing.MinimumOrderShortfall))
	})

	t.Run("customer before payment", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "a", "100", 2)
		f.add(t, "b", "50", 1)

		sub := submission()
		sub.Customer.Email = "nope"
		sub.Payment.CardCVC = ""
		eval, err := f.svc.Evaluate(ctx, sessionID, sub, notify.Discard)
		require.NoError(t, err)
		assert.Equal(t, "customer", eval.FailedGate)
		assert.Contains(t, eval.FieldErrors, "email")
		assert.NotContains(t, eval.FieldErrors, "cardCvc")
	})

	t.Run("payment gate", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "a", "300", 1)

		sub := submission()
		sub.Payment.CardExpiry = "00/30"
		eval, err := f.svc.Evaluate(ctx, sessionID, sub, notify.Discard)
		require.NoError(t, err)
		assert.Equal(t, "payment", eval.FailedGate)
		assert.Contains(t, eval.FieldErrors, "cardExpiry")
	})

	t.Run("all gates pass", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "a", "300", 1)

		eval, err := f.svc.Evaluate(ctx, sessionID, submission(), notify.Discard)
		require.NoError(t, err)
		assert.True(t, eval.Submittable)
		assert.Equal(t, StateSubmittable, eval.Summary.State)
	})

	t.Run("payment method falls back to session selection", func(t *testing.T) {
		f := newFixture(t)
		f.add(t, "a", "300", 1)
		_, err := f.svc.SetPaymentMethod(ctx, sessionID, MethodPayPal, notify.Discard)
		require.NoError(t, err)

		sub := submission()
		sub.Payment = PaymentDetails{}
		eval, err := f.svc.Evaluate(ctx, sessionID, sub, notify.Discard)
		require.NoError(t, err)
		assert.True(t, eval.Submittable)
	})
}

func TestService_CheckGatesErrors(t *testing.T) {
	f := newFixture(t)
	items := []cart.LineItem{{Product: catalog.Product{ID: "a", Price: decimal.NewFromInt(100)}, Quantity: 1}}

	assert.ErrorIs(t, f.svc.CheckGates(nil, nil, submission()), ErrCartEmpty)

	err := f.svc.CheckGates(items, nil, submission())
	var minErr *MinimumOrderError
	require.True(t, errors.As(err, &minErr))
	assert.ErrorIs(t, err, ErrBelowMinimumOrder)
	assert.True(t, decimal.NewFromInt(149).Equal(minErr.Shortfall))
}

func TestService_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "a", "100", 2)
	f.add(t, "b", "50", 1)

	before, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)

	rec := notify.NewRecorder()
	receipt, err := f.svc.PlaceOrder(ctx, sessionID, submission(), rec)
	require.NoError(t, err)

	assert.False(t, receipt.Replayed)
	assert.True(t, decimal.NewFromInt(300).Equal(receipt.Pricing.Total))
	assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, receipt.Order.OrderNumber)
	assert.Equal(t, before.IdempotencyKey, receipt.Order.IdempotencyKey)
	assert.Equal(t, order.PaymentStatusPaid, receipt.Order.PaymentStatus)
	require.Len(t, receipt.Order.Payments, 1)
	assert.Equal(t, 1, receipt.Order.Payments[0].Attempts)
	assert.Equal(t, 3, receipt.Order.ItemCount())
	assert.Equal(t, "+212 612345678", receipt.Order.ShippingAddress.Phone)

	stored, err := f.orders.FindByNumber(ctx, receipt.Order.OrderNumber)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	assert.Empty(t, f.cartItems(t))
	require.Len(t, f.events.events, 1)
	assert.Equal(t, receipt.Order.OrderNumber, f.events.events[0].OrderNumber)

	all := rec.All()
	assert.Equal(t, notify.Notification{Severity: notify.SeveritySuccess, Message: "Order placed successfully!"}, all[len(all)-1])

	after, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, after.State)
	assert.Equal(t, receipt.Order.OrderNumber, after.LastOrderNumber)
	assert.NotEqual(t, before.IdempotencyKey, after.IdempotencyKey)
}

func TestService_PlaceOrder_ClearsDiscount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "a", "500", 1)

	summary, err := f.svc.ApplyDiscount(ctx, sessionID, "80off", notify.Discard)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(400).Equal(summary.Pricing.DiscountAmount))
	assert.False(t, summary.CanApplyDiscount)

	receipt, err := f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, "80off", receipt.Order.DiscountCode)
	assert.True(t, decimal.NewFromInt(150).Equal(receipt.Order.TotalAmount))

	after, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)
	assert.True(t, after.CanApplyDiscount)
	assert.Nil(t, after.Pricing.DiscountPercent)
}

func TestService_PlaceOrder_DeclineKeepsCart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gw.errs = []error{payment.ErrPaymentDeclined}
	f.add(t, "a", "300", 1)

	before, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)

	rec := notify.NewRecorder()
	_, err = f.svc.PlaceOrder(ctx, sessionID, submission(), rec)
	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.ErrorIs(t, err, payment.ErrPaymentDeclined)
	assert.Equal(t, 1, f.gw.Calls())

	assert.Len(t, f.cartItems(t), 1)
	assert.Empty(t, f.events.events)
	assert.Equal(t, []notify.Notification{{Severity: notify.SeverityError, Message: "Payment processing failed. Please try again."}}, rec.All())

	after, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, after.State)
	assert.NotEmpty(t, after.LastError)
	assert.Equal(t, before.IdempotencyKey, after.IdempotencyKey)

	// submission is re-enabled
	f.gw.errs = nil
	_, err = f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
	assert.NoError(t, err)
}

func TestService_PlaceOrder_RetriesTransientFailures(t *testing.T) {
	f := newFixture(t)
	f.gw.errs = []error{payment.ErrGatewayUnavailable, payment.ErrGatewayUnavailable}
	f.add(t, "a", "300", 1)

	receipt, err := f.svc.PlaceOrder(context.Background(), sessionID, submission(), notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, 3, f.gw.Calls())
	assert.Equal(t, 3, receipt.Order.Payments[0].Attempts)
}

func TestService_PlaceOrder_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "a", "300", 1)

	sub := submission()
	sub.IdempotencyKey = "attempt-1"

	first, err := f.svc.PlaceOrder(ctx, sessionID, sub, notify.Discard)
	require.NoError(t, err)

	second, err := f.svc.PlaceOrder(ctx, sessionID, sub, notify.Discard)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.OrderNumber, second.Order.OrderNumber)
	assert.Equal(t, 1, f.gw.Calls())
	assert.Len(t, f.events.events, 1)
}

func TestService_PlaceOrder_RejectsConcurrentSubmission(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gw.block = make(chan struct{})
	f.gw.entered = make(chan struct{}, 1)
	f.add(t, "a", "300", 1)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
		done <- err
	}()
	<-f.gw.entered

	summary, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, summary.State)

	_, err = f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(f.gw.block)
	assert.NoError(t, <-done)
}

func TestService_PlaceOrder_RejectsSubmissionFromAnotherInstance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gw.block = make(chan struct{})
	f.gw.entered = make(chan struct{}, 1)
	f.add(t, "a", "300", 1)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
		done <- err
	}()
	<-f.gw.entered

	other := f.newService()
	summary, err := other.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, summary.State)

	_, err = other.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(f.gw.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.gw.Calls())
}

func TestService_PlaceOrder_KeepsItemsAddedDuringPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.gw.block = make(chan struct{})
	f.gw.entered = make(chan struct{}, 1)
	f.add(t, "a", "300", 1)

	done := make(chan *Receipt, 1)
	go func() {
		receipt, err := f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
		assert.NoError(t, err)
		done <- receipt
	}()
	<-f.gw.entered

	f.add(t, "b", "40", 2)
	close(f.gw.block)
	receipt := <-done
	require.NotNil(t, receipt)

	require.Len(t, receipt.Order.Items, 1)
	assert.Equal(t, "a", receipt.Order.Items[0].ProductID)

	items := f.cartItems(t)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Product.ID)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestService_PlaceOrder_OrderNotRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.flaky.createErrs = []error{errors.New("database unavailable")}
	f.add(t, "a", "300", 1)

	before, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)

	rec := notify.NewRecorder()
	_, err = f.svc.PlaceOrder(ctx, sessionID, submission(), rec)
	assert.ErrorIs(t, err, ErrOrderNotRecorded)
	assert.NotErrorIs(t, err, ErrPaymentFailed)
	require.Len(t, rec.All(), 1)
	assert.Equal(t, notify.SeverityError, rec.All()[0].Severity)
	assert.NotEqual(t, "Payment processing failed. Please try again.", rec.All()[0].Message)
	assert.Contains(t, rec.All()[0].Message, "not be charged twice")

	after, err := f.svc.GetSummary(ctx, sessionID, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, after.State)
	assert.Equal(t, before.IdempotencyKey, after.IdempotencyKey)
	assert.Len(t, f.cartItems(t), 1)

	receipt, err := f.svc.PlaceOrder(ctx, sessionID, submission(), notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{before.IdempotencyKey, before.IdempotencyKey}, f.gw.Keys())
	require.Len(t, receipt.Order.Payments, 1)
	assert.Equal(t, "ch_"+before.IdempotencyKey, receipt.Order.Payments[0].PaymentProviderID)
}

func TestService_PlaceOrder_CashOnDeliverySkipsGateway(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a", "300", 1)

	sub := submission()
	sub.Payment = PaymentDetails{Method: MethodCashOnDelivery}
	receipt, err := f.svc.PlaceOrder(context.Background(), sessionID, sub, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, f.gw.Calls())
	assert.Equal(t, order.PaymentStatusPending, receipt.Order.PaymentStatus)
	assert.Empty(t, receipt.Order.Payments)
}

func TestService_PlaceOrder_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")
	f.add(t, "a", "300", 1)

	_, err := f.svc.PlaceOrder(context.Background(), sessionID, submission(), notify.Discard)
	assert.NoError(t, err)
	assert.Empty(t, f.cartItems(t))
}

func TestService_PlaceOrder_GateFailure(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a", "100", 1)

	rec := notify.NewRecorder()
	_, err := f.svc.PlaceOrder(context.Background(), sessionID, submission(), rec)
	assert.ErrorIs(t, err, ErrBelowMinimumOrder)
	assert.Equal(t, 0, f.gw.Calls())
	assert.Equal(t, "Minimum order value is 249", rec.All()[0].Message)
}

func TestService_Discounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.add(t, "a", "500", 1)

	rec := notify.NewRecorder()
	summary, err := f.svc.ApplyDiscount(ctx, sessionID, "WRONG", rec)
	assert.ErrorIs(t, err, pricing.ErrInvalidDiscountCode)
	assert.Nil(t, summary.Pricing.DiscountPercent)

	_, err = f.svc.ApplyDiscount(ctx, sessionID, "80off", rec)
	require.NoError(t, err)
	_, err = f.svc.ApplyDiscount(ctx, sessionID, "80off", rec)
	assert.ErrorIs(t, err, pricing.ErrDiscountAlreadyApplied)

	summary, err = f.svc.RemoveDiscount(ctx, sessionID, rec)
	require.NoError(t, err)
	assert.True(t, summary.CanApplyDiscount)

	var messages []string
	for _, n := range rec.All() {
		messages = append(messages, n.Message)
	}
	assert.Equal(t, []string{"Invalid discount code", "Discount applied", "Discount removed"}, messages)
}

func TestService_SetPaymentMethod(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.SetPaymentMethod(context.Background(), sessionID, MethodOther, notify.Discard)
	require.NoError(t, err)
	assert.Equal(t, MethodOther, summary.PaymentMethod)

	_, err = f.svc.SetPaymentMethod(context.Background(), sessionID, "cheque", notify.Discard)
	assert.ErrorIs(t, err, ErrInvalidPayment)
}
