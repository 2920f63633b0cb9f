package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/eventia/internal/checkout/application"
	"github.com/dmehra2102/eventia/internal/checkout/domain"
	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	notifapp "github.com/dmehra2102/eventia/internal/notification/application"
	orderapp "github.com/dmehra2102/eventia/internal/order/application"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
	paydomain "github.com/dmehra2102/eventia/internal/payment/domain"
	userdomain "github.com/dmehra2102/eventia/internal/user/domain"
	"github.com/dmehra2102/eventia/pkg/clock"
)

// callLog records the order in which collaborators are invoked.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(c string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, c)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeOrders struct {
	log     *callLog
	created []orderapp.CreateOrderParams
	err     error
}

func (f *fakeOrders) CreateOrder(ctx context.Context, p orderapp.CreateOrderParams) (orderdomain.Order, error) {
	f.log.add("create-order")
	if f.err != nil {
		return orderdomain.Order{}, f.err
	}
	f.created = append(f.created, p)
	return orderdomain.Order{
		ID: "ord-1", EventID: p.EventID, BuyerID: p.BuyerID, TotalAmount: p.Amount,
		Payment: p.Payment, TicketID: "TKT-1",
	}, nil
}

type fakeGateway struct {
	log    *callLog
	remote paydomain.RemoteOrder
	err    error
	amount int64
}

func (f *fakeGateway) CreateRemoteOrder(ctx context.Context, eventID, buyerID string, amount int64) (paydomain.RemoteOrder, error) {
	f.log.add("gateway")
	f.amount = amount
	if f.err != nil {
		return paydomain.RemoteOrder{}, f.err
	}
	return f.remote, nil
}

type scriptedWidget struct {
	log     *callLog
	outcome paydomain.Outcome
	err     error
	opened  []paydomain.WidgetOptions
}

func (w *scriptedWidget) Open(ctx context.Context, opts paydomain.WidgetOptions) (paydomain.Outcome, error) {
	w.log.add("widget")
	w.opened = append(w.opened, opts)
	return w.outcome, w.err
}

type fakeNotifier struct {
	log             *callLog
	confirmationErr error
	ticketErr       error
	confirmations   []notifapp.PaymentConfirmation
	tickets         []string
	mu              sync.Mutex

	// both sends must be in flight together before either returns
	barrier *sync.WaitGroup
}

func (f *fakeNotifier) SendPaymentConfirmation(ctx context.Context, pc notifapp.PaymentConfirmation) error {
	f.log.add("confirmation-email")
	f.rendezvous()
	f.mu.Lock()
	f.confirmations = append(f.confirmations, pc)
	f.mu.Unlock()
	return f.confirmationErr
}

func (f *fakeNotifier) SendTicket(ctx context.Context, ticketID string) error {
	f.log.add("ticket-email")
	f.rendezvous()
	f.mu.Lock()
	f.tickets = append(f.tickets, ticketID)
	f.mu.Unlock()
	return f.ticketErr
}

func (f *fakeNotifier) rendezvous() {
	if f.barrier != nil {
		f.barrier.Done()
		f.barrier.Wait()
	}
}

type harness struct {
	log      *callLog
	orders   *fakeOrders
	gateway  *fakeGateway
	widget   *scriptedWidget
	notifier *fakeNotifier
	clock    *clock.FakeClock
	orch     *application.Orchestrator
}

var (
	start = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	buyer = userdomain.User{ID: "user-1", Email: "asha@example.com", FirstName: "Asha", LastName: "Rao", Phone: "9000000000"}
)

func newHarness() *harness {
	l := &callLog{}
	h := &harness{
		log:      l,
		orders:   &fakeOrders{log: l},
		gateway:  &fakeGateway{log: l, remote: paydomain.RemoteOrder{ID: "order_abc", Amount: 50000, Currency: "INR"}},
		widget:   &scriptedWidget{log: l, outcome: paydomain.Confirmed(paydomain.Confirmation{PaymentID: "pay_123", OrderID: "order_abc", Signature: "sig"})},
		notifier: &fakeNotifier{log: l},
		clock:    clock.Fake(start),
	}
	h.orch = application.NewOrchestrator(slog.New(slog.NewTextHandler(io.Discard, nil)),
		h.orders, h.gateway, h.notifier, h.clock,
		application.WidgetConfig{Key: "rzp_test", Currency: "INR", MerchantName: "Eventia", ThemeColor: "#3399cc"},
		application.DefaultCompletionDelay)
	return h
}

func paidEvent() eventdomain.Event {
	return eventdomain.Event{ID: "evt-1", Title: "Indie Night", Price: "500", EndDateTime: start.Add(48 * time.Hour)}
}

func freeEvent() eventdomain.Event {
	return eventdomain.Event{ID: "evt-free", Title: "Open Mic", IsFree: true, EndDateTime: start.Add(48 * time.Hour)}
}

func TestCheckout_FreeEventNeverCallsGateway(t *testing.T) {
	h := newHarness()

	res, err := h.orch.Checkout(context.Background(), freeEvent(), buyer, h.widget)
	require.NoError(t, err)

	assert.Equal(t, domain.StateBooked, res.State)
	require.NotNil(t, res.Order)
	assert.Equal(t, "TKT-1", res.Order.TicketID)
	assert.Equal(t, []string{"create-order"}, h.log.list())
	require.Len(t, h.orders.created, 1)
	assert.Zero(t, h.orders.created[0].Amount)
	assert.Nil(t, h.orders.created[0].Payment)
	assert.Empty(t, h.clock.Waits())
}

func TestCheckout_FreeEventCreationFailure(t *testing.T) {
	h := newHarness()
	h.orders.err = orderdomain.ErrDuplicateOrder

	res, err := h.orch.Checkout(context.Background(), freeEvent(), buyer, h.widget)
	assert.ErrorIs(t, err, domain.ErrOrderCreation)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Equal(t, []string{"create-order"}, h.log.list(), "no retry")
}

func TestCheckout_PaidEventHappyPath(t *testing.T) {
	h := newHarness()

	res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	require.NoError(t, err)

	assert.Equal(t, int64(50000), h.gateway.amount, "₹500 is 50000 paise")

	calls := h.log.list()
	require.Len(t, calls, 5)
	assert.Equal(t, []string{"gateway", "widget", "create-order"}, calls[:3])
	assert.ElementsMatch(t, []string{"confirmation-email", "ticket-email"}, calls[3:])

	require.Len(t, h.orders.created, 1)
	p := h.orders.created[0]
	assert.Equal(t, int64(50000), p.Amount)
	require.NotNil(t, p.Payment)
	assert.Equal(t, orderdomain.PaymentRef{PaymentID: "pay_123", OrderID: "order_abc", Signature: "sig"}, *p.Payment)

	assert.Equal(t, []string{"TKT-1"}, h.notifier.tickets)
	require.Len(t, h.notifier.confirmations, 1)
	assert.Equal(t, int64(50000), h.notifier.confirmations[0].AmountPaid)
	assert.Equal(t, buyer, h.notifier.confirmations[0].Buyer)

	assert.Equal(t, []time.Duration{5500 * time.Millisecond}, h.clock.Waits())
	assert.Equal(t, domain.StateCompleted, res.State)
	assert.Equal(t, "/profile", res.Redirect)
	assert.True(t, res.ConfirmationSent)
	assert.True(t, res.TicketSent)
}

func TestCheckout_WidgetOptions(t *testing.T) {
	h := newHarness()
	_, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	require.NoError(t, err)

	require.Len(t, h.widget.opened, 1)
	assert.Equal(t, paydomain.WidgetOptions{
		Key:         "rzp_test",
		Amount:      50000,
		Currency:    "INR",
		Name:        "Eventia",
		Description: "Indie Night",
		OrderID:     "order_abc",
		Prefill:     paydomain.Prefill{Name: "Asha Rao", Email: "asha@example.com", Contact: "9000000000"},
		Theme:       paydomain.Theme{Color: "#3399cc"},
	}, h.widget.opened[0])
}

func TestCheckout_EmailsAreSentConcurrently(t *testing.T) {
	h := newHarness()
	var barrier sync.WaitGroup
	barrier.Add(2)
	h.notifier.barrier = &barrier

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("emails were not in flight at the same time")
	}
}

func TestCheckout_EmailFailuresDoNotBlockCompletion(t *testing.T) {
	cases := []struct {
		name             string
		confirmationErr  error
		ticketErr        error
		wantConfirmation bool
		wantTicket       bool
	}{
		{"confirmation fails", errors.New("smtp down"), nil, false, true},
		{"ticket fails", nil, errors.New("smtp down"), true, false},
		{"both fail", errors.New("smtp down"), errors.New("smtp down"), false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.notifier.confirmationErr = tc.confirmationErr
			h.notifier.ticketErr = tc.ticketErr

			res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
			require.NoError(t, err)
			assert.Equal(t, domain.StateCompleted, res.State)
			assert.Equal(t, tc.wantConfirmation, res.ConfirmationSent)
			assert.Equal(t, tc.wantTicket, res.TicketSent)
			assert.Len(t, h.notifier.confirmations, 1, "both sends are always attempted")
			assert.Len(t, h.notifier.tickets, 1, "both sends are always attempted")
			assert.Equal(t, []time.Duration{application.DefaultCompletionDelay}, h.clock.Waits())
		})
	}
}

func TestCheckout_GatewayFailureCreatesNoOrder(t *testing.T) {
	h := newHarness()
	h.gateway.err = paydomain.ErrGatewayFailure

	res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	assert.ErrorIs(t, err, paydomain.ErrGatewayFailure)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Equal(t, []string{"gateway"}, h.log.list())
	assert.Empty(t, h.orders.created)
	assert.Empty(t, h.widget.opened)
}

func TestCheckout_DismissalReturnsToIdle(t *testing.T) {
	h := newHarness()
	h.widget.outcome = paydomain.Dismissed()

	res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	require.NoError(t, err)
	assert.Equal(t, domain.StateIdle, res.State)
	assert.Nil(t, res.Order)
	assert.Equal(t, []string{"gateway", "widget"}, h.log.list())
	assert.Empty(t, h.notifier.confirmations)
	assert.Empty(t, h.notifier.tickets)
	assert.Empty(t, h.clock.Waits())
}

func TestCheckout_WidgetErrorReturnsToIdle(t *testing.T) {
	h := newHarness()
	h.widget.err = domain.ErrSessionExpired

	res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Equal(t, domain.StateIdle, res.State)
	assert.Empty(t, h.orders.created)
}

func TestCheckout_OrderFailureAfterPaymentSendsReceiptOnly(t *testing.T) {
	h := newHarness()
	h.orders.err = orderdomain.ErrDuplicateOrder

	res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	assert.ErrorIs(t, err, domain.ErrOrderCreation)
	assert.ErrorIs(t, err, orderdomain.ErrDuplicateOrder)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Nil(t, res.Order)
	assert.True(t, res.ConfirmationSent)
	assert.False(t, res.TicketSent)
	assert.Equal(t, []string{"gateway", "widget", "create-order", "confirmation-email"}, h.log.list())

	require.Len(t, h.notifier.confirmations, 1)
	pc := h.notifier.confirmations[0]
	assert.Empty(t, pc.Order.TicketID)
	assert.Equal(t, "pay_123", pc.Order.Payment.PaymentID)
	assert.Equal(t, int64(50000), pc.AmountPaid)
	assert.True(t, pc.Order.CreatedAt.Equal(start))
	assert.Empty(t, h.notifier.tickets)
	assert.Empty(t, h.clock.Waits(), "no completion delay on failure")
}

func TestCheckout_OrderFailureWithReceiptFailure(t *testing.T) {
	h := newHarness()
	h.orders.err = errors.New("db down")
	h.notifier.confirmationErr = errors.New("smtp down")

	res, err := h.orch.Checkout(context.Background(), paidEvent(), buyer, h.widget)
	assert.ErrorIs(t, err, domain.ErrOrderCreation)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.False(t, res.ConfirmationSent)
}

func TestCheckout_InvalidPriceAbortsBeforeGateway(t *testing.T) {
	h := newHarness()
	ev := paidEvent()
	ev.Price = "five hundred"

	res, err := h.orch.Checkout(context.Background(), ev, buyer, h.widget)
	assert.ErrorIs(t, err, eventdomain.ErrInvalidPrice)
	assert.Equal(t, domain.StateFailed, res.State)
	assert.Empty(t, h.log.list())
}
