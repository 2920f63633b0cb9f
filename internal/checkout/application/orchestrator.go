package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dmehra2102/eventia/internal/checkout/domain"
	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	notifapp "github.com/dmehra2102/eventia/internal/notification/application"
	orderapp "github.com/dmehra2102/eventia/internal/order/application"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
	paydomain "github.com/dmehra2102/eventia/internal/payment/domain"
	userdomain "github.com/dmehra2102/eventia/internal/user/domain"
	"github.com/dmehra2102/eventia/pkg/clock"
)

// DefaultCompletionDelay is how long a paid checkout lingers on the
// processing screen before it is reported complete.
const DefaultCompletionDelay = 5500 * time.Millisecond

type WidgetConfig struct {
	Key          string
	Currency     string
	MerchantName string
	ThemeColor   string
}

// Orchestrator runs one checkout from order creation to fulfillment. It
// never retries and never compensates: a stored order stays stored whatever
// happens to the emails.
type Orchestrator struct {
	log      *slog.Logger
	orders   OrderCreator
	payments PaymentGateway
	notifier Notifier
	clock    clock.Clock
	widget   WidgetConfig
	delay    time.Duration
	tracer   trace.Tracer
}

func NewOrchestrator(log *slog.Logger, orders OrderCreator, payments PaymentGateway, notifier Notifier, clk clock.Clock, widget WidgetConfig, delay time.Duration) *Orchestrator {
	if widget.Currency == "" {
		widget.Currency = paydomain.DefaultCurrency
	}
	return &Orchestrator{
		log:      log,
		orders:   orders,
		payments: payments,
		notifier: notifier,
		clock:    clk,
		widget:   widget,
		delay:    delay,
		tracer:   otel.Tracer("checkout"),
	}
}

func (o *Orchestrator) Checkout(ctx context.Context, ev eventdomain.Event, buyer userdomain.User, widget HostedCheckout) (domain.Result, error) {
	ctx, span := o.tracer.Start(ctx, "Checkout", trace.WithAttributes(
		attribute.String("event.id", ev.ID),
		attribute.Bool("event.free", ev.IsFree),
	))
	defer span.End()

	if ev.IsFree {
		return o.free(ctx, ev, buyer)
	}
	return o.paid(ctx, ev, buyer, widget)
}

func (o *Orchestrator) free(ctx context.Context, ev eventdomain.Event, buyer userdomain.User) (domain.Result, error) {
	order, err := o.orders.CreateOrder(ctx, orderapp.CreateOrderParams{EventID: ev.ID, BuyerID: buyer.ID})
	if err != nil {
		o.log.Error("free order creation failed", "event_id", ev.ID, "user_id", buyer.ID, "err", err)
		return domain.Failed(), fmt.Errorf("%w: %w", domain.ErrOrderCreation, err)
	}
	o.log.Info("free ticket booked", "order_id", order.ID, "ticket_id", order.TicketID)
	return domain.Booked(order), nil
}

func (o *Orchestrator) paid(ctx context.Context, ev eventdomain.Event, buyer userdomain.User, widget HostedCheckout) (domain.Result, error) {
	amount, err := ev.PriceMinorUnits()
	if err != nil {
		return domain.Failed(), err
	}

	remote, err := o.payments.CreateRemoteOrder(ctx, ev.ID, buyer.ID, amount)
	if err != nil {
		return domain.Failed(), err
	}

	outcome, err := widget.Open(ctx, o.widgetOptions(ev, buyer, remote))
	if err != nil {
		o.log.Warn("payment widget closed without outcome", "razorpay_order_id", remote.ID, "err", err)
		return domain.Idle(), err
	}
	if outcome.Kind != paydomain.OutcomeConfirmed {
		o.log.Info("payment dismissed", "event_id", ev.ID, "user_id", buyer.ID, "razorpay_order_id", remote.ID)
		return domain.Idle(), nil
	}

	c := outcome.Confirmation
	order, err := o.orders.CreateOrder(ctx, orderapp.CreateOrderParams{
		EventID: ev.ID,
		BuyerID: buyer.ID,
		Amount:  remote.Amount,
		Payment: &orderdomain.PaymentRef{PaymentID: c.PaymentID, OrderID: c.OrderID, Signature: c.Signature},
	})
	if err != nil {
		o.log.Error("paid order creation failed", "event_id", ev.ID, "user_id", buyer.ID,
			"razorpay_payment_id", c.PaymentID, "err", err)
		res := domain.Failed()
		res.ConfirmationSent = o.sendReceipt(ctx, ev, buyer, remote.Amount, c)
		return res, fmt.Errorf("%w: %w", domain.ErrOrderCreation, err)
	}

	confirmationSent, ticketSent := o.sendEmails(ctx, order, buyer, ev, remote.Amount)
	if confirmationSent && ticketSent {
		o.log.Info("confirmation email and ticket sent", "order_id", order.ID, "user_id", buyer.ID)
	}

	select {
	case <-o.clock.After(o.delay):
	case <-ctx.Done():
	}
	return domain.Completed(order, confirmationSent, ticketSent), nil
}

// sendEmails issues both sends at once and waits for both. Neither send
// depends on the other and failures are only logged.
func (o *Orchestrator) sendEmails(ctx context.Context, order orderdomain.Order, buyer userdomain.User, ev eventdomain.Event, amount int64) (confirmationSent, ticketSent bool) {
	var g errgroup.Group
	g.Go(func() error {
		err := o.notifier.SendPaymentConfirmation(ctx, notifapp.PaymentConfirmation{
			Order: order, Buyer: buyer, Event: ev, AmountPaid: amount,
		})
		if err != nil {
			o.log.Error("confirmation email failed", "order_id", order.ID, "err", err)
			return nil
		}
		confirmationSent = true
		return nil
	})
	g.Go(func() error {
		if err := o.notifier.SendTicket(ctx, order.TicketID); err != nil {
			o.log.Error("ticket email failed", "order_id", order.ID, "ticket_id", order.TicketID, "err", err)
			return nil
		}
		ticketSent = true
		return nil
	})
	_ = g.Wait()
	return confirmationSent, ticketSent
}

// sendReceipt mails the payment confirmation for a captured payment that
// has no order behind it. No ticket email is sent.
func (o *Orchestrator) sendReceipt(ctx context.Context, ev eventdomain.Event, buyer userdomain.User, amount int64, c paydomain.Confirmation) bool {
	err := o.notifier.SendPaymentConfirmation(ctx, notifapp.PaymentConfirmation{
		Order: orderdomain.Order{
			EventID:     ev.ID,
			BuyerID:     buyer.ID,
			TotalAmount: amount,
			Payment:     &orderdomain.PaymentRef{PaymentID: c.PaymentID, OrderID: c.OrderID, Signature: c.Signature},
			CreatedAt:   o.clock.Now(),
		},
		Buyer:      buyer,
		Event:      ev,
		AmountPaid: amount,
	})
	if err != nil {
		o.log.Error("payment receipt email failed", "razorpay_payment_id", c.PaymentID, "err", err)
		return false
	}
	return true
}

func (o *Orchestrator) widgetOptions(ev eventdomain.Event, buyer userdomain.User, remote paydomain.RemoteOrder) paydomain.WidgetOptions {
	currency := remote.Currency
	if currency == "" {
		currency = o.widget.Currency
	}
	return paydomain.WidgetOptions{
		Key:         o.widget.Key,
		Amount:      remote.Amount,
		Currency:    currency,
		Name:        o.widget.MerchantName,
		Description: ev.Title,
		OrderID:     remote.ID,
		Prefill: paydomain.Prefill{
			Name:    buyer.FirstName + " " + buyer.LastName,
			Email:   buyer.Email,
			Contact: buyer.Phone,
		},
		Theme: paydomain.Theme{Color: o.widget.ThemeColor},
	}
}
