package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dmehra2102/eventia/internal/notification/domain"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
)

var ErrMissingRecipient = errors.New("recipient email is required")

type Dispatcher struct {
	log      *slog.Logger
	orders   OrderFinder
	mailer   Mailer
	renderer *Renderer
	loc      *time.Location
	queue    ResendQueue
}

type Option func(*Dispatcher)

// WithResendQueue makes QueueResend publish instead of sending inline.
func WithResendQueue(q ResendQueue) Option {
	return func(d *Dispatcher) { d.queue = q }
}

func WithLocation(loc *time.Location) Option {
	return func(d *Dispatcher) { d.loc = loc }
}

func NewDispatcher(log *slog.Logger, orders OrderFinder, mailer Mailer, renderer *Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:      log,
		orders:   orders,
		mailer:   mailer,
		renderer: renderer,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) SendPaymentConfirmation(ctx context.Context, pc PaymentConfirmation) error {
	f := FieldsFrom(pc.Order, pc.Buyer, pc.Event, pc.AmountPaid, d.loc)
	return d.deliver(ctx, domain.KindPaymentConfirmation, f)
}

// SendTicket looks the order up by ticket id and mails the ticket. An
// unknown ticket id returns orderdomain.ErrOrderNotFound and sends nothing.
func (d *Dispatcher) SendTicket(ctx context.Context, ticketID string) error {
	if strings.TrimSpace(ticketID) == "" {
		return orderdomain.ErrInvalidOrder
	}
	details, err := d.orders.FindByTicketID(ctx, ticketID)
	if err != nil {
		return err
	}
	return d.deliver(ctx, domain.KindTicket, TicketFieldsFrom(details, d.loc))
}

// ResendTicket re-derives the ticket email from a stored order.
func (d *Dispatcher) ResendTicket(ctx context.Context, orderID string) error {
	if strings.TrimSpace(orderID) == "" {
		return orderdomain.ErrInvalidOrder
	}
	details, err := d.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	return d.SendTicket(ctx, details.Order.TicketID)
}

// QueueResend checks the order exists, then hands it to the resend queue,
// or resends inline when no queue is configured.
func (d *Dispatcher) QueueResend(ctx context.Context, orderID string) error {
	if d.queue == nil {
		return d.ResendTicket(ctx, orderID)
	}
	if strings.TrimSpace(orderID) == "" {
		return orderdomain.ErrInvalidOrder
	}
	if _, err := d.orders.FindByID(ctx, orderID); err != nil {
		return err
	}
	return d.queue.EnqueueResend(ctx, orderID)
}

func (d *Dispatcher) deliver(ctx context.Context, kind domain.Kind, f domain.Fields) error {
	if strings.TrimSpace(f.Email) == "" {
		return ErrMissingRecipient
	}
	msg, err := d.renderer.Render(kind, f)
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		d.log.Error("email send failed", "kind", kind, "ticket_id", f.TicketID, "err", err)
		return fmt.Errorf("%w: %v", domain.ErrTransportFailure, err)
	}
	d.log.Info("email sent", "kind", kind, "ticket_id", f.TicketID)
	return nil
}
