package application

import (
	"context"

	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	notifapp "github.com/dmehra2102/eventia/internal/notification/application"
	orderapp "github.com/dmehra2102/eventia/internal/order/application"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
	paydomain "github.com/dmehra2102/eventia/internal/payment/domain"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, p orderapp.CreateOrderParams) (orderdomain.Order, error)
}

type PaymentGateway interface {
	CreateRemoteOrder(ctx context.Context, eventID, buyerID string, amount int64) (paydomain.RemoteOrder, error)
}

// HostedCheckout opens the gateway's payment widget and blocks until it
// reports its single terminal outcome.
type HostedCheckout interface {
	Open(ctx context.Context, opts paydomain.WidgetOptions) (paydomain.Outcome, error)
}

type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, pc notifapp.PaymentConfirmation) error
	SendTicket(ctx context.Context, ticketID string) error
}

type EventReader interface {
	Get(ctx context.Context, id string) (eventdomain.Event, error)
}

type PurchaseChecker interface {
	HasPurchased(ctx context.Context, eventID, buyerID string) (bool, error)
}
