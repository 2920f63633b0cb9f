package application

import (
	"context"

	"github.com/dmehra2102/eventia/internal/notification/domain"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
)

type OrderFinder interface {
	FindByID(ctx context.Context, id string) (orderdomain.Details, error)
	FindByTicketID(ctx context.Context, ticketID string) (orderdomain.Details, error)
}

// Mailer delivers one rendered message per call.
type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}

// ResendQueue hands a resend request to the notification worker.
type ResendQueue interface {
	EnqueueResend(ctx context.Context, orderID string) error
}
