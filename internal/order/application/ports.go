package application

import (
	"context"

	"github.com/dmehra2102/eventia/internal/order/domain"
)

type OrderRepository interface {
	// SaveWithOutbox inserts o and its OrderCreated event atomically. It
	// returns domain.ErrDuplicateOrder when (event, buyer) already has one.
	SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) error
	FindByID(ctx context.Context, id string) (domain.Details, error)
	FindByTicketID(ctx context.Context, ticketID string) (domain.Details, error)
	FindByEventAndBuyer(ctx context.Context, eventID, buyerID string) (domain.Details, error)
}
