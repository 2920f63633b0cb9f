package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmehra2102/eventia/internal/payment/domain"
)

type Gateway interface {
	CreateOrder(ctx context.Context, req domain.RemoteOrderRequest) (domain.RemoteOrder, error)
}

type Service struct {
	log      *slog.Logger
	gateway  Gateway
	currency string
}

func NewService(log *slog.Logger, gateway Gateway, currency string) *Service {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return &Service{log: log, gateway: gateway, currency: currency}
}

func (s *Service) Currency() string { return s.currency }

// CreateRemoteOrder registers an intended payment of amount minor units
// with the gateway. A response without an order id is a gateway failure.
func (s *Service) CreateRemoteOrder(ctx context.Context, eventID, buyerID string, amount int64) (domain.RemoteOrder, error) {
	if amount <= 0 {
		return domain.RemoteOrder{}, domain.ErrInvalidAmount
	}
	ro, err := s.gateway.CreateOrder(ctx, domain.RemoteOrderRequest{
		Amount:   amount,
		Currency: s.currency,
		Receipt:  receipt(eventID, buyerID),
		Notes:    map[string]string{"eventId": eventID, "userId": buyerID},
	})
	if err != nil {
		s.log.Error("create remote order failed", "event_id", eventID, "user_id", buyerID, "err", err)
		return domain.RemoteOrder{}, fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	if strings.TrimSpace(ro.ID) == "" {
		return domain.RemoteOrder{}, fmt.Errorf("%w: no order id returned", domain.ErrGatewayFailure)
	}
	if ro.Amount == 0 {
		ro.Amount = amount
	}
	if ro.Currency == "" {
		ro.Currency = s.currency
	}
	return ro, nil
}

// receipt is capped at the gateway's 40 character limit.
func receipt(eventID, buyerID string) string {
	r := "evt_" + eventID + "_" + buyerID
	if len(r) > 40 {
		r = r[:40]
	}
	return r
}
