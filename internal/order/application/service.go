package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmehra2102/eventia/internal/order/domain"
	"github.com/dmehra2102/eventia/pkg/clock"
	"github.com/dmehra2102/eventia/pkg/tracing"
)

type Service struct {
	repo  OrderRepository
	clock clock.Clock
}

func NewService(repo OrderRepository, clk clock.Clock) *Service {
	return &Service{repo: repo, clock: clk}
}

type CreateOrderParams struct {
	EventID string
	BuyerID string
	Amount  int64
	Payment *domain.PaymentRef
}

func (s *Service) CreateOrder(ctx context.Context, p CreateOrderParams) (domain.Order, error) {
	o, err := domain.NewOrder(p.EventID, p.BuyerID, p.Amount, p.Payment, s.clock.Now())
	if err != nil {
		return domain.Order{}, err
	}
	payload, err := json.Marshal(domain.NewOrderCreated(o))
	if err != nil {
		return domain.Order{}, err
	}
	if err := s.repo.SaveWithOutbox(ctx, o, domain.OrderCreatedType, payload, tracing.Traceparent(ctx)); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

// HasPurchased is the purchase-status lookup run before checkout.
func (s *Service) HasPurchased(ctx context.Context, eventID, buyerID string) (bool, error) {
	_, err := s.FindByEventAndBuyer(ctx, eventID, buyerID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) FindByEventAndBuyer(ctx context.Context, eventID, buyerID string) (domain.Details, error) {
	if strings.TrimSpace(eventID) == "" || strings.TrimSpace(buyerID) == "" {
		return domain.Details{}, domain.ErrInvalidOrder
	}
	return s.repo.FindByEventAndBuyer(ctx, eventID, buyerID)
}

func (s *Service) FindByID(ctx context.Context, id string) (domain.Details, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Details{}, domain.ErrInvalidOrder
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) FindByTicketID(ctx context.Context, ticketID string) (domain.Details, error) {
	if strings.TrimSpace(ticketID) == "" {
		return domain.Details{}, domain.ErrInvalidOrder
	}
	return s.repo.FindByTicketID(ctx, ticketID)
}
