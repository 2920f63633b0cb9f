package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/eventia/internal/auth"
	"github.com/dmehra2102/eventia/internal/checkout/domain"
	"github.com/dmehra2102/eventia/pkg/clock"
)

// Service gates the orchestrator behind the checks the checkout button
// performs: a signed-in buyer, an event still on sale, and no prior order.
type Service struct {
	log          *slog.Logger
	events       EventReader
	purchases    PurchaseChecker
	orchestrator *Orchestrator
	clock        clock.Clock
}

func NewService(log *slog.Logger, events EventReader, purchases PurchaseChecker, orchestrator *Orchestrator, clk clock.Clock) *Service {
	return &Service{log: log, events: events, purchases: purchases, orchestrator: orchestrator, clock: clk}
}

// Start runs a checkout for the buyer carried by ctx.
func (s *Service) Start(ctx context.Context, eventID string, widget HostedCheckout) (domain.Result, error) {
	buyer, ok := auth.BuyerFrom(ctx)
	if !ok {
		return domain.Idle(), domain.ErrSignInRequired
	}

	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return domain.Idle(), err
	}
	if ev.HasFinished(s.clock.Now()) {
		return domain.Idle(), domain.ErrTicketsUnavailable
	}

	purchased, err := s.purchases.HasPurchased(ctx, ev.ID, buyer.ID)
	if err != nil {
		return domain.Idle(), err
	}
	if purchased {
		return domain.Idle(), domain.ErrAlreadyPurchased
	}

	s.log.Info("checkout started", "event_id", ev.ID, "user_id", buyer.ID, "free", ev.IsFree)
	return s.orchestrator.Checkout(ctx, ev, buyer, widget)
}
