package domain

import (
	"errors"

	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
)

// State is where a buyer's checkout stands.
type State string

const (
	StateIdle            State = "idle"
	StateAwaitingPayment State = "awaiting_payment"
	StateBooked          State = "booked"
	StateCompleted       State = "completed"
	StateFailed          State = "failed"
)

// ProfileRedirect is where the buyer lands after a paid checkout.
const ProfileRedirect = "/profile"

var (
	ErrSignInRequired     = errors.New("sign in required")
	ErrTicketsUnavailable = errors.New("tickets are no longer available")
	ErrAlreadyPurchased   = errors.New("ticket already purchased")
	ErrOrderCreation      = errors.New("failed to create order")
	ErrSessionNotFound    = errors.New("checkout session not found")
	ErrSessionExpired     = errors.New("checkout session expired")
	ErrOutcomeDelivered   = errors.New("checkout outcome already delivered")
)

// Result is the terminal state of one checkout. Email outcomes are
// informational only; a completed checkout stays completed when they fail.
type Result struct {
	State            State              `json:"state"`
	Order            *orderdomain.Order `json:"order,omitempty"`
	Redirect         string             `json:"redirect,omitempty"`
	ConfirmationSent bool               `json:"confirmationSent"`
	TicketSent       bool               `json:"ticketSent"`
}

func Idle() Result { return Result{State: StateIdle} }

func Failed() Result { return Result{State: StateFailed} }

func Booked(o orderdomain.Order) Result { return Result{State: StateBooked, Order: &o} }

func Completed(o orderdomain.Order, confirmationSent, ticketSent bool) Result {
	return Result{
		State:            StateCompleted,
		Order:            &o,
		Redirect:         ProfileRedirect,
		ConfirmationSent: confirmationSent,
		TicketSent:       ticketSent,
	}
}
