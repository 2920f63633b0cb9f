package domain

import (
	"errors"
	"strings"
)

var (
	// ErrGatewayFailure means the gateway did not return a usable remote
	// order. Checkout aborts before any order is stored.
	ErrGatewayFailure = errors.New("payment gateway failure")
	ErrInvalidAmount  = errors.New("amount must be positive")
)

const DefaultCurrency = "INR"

type RemoteOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// RemoteOrder is the gateway's record of an intended payment.
type RemoteOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

// Confirmation is the payload the hosted widget hands back after a
// successful payment.
type Confirmation struct {
	PaymentID string `json:"razorpayPaymentId"`
	OrderID   string `json:"razorpayOrderId"`
	Signature string `json:"razorpaySignature"`
}

func (c Confirmation) Valid() bool {
	return strings.TrimSpace(c.PaymentID) != "" && strings.TrimSpace(c.OrderID) != ""
}

type OutcomeKind string

const (
	OutcomeConfirmed OutcomeKind = "confirmed"
	OutcomeDismissed OutcomeKind = "dismissed"
)

// Outcome is the single terminal signal of a hosted widget session.
type Outcome struct {
	Kind         OutcomeKind
	Confirmation Confirmation
}

func Confirmed(c Confirmation) Outcome { return Outcome{Kind: OutcomeConfirmed, Confirmation: c} }

func Dismissed() Outcome { return Outcome{Kind: OutcomeDismissed} }

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// WidgetOptions are handed to the browser to open the hosted checkout.
type WidgetOptions struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}
