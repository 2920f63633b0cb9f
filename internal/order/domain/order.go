package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	userdomain "github.com/dmehra2102/eventia/internal/user/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrInvalidOrder   = errors.New("invalid order")
	ErrDuplicateOrder = errors.New("order already exists for event and buyer")
)

// PaymentRef holds the identifiers returned by the payment gateway for a
// paid order. The signature is kept for verification only.
type PaymentRef struct {
	PaymentID string `json:"razorpayPaymentId"`
	OrderID   string `json:"razorpayOrderId"`
	Signature string `json:"razorpaySignature,omitempty"`
}

// Order is a buyer's ticket for one event. It is created once and never
// updated.
type Order struct {
	ID          string      `json:"id"`
	EventID     string      `json:"eventId"`
	BuyerID     string      `json:"buyerId"`
	TotalAmount int64       `json:"totalAmount"`
	Payment     *PaymentRef `json:"payment,omitempty"`
	TicketID    string      `json:"ticketId"`
	CreatedAt   time.Time   `json:"createdAt"`
}

func NewOrder(eventID, buyerID string, amount int64, payment *PaymentRef, now time.Time) (Order, error) {
	eventID, buyerID = strings.TrimSpace(eventID), strings.TrimSpace(buyerID)
	if eventID == "" || buyerID == "" {
		return Order{}, fmt.Errorf("%w: event id and buyer id are required", ErrInvalidOrder)
	}
	if amount < 0 {
		return Order{}, fmt.Errorf("%w: negative amount %d", ErrInvalidOrder, amount)
	}
	if payment != nil && (payment.PaymentID == "" || payment.OrderID == "") {
		return Order{}, fmt.Errorf("%w: payment reference is incomplete", ErrInvalidOrder)
	}
	return Order{
		ID:          uuid.NewString(),
		EventID:     eventID,
		BuyerID:     buyerID,
		TotalAmount: amount,
		Payment:     payment,
		TicketID:    NewTicketID(),
		CreatedAt:   now.UTC(),
	}, nil
}

// NewTicketID returns a fresh, globally unique ticket identifier.
func NewTicketID() string {
	return "TKT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (o Order) IsFree() bool { return o.TotalAmount == 0 && o.Payment == nil }

// Details is an order with its buyer and event rehydrated.
type Details struct {
	Order Order             `json:"order"`
	Buyer userdomain.User   `json:"buyer"`
	Event eventdomain.Event `json:"event"`
}
