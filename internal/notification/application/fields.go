package application

import (
	"time"

	"github.com/shopspring/decimal"

	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	"github.com/dmehra2102/eventia/internal/notification/domain"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
	userdomain "github.com/dmehra2102/eventia/internal/user/domain"
)

const (
	PaymentDateLayout = "January 2, 2006 3:04 PM"
	EventDateLayout   = "January 2, 2006"
	EventTimeLayout   = "3:04 PM"
)

// PaymentConfirmation is everything the confirmation email is built from.
type PaymentConfirmation struct {
	Order      orderdomain.Order
	Buyer      userdomain.User
	Event      eventdomain.Event
	AmountPaid int64
}

// FormatAmount renders minor units as rupees with two decimals.
func FormatAmount(minor int64) string {
	return "₹" + decimal.New(minor, -2).StringFixed(2)
}

// FieldsFrom derives the template fields from persisted data only, so the
// same order always yields the same fields.
func FieldsFrom(o orderdomain.Order, buyer userdomain.User, ev eventdomain.Event, amount int64, loc *time.Location) domain.Fields {
	if loc == nil {
		loc = time.UTC
	}
	f := domain.Fields{
		Email:       buyer.Email,
		FullName:    buyer.FullName(),
		EventTitle:  ev.Title,
		PaymentDate: o.CreatedAt.In(loc).Format(PaymentDateLayout),
		AmountPaid:  FormatAmount(amount),
		TicketID:    o.TicketID,
		Location:    ev.Location,
	}
	if o.Payment != nil {
		f.PaymentID = o.Payment.PaymentID
		f.RemoteOrderID = o.Payment.OrderID
	}
	if !ev.StartDateTime.IsZero() {
		start := ev.StartDateTime.In(loc)
		f.EventDate = start.Format(EventDateLayout)
		f.EventTime = start.Format(EventTimeLayout)
	}
	return f
}

// TicketFieldsFrom derives the ticket email fields from a populated order.
func TicketFieldsFrom(d orderdomain.Details, loc *time.Location) domain.Fields {
	return FieldsFrom(d.Order, d.Buyer, d.Event, d.Order.TotalAmount, loc)
}
