package domain

import "errors"

// ErrTransportFailure wraps any error returned by the mail transport.
var ErrTransportFailure = errors.New("mail transport failure")

type Kind string

const (
	KindPaymentConfirmation Kind = "payment_confirmation"
	KindTicket              Kind = "ticket"
)

// Message is a rendered email. It is never stored; it can always be
// rebuilt from the order it describes.
type Message struct {
	Kind    Kind
	To      string
	Subject string
	HTML    string
}

// Fields are the values embedded in both email templates.
type Fields struct {
	Email         string
	FullName      string
	EventTitle    string
	PaymentDate   string
	AmountPaid    string
	PaymentID     string
	RemoteOrderID string
	TicketID      string
	EventDate     string
	EventTime     string
	Location      string
}
