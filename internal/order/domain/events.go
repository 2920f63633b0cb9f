package domain

const OrderCreatedType = "OrderCreated"

type OrderCreated struct {
	OrderID     string `json:"orderId"`
	EventID     string `json:"eventId"`
	BuyerID     string `json:"buyerId"`
	TicketID    string `json:"ticketId"`
	TotalAmount int64  `json:"totalAmount"`
	Paid        bool   `json:"paid"`
}

func NewOrderCreated(o Order) OrderCreated {
	return OrderCreated{
		OrderID:     o.ID,
		EventID:     o.EventID,
		BuyerID:     o.BuyerID,
		TicketID:    o.TicketID,
		TotalAmount: o.TotalAmount,
		Paid:        o.Payment != nil,
	}
}
