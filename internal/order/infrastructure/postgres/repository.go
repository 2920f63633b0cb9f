package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmehra2102/eventia/internal/order/domain"
	"github.com/dmehra2102/eventia/pkg/outbox"
)

const selectDetails = `
	SELECT o.id, o.event_id, o.buyer_id, o.total_amount,
	       COALESCE(o.razorpay_payment_id, ''), COALESCE(o.razorpay_order_id, ''), COALESCE(o.razorpay_signature, ''),
	       o.ticket_id, o.created_at,
	       b.id, b.email, b.first_name, b.last_name, b.phone,
	       e.id, e.title, e.description, e.location, e.image_url,
	       e.start_date_time, e.end_date_time, e.price, e.is_free, e.url,
	       COALESCE(c.id, ''), COALESCE(c.name, ''),
	       COALESCE(u.id, ''), COALESCE(u.email, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
	FROM orders o
	JOIN users b ON b.id = o.buyer_id
	JOIN events e ON e.id = o.event_id
	LEFT JOIN categories c ON c.id = e.category_id
	LEFT JOIN users u ON u.id = e.organizer_id`

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) SaveWithOutbox(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var paymentID, remoteOrderID, signature *string
	if o.Payment != nil {
		paymentID, remoteOrderID, signature = &o.Payment.PaymentID, &o.Payment.OrderID, &o.Payment.Signature
	}

	var id string
	err = tx.QueryRow(ctx, `INSERT INTO orders (id, event_id, buyer_id, total_amount, razorpay_payment_id, razorpay_order_id, razorpay_signature, ticket_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (event_id, buyer_id) DO NOTHING
		RETURNING id`,
		o.ID, o.EventID, o.BuyerID, o.TotalAmount, paymentID, remoteOrderID, signature, o.TicketID, o.CreatedAt).
		Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateOrder
	}
	if err != nil {
		return err
	}

	err = outbox.Append(ctx, tx, outbox.Event{
		AggregateType: "order",
		AggregateID:   o.ID,
		Type:          eventType,
		Payload:       payload,
		Headers:       map[string]string{"ticket_id": o.TicketID},
		Traceparent:   traceparent,
	})
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Details, error) {
	return r.findOne(ctx, selectDetails+` WHERE o.id=$1`, id)
}

func (r *Repository) FindByTicketID(ctx context.Context, ticketID string) (domain.Details, error) {
	return r.findOne(ctx, selectDetails+` WHERE o.ticket_id=$1`, ticketID)
}

func (r *Repository) FindByEventAndBuyer(ctx context.Context, eventID, buyerID string) (domain.Details, error) {
	return r.findOne(ctx, selectDetails+` WHERE o.event_id=$1 AND o.buyer_id=$2`, eventID, buyerID)
}

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (domain.Details, error) {
	var d domain.Details
	var p domain.PaymentRef
	e := &d.Event
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&d.Order.ID, &d.Order.EventID, &d.Order.BuyerID, &d.Order.TotalAmount,
		&p.PaymentID, &p.OrderID, &p.Signature,
		&d.Order.TicketID, &d.Order.CreatedAt,
		&d.Buyer.ID, &d.Buyer.Email, &d.Buyer.FirstName, &d.Buyer.LastName, &d.Buyer.Phone,
		&e.ID, &e.Title, &e.Description, &e.Location, &e.ImageURL,
		&e.StartDateTime, &e.EndDateTime, &e.Price, &e.IsFree, &e.URL,
		&e.Category.ID, &e.Category.Name,
		&e.Organizer.ID, &e.Organizer.Email, &e.Organizer.FirstName, &e.Organizer.LastName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Details{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Details{}, err
	}
	if p.PaymentID != "" || p.OrderID != "" {
		d.Order.Payment = &p
	}
	return d, nil
}
