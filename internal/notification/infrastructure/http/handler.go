package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	"github.com/dmehra2102/eventia/internal/notification/application"
	"github.com/dmehra2102/eventia/internal/notification/domain"
	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
	userdomain "github.com/dmehra2102/eventia/internal/user/domain"
	"github.com/dmehra2102/eventia/pkg/clock"
	"github.com/dmehra2102/eventia/pkg/httpjson"
)

type Notifier interface {
	SendPaymentConfirmation(ctx context.Context, pc application.PaymentConfirmation) error
	SendTicket(ctx context.Context, ticketID string) error
	QueueResend(ctx context.Context, orderID string) error
}

type Handler struct {
	log      *slog.Logger
	notifier Notifier
	clock    clock.Clock
	tracer   trace.Tracer
}

// NewHandler builds the notification routes. clk stamps confirmations
// whose request carries no paidAt.
func NewHandler(log *slog.Logger, notifier Notifier, clk clock.Clock) *Handler {
	return &Handler{log: log, notifier: notifier, clock: clk, tracer: otel.Tracer("notification-http")}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/send-confirmation-email", h.sendConfirmation)
	r.Post("/send-ticket", h.sendTicket)
	r.Post("/orders/{id}/resend-ticket", h.resendTicket)
}

type confirmationReq struct {
	RazorpayPaymentID string    `json:"razorpayPaymentId"`
	RazorpayOrderID   string    `json:"razorpayOrderId"`
	RazorpaySignature string    `json:"razorpaySignature"`
	UserID            string    `json:"userId"`
	EventTitle        string    `json:"eventTitle"`
	UserEmail         string    `json:"userEmail"`
	AmountPaid        int64     `json:"amountPaid"`
	FirstName         string    `json:"firstname"`
	LastName          string    `json:"lastname"`
	PaidAt            time.Time `json:"paidAt"`
}

func (h *Handler) sendConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SendConfirmationEmail")
	defer span.End()

	var req confirmationReq
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = h.clock.Now()
	}

	err := h.notifier.SendPaymentConfirmation(ctx, application.PaymentConfirmation{
		Order: orderdomain.Order{
			BuyerID:     req.UserID,
			TotalAmount: req.AmountPaid,
			Payment: &orderdomain.PaymentRef{
				PaymentID: req.RazorpayPaymentID,
				OrderID:   req.RazorpayOrderID,
				Signature: req.RazorpaySignature,
			},
			CreatedAt: paidAt,
		},
		Buyer:      userdomain.User{ID: req.UserID, Email: req.UserEmail, FirstName: req.FirstName, LastName: req.LastName},
		Event:      eventdomain.Event{Title: req.EventTitle},
		AmountPaid: req.AmountPaid,
	})
	if err != nil {
		h.writeErr(w, err, "Failed to send confirmation email")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"success": true})
}

type sendTicketReq struct {
	TicketID string `json:"ticketId"`
}

func (h *Handler) sendTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SendTicket")
	defer span.End()

	var req sendTicketReq
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := h.notifier.SendTicket(ctx, req.TicketID); err != nil {
		h.writeErr(w, err, "Failed to send ticket email")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) resendTicket(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ResendTicket")
	defer span.End()

	if err := h.notifier.QueueResend(ctx, chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, err, "Failed to resend ticket")
		return
	}
	httpjson.Write(w, http.StatusAccepted, map[string]bool{"success": true})
}

func (h *Handler) writeErr(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, orderdomain.ErrOrderNotFound):
		httpjson.Error(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, orderdomain.ErrInvalidOrder), errors.Is(err, application.ErrMissingRecipient):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTransportFailure):
		httpjson.Error(w, http.StatusInternalServerError, msg)
	default:
		h.log.Error("notification request failed", "err", err)
		httpjson.Error(w, http.StatusInternalServerError, msg)
	}
}
