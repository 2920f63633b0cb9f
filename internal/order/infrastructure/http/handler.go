package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/eventia/internal/order/application"
	"github.com/dmehra2102/eventia/internal/order/domain"
	"github.com/dmehra2102/eventia/pkg/httpjson"
)

type OrderService interface {
	CreateOrder(ctx context.Context, p application.CreateOrderParams) (domain.Order, error)
	HasPurchased(ctx context.Context, eventID, buyerID string) (bool, error)
	FindByEventAndBuyer(ctx context.Context, eventID, buyerID string) (domain.Details, error)
}

type Handler struct {
	log     *slog.Logger
	service OrderService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service OrderService) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	EventID           string `json:"eventId"`
	UserID            string `json:"userId"`
	Amount            int64  `json:"amount"`
	RazorpayPaymentID string `json:"razorpayPaymentId"`
	RazorpayOrderID   string `json:"razorpayOrderId"`
	RazorpaySignature string `json:"razorpaySignature"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/create-order", h.createOrder)
	r.Get("/orders", h.findOrder)
	r.Get("/ticket-purchase", h.ticketPurchase)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	var payment *domain.PaymentRef
	if req.RazorpayPaymentID != "" || req.RazorpayOrderID != "" {
		payment = &domain.PaymentRef{
			PaymentID: req.RazorpayPaymentID,
			OrderID:   req.RazorpayOrderID,
			Signature: req.RazorpaySignature,
		}
	}

	o, err := h.service.CreateOrder(ctx, application.CreateOrderParams{
		EventID: req.EventID,
		BuyerID: req.UserID,
		Amount:  req.Amount,
		Payment: payment,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrDuplicateOrder):
		httpjson.Error(w, http.StatusConflict, "Order already exists")
		return
	case err != nil:
		span.RecordError(err)
		h.log.Error("create order failed", "event_id", req.EventID, "user_id", req.UserID, "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	httpjson.Write(w, http.StatusCreated, o)
}

func (h *Handler) findOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "FindOrder")
	defer span.End()

	q := r.URL.Query()
	eventID, userID := q.Get("eventId"), q.Get("userId")
	if eventID == "" || userID == "" {
		httpjson.Error(w, http.StatusBadRequest, "Event ID and User ID are required")
		return
	}

	d, err := h.service.FindByEventAndBuyer(ctx, eventID, userID)
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		httpjson.Error(w, http.StatusNotFound, "Order not found")
		return
	case err != nil:
		h.log.Error("find order failed", "event_id", eventID, "user_id", userID, "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpjson.Write(w, http.StatusOK, d)
}

func (h *Handler) ticketPurchase(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "TicketPurchase")
	defer span.End()

	q := r.URL.Query()
	eventID, userID := q.Get("eventId"), q.Get("userId")
	if eventID == "" || userID == "" {
		httpjson.Error(w, http.StatusBadRequest, "Event ID and User ID are required")
		return
	}

	purchased, err := h.service.HasPurchased(ctx, eventID, userID)
	if err != nil {
		h.log.Error("purchase lookup failed", "event_id", eventID, "user_id", userID, "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"hasPurchased": purchased})
}
