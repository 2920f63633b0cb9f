package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/eventia/internal/payment/domain"
	"github.com/dmehra2102/eventia/pkg/httpjson"
)

type PaymentService interface {
	CreateRemoteOrder(ctx context.Context, eventID, buyerID string, amount int64) (domain.RemoteOrder, error)
}

type Handler struct {
	log     *slog.Logger
	service PaymentService
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service PaymentService) *Handler {
	return &Handler{log: log, service: service, tracer: otel.Tracer("payment-http")}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/create-razorpay-order", h.createRemoteOrder)
}

type createRemoteOrderReq struct {
	EventID string `json:"eventId"`
	UserID  string `json:"userId"`
	Amount  int64  `json:"amount"`
}

type createRemoteOrderResp struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (h *Handler) createRemoteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateRazorpayOrder")
	defer span.End()

	var req createRemoteOrderReq
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid body")
		return
	}

	ro, err := h.service.CreateRemoteOrder(ctx, req.EventID, req.UserID, req.Amount)
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		span.RecordError(err)
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create Razorpay order")
		return
	}
	httpjson.Write(w, http.StatusOK, createRemoteOrderResp{OrderID: ro.ID, Amount: ro.Amount, Currency: ro.Currency})
}
