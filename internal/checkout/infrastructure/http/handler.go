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

	"github.com/dmehra2102/eventia/internal/auth"
	"github.com/dmehra2102/eventia/internal/checkout/application"
	"github.com/dmehra2102/eventia/internal/checkout/domain"
	"github.com/dmehra2102/eventia/internal/checkout/infrastructure/widget"
	eventdomain "github.com/dmehra2102/eventia/internal/event/domain"
	paydomain "github.com/dmehra2102/eventia/internal/payment/domain"
	"github.com/dmehra2102/eventia/pkg/httpjson"
)

type CheckoutService interface {
	Start(ctx context.Context, eventID string, w application.HostedCheckout) (domain.Result, error)
}

type Handler struct {
	log     *slog.Logger
	service CheckoutService
	bridge  *widget.Bridge
	// runTimeout bounds a checkout that outlives the request that began it.
	runTimeout time.Duration
	tracer     trace.Tracer
}

func NewHandler(log *slog.Logger, service CheckoutService, bridge *widget.Bridge, runTimeout time.Duration) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		bridge:     bridge,
		runTimeout: runTimeout,
		tracer:     otel.Tracer("checkout-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the handler's routes to r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/checkout", h.start)
	r.Post("/checkout/{id}/confirm", h.confirm)
	r.Post("/checkout/{id}/dismiss", h.dismiss)
}

type startReq struct {
	EventID string `json:"eventId"`
}

type startResp struct {
	State     domain.State             `json:"state"`
	SessionID string                   `json:"sessionId,omitempty"`
	Widget    *paydomain.WidgetOptions `json:"widget,omitempty"`
	TicketID  string                   `json:"ticketId,omitempty"`
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "StartCheckout")
	defer span.End()

	buyer, ok := auth.BuyerFrom(ctx)
	if !ok {
		h.writeErr(w, domain.ErrSignInRequired)
		return
	}
	var req startReq
	if err := httpjson.Decode(r, &req); err != nil || req.EventID == "" {
		httpjson.Error(w, http.StatusBadRequest, "eventId is required")
		return
	}

	sess := h.bridge.NewSession(buyer.ID)
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.runTimeout)
	go func() {
		defer cancel()
		res, err := h.service.Start(runCtx, req.EventID, sess)
		sess.Finish(res, err)
	}()

	opts, opened, err := sess.Started(ctx)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if opened {
		httpjson.Write(w, http.StatusOK, startResp{
			State:     domain.StateAwaitingPayment,
			SessionID: sess.ID(),
			Widget:    &opts,
		})
		return
	}

	res, err := sess.Wait(ctx)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	out := startResp{State: res.State}
	if res.Order != nil {
		out.TicketID = res.Order.TicketID
	}
	httpjson.Write(w, http.StatusOK, out)
}

type confirmResp struct {
	State            domain.State `json:"state"`
	Redirect         string       `json:"redirect,omitempty"`
	OrderID          string       `json:"orderId,omitempty"`
	TicketID         string       `json:"ticketId,omitempty"`
	ConfirmationSent bool         `json:"confirmationSent"`
	TicketSent       bool         `json:"ticketSent"`
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ConfirmCheckout")
	defer span.End()

	var c paydomain.Confirmation
	if err := httpjson.Decode(r, &c); err != nil || !c.Valid() {
		httpjson.Error(w, http.StatusBadRequest, "razorpayPaymentId and razorpayOrderId are required")
		return
	}
	h.deliver(ctx, w, chi.URLParam(r, "id"), paydomain.Confirmed(c))
}

func (h *Handler) dismiss(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "DismissCheckout")
	defer span.End()

	h.deliver(ctx, w, chi.URLParam(r, "id"), paydomain.Dismissed())
}

func (h *Handler) deliver(ctx context.Context, w http.ResponseWriter, sessionID string, out paydomain.Outcome) {
	buyer, ok := auth.BuyerFrom(ctx)
	if !ok {
		h.writeErr(w, domain.ErrSignInRequired)
		return
	}
	sess, err := h.bridge.Deliver(sessionID, buyer.ID, out)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	res, err := sess.Wait(ctx)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	resp := confirmResp{
		State:            res.State,
		Redirect:         res.Redirect,
		ConfirmationSent: res.ConfirmationSent,
		TicketSent:       res.TicketSent,
	}
	if res.Order != nil {
		resp.OrderID, resp.TicketID = res.Order.ID, res.Order.TicketID
	}
	httpjson.Write(w, http.StatusOK, resp)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSignInRequired):
		httpjson.Error(w, http.StatusUnauthorized, "Please sign in to buy tickets")
	case errors.Is(err, eventdomain.ErrEventNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyPurchased), errors.Is(err, domain.ErrOutcomeDelivered):
		httpjson.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTicketsUnavailable), errors.Is(err, eventdomain.ErrInvalidPrice):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, paydomain.ErrGatewayFailure):
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create Razorpay order")
	case errors.Is(err, domain.ErrOrderCreation):
		h.log.Error("checkout order creation failed", "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "Failed to create order")
	default:
		h.log.Error("checkout failed", "err", err)
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
