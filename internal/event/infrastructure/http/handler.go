package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/eventia/internal/event/application"
	"github.com/dmehra2102/eventia/internal/event/domain"
	"github.com/dmehra2102/eventia/pkg/httpjson"
)

type EventService interface {
	Get(ctx context.Context, id string) (domain.Event, error)
	Related(ctx context.Context, eventID string, page, limit int) (application.RelatedPage, error)
}

type Handler struct {
	log       *slog.Logger
	service   EventService
	serverURL string
	tracer    trace.Tracer
}

func NewHandler(log *slog.Logger, service EventService, serverURL string) *Handler {
	return &Handler{
		log:       log,
		service:   service,
		serverURL: serverURL,
		tracer:    otel.Tracer("event-http"),
	}
}

type eventResp struct {
	domain.Event
	ShareURL   string `json:"shareUrl"`
	OGImageURL string `json:"ogImageUrl"`
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds the handler's routes to r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events/{id}", h.getEvent)
	r.Get("/events/{id}/related", h.related)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetEvent")
	defer span.End()

	ev, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, eventResp{
		Event:      ev,
		ShareURL:   ev.ShareURL(h.serverURL),
		OGImageURL: ev.OGImageURL(h.serverURL),
	})
}

func (h *Handler) related(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RelatedEvents")
	defer span.End()

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	out, err := h.service.Related(ctx, chi.URLParam(r, "id"), page, application.DefaultRelatedLimit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpjson.Write(w, http.StatusOK, out)
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrEventNotFound) {
		httpjson.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	h.log.Error("event lookup failed", "err", err)
	httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
}
