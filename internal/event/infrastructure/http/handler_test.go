package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/eventia/internal/event/application"
	"github.com/dmehra2102/eventia/internal/event/domain"
)

type fakeEventService struct {
	events  map[string]domain.Event
	related application.RelatedPage
	err     error
}

func (f *fakeEventService) Get(ctx context.Context, id string) (domain.Event, error) {
	if f.err != nil {
		return domain.Event{}, f.err
	}
	ev, ok := f.events[id]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return ev, nil
}

func (f *fakeEventService) Related(ctx context.Context, eventID string, page, limit int) (application.RelatedPage, error) {
	if _, err := f.Get(ctx, eventID); err != nil {
		return application.RelatedPage{}, err
	}
	return f.related, nil
}

func newTestHandler(svc EventService) http.Handler {
	return NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc, "https://eventia.example").Routes()
}

func TestHandler_GetEvent(t *testing.T) {
	svc := &fakeEventService{events: map[string]domain.Event{
		"evt-1": {ID: "evt-1", Title: "Indie Night", Location: "Goa", StartDateTime: time.Date(2026, 6, 5, 19, 0, 0, 0, time.UTC)},
	}}
	h := newTestHandler(svc)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Indie Night", body["title"])
	assert.Equal(t, "https://eventia.example/events/evt-1", body["shareUrl"])
	assert.Contains(t, body["ogImageUrl"], "/api/og?")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Related(t *testing.T) {
	svc := &fakeEventService{
		events:  map[string]domain.Event{"evt-1": {ID: "evt-1"}},
		related: application.RelatedPage{Data: []domain.Event{{ID: "evt-2"}}, TotalPages: 1},
	}
	rec := httptest.NewRecorder()
	newTestHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1/related?page=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body application.RelatedPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.TotalPages)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "evt-2", body.Data[0].ID)
}

func TestHandler_InternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(&fakeEventService{err: errors.New("db down")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events/evt-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
