package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/eventia/internal/order/application"
	"github.com/dmehra2102/eventia/internal/order/domain"
)

type fakeOrderService struct {
	created []application.CreateOrderParams
	orders  map[string]domain.Details
	err     error
}

func (f *fakeOrderService) CreateOrder(ctx context.Context, p application.CreateOrderParams) (domain.Order, error) {
	if f.err != nil {
		return domain.Order{}, f.err
	}
	f.created = append(f.created, p)
	return domain.Order{ID: "ord-1", EventID: p.EventID, BuyerID: p.BuyerID, TotalAmount: p.Amount, Payment: p.Payment, TicketID: "TKT-1"}, nil
}

func (f *fakeOrderService) HasPurchased(ctx context.Context, eventID, buyerID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.orders[eventID+"/"+buyerID]
	return ok, nil
}

func (f *fakeOrderService) FindByEventAndBuyer(ctx context.Context, eventID, buyerID string) (domain.Details, error) {
	if f.err != nil {
		return domain.Details{}, f.err
	}
	d, ok := f.orders[eventID+"/"+buyerID]
	if !ok {
		return domain.Details{}, domain.ErrOrderNotFound
	}
	return d, nil
}

func serve(svc OrderService, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc).Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandler_CreateOrder(t *testing.T) {
	t.Run("paid order carries gateway identifiers", func(t *testing.T) {
		svc := &fakeOrderService{}
		body := `{"eventId":"evt-1","userId":"user-1","amount":50000,"razorpayPaymentId":"pay_1","razorpayOrderId":"order_1","razorpaySignature":"sig"}`
		rec := serve(svc, httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, svc.created, 1)
		require.NotNil(t, svc.created[0].Payment)
		assert.Equal(t, "pay_1", svc.created[0].Payment.PaymentID)
		assert.Equal(t, int64(50000), svc.created[0].Amount)

		var o domain.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
		assert.Equal(t, "TKT-1", o.TicketID)
	})

	t.Run("free order has no payment", func(t *testing.T) {
		svc := &fakeOrderService{}
		rec := serve(svc, httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(`{"eventId":"evt-1","userId":"user-1","amount":0}`)))
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Nil(t, svc.created[0].Payment)
	})

	cases := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"invalid order", `{}`, domain.ErrInvalidOrder, http.StatusBadRequest},
		{"duplicate", `{"eventId":"evt-1","userId":"user-1"}`, domain.ErrDuplicateOrder, http.StatusConflict},
		{"store failure", `{"eventId":"evt-1","userId":"user-1"}`, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(&fakeOrderService{err: tc.err}, httptest.NewRequest(http.MethodPost, "/create-order", strings.NewReader(tc.body)))
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestHandler_FindOrder(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]domain.Details{
		"evt-1/user-1": {Order: domain.Order{ID: "ord-1", TicketID: "TKT-1"}},
	}}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/orders?eventId=evt-1&userId=user-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var d domain.Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, "ord-1", d.Order.ID)

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/orders?eventId=evt-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Event ID and User ID are required"}`, rec.Body.String())

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/orders?eventId=evt-2&userId=user-1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(&fakeOrderService{err: errors.New("db down")}, httptest.NewRequest(http.MethodGet, "/orders?eventId=evt-1&userId=user-1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandler_TicketPurchase(t *testing.T) {
	svc := &fakeOrderService{orders: map[string]domain.Details{"evt-1/user-1": {}}}

	rec := serve(svc, httptest.NewRequest(http.MethodGet, "/ticket-purchase?userId=user-1&eventId=evt-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasPurchased":true}`, rec.Body.String())

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/ticket-purchase?userId=user-2&eventId=evt-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hasPurchased":false}`, rec.Body.String())

	rec = serve(svc, httptest.NewRequest(http.MethodGet, "/ticket-purchase?userId=user-2", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
