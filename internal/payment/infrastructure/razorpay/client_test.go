package razorpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/eventia/internal/payment/domain"
)

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(slog.New(slog.NewTextHandler(io.Discard, nil)), Config{
		BaseURL:    srv.URL,
		KeyID:      "rzp_test_key",
		KeySecret:  "secret",
		HTTPClient: srv.Client(),
	})
}

func TestClient_CreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var req domain.RemoteOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(50000), req.Amount)
		assert.Equal(t, "INR", req.Currency)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","entity":"order","amount":50000,"currency":"INR","status":"created"}`))
	}))
	defer srv.Close()

	ro, err := newTestClient(srv).CreateOrder(context.Background(), domain.RemoteOrderRequest{Amount: 50000, Currency: "INR"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", ro.ID)
	assert.Equal(t, int64(50000), ro.Amount)
	assert.Equal(t, "created", ro.Status)
}

func TestClient_CreateOrderAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).CreateOrder(context.Background(), domain.RemoteOrderRequest{Amount: 100, Currency: "INR"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Authentication failed", apiErr.Description)
}
