// Package razorpay talks to the Razorpay Orders API.
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dmehra2102/eventia/internal/payment/domain"
)

const DefaultBaseURL = "https://api.razorpay.com"

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string

	// HTTPClient defaults to a client with a traced transport and a 10s
	// timeout.
	HTTPClient *http.Client
}

type Client struct {
	log        *slog.Logger
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewClient(log *slog.Logger, cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		}
	}
	return &Client{
		log:        log,
		baseURL:    baseURL,
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		httpClient: hc,
	}
}

// APIError is a non-2xx reply from the gateway.
type APIError struct {
	Status      int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("razorpay: %d %s: %s", e.Status, e.Code, e.Description)
}

type errorEnvelope struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder calls POST /v1/orders.
func (c *Client) CreateOrder(ctx context.Context, req domain.RemoteOrderRequest) (domain.RemoteOrder, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.RemoteOrder{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return domain.RemoteOrder{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.RemoteOrder{}, fmt.Errorf("razorpay: create order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domain.RemoteOrder{}, fmt.Errorf("razorpay: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var env errorEnvelope
		_ = json.Unmarshal(raw, &env)
		return domain.RemoteOrder{}, &APIError{Status: resp.StatusCode, Code: env.Error.Code, Description: env.Error.Description}
	}

	var ro domain.RemoteOrder
	if err := json.Unmarshal(raw, &ro); err != nil {
		return domain.RemoteOrder{}, fmt.Errorf("razorpay: decoding order: %w", err)
	}
	c.log.Info("razorpay order created", "razorpay_order_id", ro.ID, "amount", ro.Amount)
	return ro, nil
}
