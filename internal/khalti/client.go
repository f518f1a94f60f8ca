// Package khalti is a thin client for the Khalti e-payment API.
package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PaisaPerUnit converts an order subtotal to the paisa amounts the provider
// expects. The factor is part of the provider contract; do not change it.
const PaisaPerUnit = 100

// Error carries the provider's HTTP status and response body for any
// non-2xx reply. StatusCode 0 means the request never got an HTTP response
// (provider unreachable, DNS failure, timeout); Err then holds the cause.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return "khalti: " + e.Body
	}
	return fmt.Sprintf("khalti: status %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

type Config struct {
	BaseURL   string
	SecretKey string
	// HTTPClient overrides the default 15s-timeout client, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	secretKey string
	hc        *http.Client
}

func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: cfg.BaseURL, secretKey: cfg.SecretKey, hc: hc}
}

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type ProductDetail struct {
	Identity   string `json:"identity"`
	Name       string `json:"name"`
	TotalPrice int64  `json:"total_price"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
}

type InitiateRequest struct {
	ReturnURL         string          `json:"return_url"`
	WebsiteURL        string          `json:"website_url"`
	Amount            int64           `json:"amount"` // paisa
	PurchaseOrderID   string          `json:"purchase_order_id"`
	PurchaseOrderName string          `json:"purchase_order_name"`
	CustomerInfo      CustomerInfo    `json:"customer_info"`
	ProductDetails    []ProductDetail `json:"product_details"`
}

type InitiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at,omitempty"`
}

type LookupResponse struct {
	Pidx        string `json:"pidx"`
	TotalAmount int64  `json:"total_amount"`
	Status      string `json:"status"`
	Refunded    bool   `json:"refunded"`
}

// Initiate opens a payment session and returns the transaction reference
// (pidx) and the redirect URL the buyer must visit.
func (c *Client) Initiate(ctx context.Context, req InitiateRequest) (InitiateResponse, error) {
	var resp InitiateResponse
	if err := c.post(ctx, "/epayment/initiate/", req, &resp); err != nil {
		return InitiateResponse{}, err
	}
	return resp, nil
}

// Lookup fetches the provider's current view of a payment session.
func (c *Client) Lookup(ctx context.Context, pidx string) (LookupResponse, error) {
	var resp LookupResponse
	body := map[string]string{"pidx": pidx}
	if err := c.post(ctx, "/epayment/lookup/", body, &resp); err != nil {
		return LookupResponse{}, err
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "key "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return &Error{Body: fmt.Sprintf("%s: %v", path, err), Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &Error{StatusCode: res.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
