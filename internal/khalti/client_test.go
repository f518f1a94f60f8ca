package khalti

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiate(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody InitiateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(InitiateResponse{
			Pidx:       "HT6o6PEZRWFJ5ygavzHWd5",
			PaymentURL: "https://test-pay.khalti.com/?pidx=HT6o6PEZRWFJ5ygavzHWd5",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, SecretKey: "test-secret", HTTPClient: srv.Client()})
	resp, err := c.Initiate(context.Background(), InitiateRequest{
		ReturnURL:       "https://shop.example.com/payment-status",
		Amount:          25000,
		PurchaseOrderID: "order_x",
	})
	require.NoError(t, err)

	assert.Equal(t, "key test-secret", gotAuth)
	assert.Equal(t, "/epayment/initiate/", gotPath)
	assert.Equal(t, int64(25000), gotBody.Amount)
	assert.Equal(t, "HT6o6PEZRWFJ5ygavzHWd5", resp.Pidx)
	assert.Contains(t, resp.PaymentURL, "pidx=")
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/epayment/lookup/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(LookupResponse{
			Pidx:        body["pidx"],
			TotalAmount: 25000,
			Status:      "Completed",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, SecretKey: "k", HTTPClient: srv.Client()})
	resp, err := c.Lookup(context.Background(), "pidx-1")
	require.NoError(t, err)
	assert.Equal(t, "pidx-1", resp.Pidx)
	assert.Equal(t, "Completed", resp.Status)
}

func TestNon2xxBecomesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Amount should be greater than Rs. 10"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, SecretKey: "k", HTTPClient: srv.Client()})
	_, err := c.Initiate(context.Background(), InitiateRequest{Amount: 1})
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.Contains(t, perr.Body, "Amount should be greater")
}

func TestTransportFailureIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	c := NewClient(Config{BaseURL: url, SecretKey: "k"})
	_, err := c.Initiate(context.Background(), InitiateRequest{Amount: 100})
	require.Error(t, err)

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Zero(t, perr.StatusCode)
	assert.ErrorIs(t, err, perr.Err)
}

func TestDefaultTimeoutClient(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://x", SecretKey: "k"})
	require.NotNil(t, c.hc)
	assert.Equal(t, 15.0, c.hc.Timeout.Seconds())
}
