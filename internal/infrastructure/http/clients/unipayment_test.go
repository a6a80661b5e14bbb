package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/pkg/config"
)

func testCreds(baseURL string) domain.GatewayCredentials {
	return domain.GatewayCredentials{
		BaseURL:     baseURL,
		AppID:       "app-1",
		APIKey:      "key-1",
		Environment: "sandbox",
	}
}

func TestUniPaymentClient_CreateInvoice(t *testing.T) {
	t.Parallel()

	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/v1/invoices", r.URL.Path)
		require.Equal(t, "app-1", r.Header.Get("X-App-Id"))
		require.Equal(t, "key-1", r.Header.Get("X-API-Key"))

		var req models.InvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, int64(4999), req.AmountCents)

		json.NewEncoder(w).Encode(models.Invoice{
			InvoiceID:   "inv-123",
			OrderID:     req.OrderID,
			Status:      "New",
			CheckoutURL: "https://sandbox.example/checkout/inv-123",
		})
	}))
	defer srv.Close()

	client := NewUniPaymentClient(config.GatewayConfig{Timeout: 5, ConnectTimeout: 2}, zerolog.Nop())

	invoice, err := client.CreateInvoice(context.Background(), testCreds(srv.URL), &models.InvoiceRequest{
		OrderID:     "order-1",
		AmountCents: 4999,
		Currency:    "USD",
		Method:      "card",
	})
	require.NoError(t, err)
	require.Equal(t, "inv-123", invoice.InvoiceID)
	require.Equal(t, "https://sandbox.example/checkout/inv-123", invoice.CheckoutURL)
	require.Equal(t, 1, attempts, "gateway calls must not be retried automatically")
}

func TestUniPaymentClient_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewUniPaymentClient(config.GatewayConfig{Timeout: 5, ConnectTimeout: 2}, zerolog.Nop())

	_, err := client.CreateInvoice(context.Background(), testCreds(srv.URL), &models.InvoiceRequest{OrderID: "order-1"})
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	require.Equal(t, 1, attempts)
}

func TestUniPaymentClient_ContextTimeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := NewUniPaymentClient(config.GatewayConfig{Timeout: 5, ConnectTimeout: 2}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := client.Ping(ctx, testCreds(srv.URL))
	require.ErrorIs(t, err, domain.ErrGatewayUnavailable)
}

func TestUniPaymentClient_QueryInvoice(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/invoices/inv-9", r.URL.Path)
		json.NewEncoder(w).Encode(models.Invoice{InvoiceID: "inv-9", Status: models.InvoiceStatusConfirmed})
	}))
	defer srv.Close()

	client := NewUniPaymentClient(config.GatewayConfig{Timeout: 5, ConnectTimeout: 2}, zerolog.Nop())

	invoice, err := client.QueryInvoice(context.Background(), testCreds(srv.URL), "inv-9")
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusConfirmed, invoice.Status)
}
