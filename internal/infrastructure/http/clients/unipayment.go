package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/pkg/config"
)

type uniPaymentClient struct {
	httpClient *http.Client
	version    string
	logger     zerolog.Logger
}

// NewUniPaymentClient builds the gateway delegate. Calls are bounded by the
// configured request and connect timeouts and are never retried here:
// retries happen only through explicit user-initiated retry actions.
func NewUniPaymentClient(cfg config.GatewayConfig, logger zerolog.Logger) interfaces.PaymentGateway {
	return &uniPaymentClient{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: time.Duration(cfg.ConnectTimeout) * time.Second,
				}).DialContext,
			},
		},
		version: cfg.Version,
		logger:  logger,
	}
}

func (c *uniPaymentClient) CreateInvoice(ctx context.Context, creds domain.GatewayCredentials, req *models.InvoiceRequest) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := c.makeRequest(ctx, creds, "POST", "/v1/invoices", req, &invoice); err != nil {
		return nil, fmt.Errorf("%w: create invoice: %v", domain.ErrGatewayUnavailable, err)
	}
	return &invoice, nil
}

func (c *uniPaymentClient) QueryInvoice(ctx context.Context, creds domain.GatewayCredentials, invoiceID string) (*models.Invoice, error) {
	endpoint := fmt.Sprintf("/v1/invoices/%s", invoiceID)

	var invoice models.Invoice
	if err := c.makeRequest(ctx, creds, "GET", endpoint, nil, &invoice); err != nil {
		return nil, fmt.Errorf("%w: query invoice %s: %v", domain.ErrGatewayUnavailable, invoiceID, err)
	}
	return &invoice, nil
}

// Ping exercises the credentials against the gateway, for the admin
// connection-test endpoint.
func (c *uniPaymentClient) Ping(ctx context.Context, creds domain.GatewayCredentials) error {
	if err := c.makeRequest(ctx, creds, "GET", "/v1/ping", nil, nil); err != nil {
		return fmt.Errorf("%w: ping: %v", domain.ErrGatewayUnavailable, err)
	}
	return nil
}

func (c *uniPaymentClient) makeRequest(ctx context.Context, creds domain.GatewayCredentials, method, endpoint string, body interface{}, response interface{}) error {
	fullURL := creds.BaseURL + endpoint

	var reqBody []byte
	var err error
	if body != nil {
		reqBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if creds.AppID != "" {
		req.Header.Set("X-App-Id", creds.AppID)
	}
	if creds.APIKey != "" {
		req.Header.Set("X-API-Key", creds.APIKey)
	}
	if c.version != "" {
		req.Header.Set("X-Api-Version", c.version)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", fullURL).Msg("Gateway request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Int("status", resp.StatusCode).Str("url", fullURL).Msg("Gateway returned error status")
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if response != nil {
		if err := json.Unmarshal(respBody, response); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
