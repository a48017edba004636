// Package payment is the HTTP client for the external payment service that
// charges for audits.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"seoscout/internal/config"
)

// ServiceType identifies audit charges to the payment service.
const ServiceType = "seo_analysis"

// Sentinel errors for payment client failures.
var (
	ErrPaymentUnreachable   = errors.New("payment service unreachable")
	ErrPaymentRequestFailed = errors.New("payment request failed")
	ErrPaymentTimeout       = errors.New("payment request timeout")
)

// Client is the interface for talking to the payment service.
type Client interface {
	Create(ctx context.Context, jobID uuid.UUID, amount float64) (*Payment, error)
	Status(ctx context.Context, paymentID string) (*Payment, error)
}

// Payment is the payment service's view of a charge.
type Payment struct {
	PaymentID string  `json:"payment_id"`
	JobID     string  `json:"job_id,omitempty"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount,omitempty"`
}

// FallbackID derives the payment id for a job without a service round trip.
// Submissions hand this out even when the payment service is down.
func FallbackID(jobID uuid.UUID) string {
	return "pay_" + jobID.String()
}

// HTTPClient implements Client against the payment service's REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a new payment HTTP client.
func NewHTTPClient(cfg config.PaymentConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type createPaymentRequest struct {
	Amount      float64 `json:"amount"`
	JobID       string  `json:"job_id"`
	ServiceType string  `json:"service_type"`
}

func (c *HTTPClient) Create(ctx context.Context, jobID uuid.UUID, amount float64) (*Payment, error) {
	payload, err := json.Marshal(createPaymentRequest{
		Amount:      amount,
		JobID:       jobID.String(),
		ServiceType: ServiceType,
	})
	if err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/create_payment", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrPaymentRequestFailed, resp.StatusCode)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decoding payment response: %w", err)
	}

	return &payment, nil
}

func (c *HTTPClient) Status(ctx context.Context, paymentID string) (*Payment, error) {
	u := fmt.Sprintf("%s/status/%s", c.baseURL, url.PathEscape(paymentID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrPaymentRequestFailed, resp.StatusCode)
	}

	var payment Payment
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("decoding payment response: %w", err)
	}

	return &payment, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrPaymentTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrPaymentTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrPaymentUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrPaymentUnreachable, err)
}

var _ Client = (*HTTPClient)(nil)
