package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"payment-gateway/domain/payment"
	"payment-gateway/infrastructure/config"
)

var (
	ErrUnavailable = fmt.Errorf("processor unavailable")
	ErrRateLimited = fmt.Errorf("health endpoint rate limited")
)

// Client issues the outbound processor calls. Every call is bounded by
// the configured request timeout; any non-2xx response or transport
// error counts as a failure.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 100,
				MaxIdleConns:        200,
			},
		},
		timeout: cfg.RequestTimeout,
	}
}

type submitBody struct {
	CorrelationId string  `json:"correlationId"`
	Amount        float64 `json:"amount"`
	RequestedAt   string  `json:"requestedAt"`
}

func (c *Client) Submit(
	ctx context.Context, processor config.Processor, payload payment.JobPayload, requestedAt time.Time,
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(submitBody{
		CorrelationId: payload.CorrelationId,
		Amount:        payload.Amount,
		RequestedAt:   requestedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, fmt.Sprintf("%s/payments", processor.URL), bytes.NewReader(body),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrUnavailable, processor.Name, resp.StatusCode)
	}
	return nil
}

func (c *Client) CheckHealth(ctx context.Context, processor config.Processor) (payment.HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, fmt.Sprintf("%s/payments/service-health", processor.URL), nil,
	)
	if err != nil {
		return payment.HealthStatus{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return payment.HealthStatus{}, err
	}
	defer resp.Body.Close()

	// The health endpoint is rate limited remotely; a 429 is a failed
	// probe, not a health verdict.
	if resp.StatusCode == http.StatusTooManyRequests {
		return payment.HealthStatus{}, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return payment.HealthStatus{}, fmt.Errorf("%w: health returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body struct {
		Failing         bool `json:"failing"`
		MinResponseTime int  `json:"minResponseTime"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return payment.HealthStatus{}, err
	}

	return payment.HealthStatus{
		Failing:         body.Failing,
		MinResponseTime: body.MinResponseTime,
		LastChecked:     time.Now().UTC(),
	}, nil
}
