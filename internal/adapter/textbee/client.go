package textbee

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/couchcryptid/farm-advisory-service/internal/domain"
)

// Client implements domain.SMSSender through a TextBee Android gateway
// device. Sends fail fast while the circuit breaker is open.
type Client struct {
	apiKey     string
	deviceID   string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[struct{}]
	logger     *slog.Logger
}

type sendRequest struct {
	Recipients []string `json:"recipients"`
	Message    string   `json:"message"`
}

// NewClient creates a TextBee SMS client.
func NewClient(apiKey, deviceID, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	c := &Client{
		apiKey:     apiKey,
		deviceID:   deviceID,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "textbee",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		// A rejected recipient says nothing about gateway health.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("sms circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// Send delivers one message to one phone number.
func (c *Client) Send(ctx context.Context, phone, message string) error {
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.send(ctx, phone, message)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.UpstreamError{Service: domain.ServiceSMS, Err: err}
	}
	return err
}

func (c *Client) send(ctx context.Context, phone, message string) error {
	body, err := json.Marshal(sendRequest{Recipients: []string{phone}, Message: message})
	if err != nil {
		return fmt.Errorf("encode sms: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/gateway/devices/%s/send-sms", c.baseURL, url.PathEscape(c.deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.UpstreamError{Service: domain.ServiceSMS, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.UpstreamError{
			Service:    domain.ServiceSMS,
			StatusCode: resp.StatusCode,
			Message:    string(bytes.TrimSpace(msg)),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func isClientError(err error) bool {
	var upstream *domain.UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode >= 400 && upstream.StatusCode < 500
}
